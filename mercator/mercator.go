// Package mercator implements the spherical web-mercator tile pyramid
// (EPSG:3857, a.k.a. EPSG:900913) used by slippy map tile servers:
// conversions between WGS84 lat/lon, projected meters, pyramid pixel
// coordinates, TMS tile indices and quadkeys.
package mercator

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"

	"github.com/tilemath/tilemath/mathhelp"
	"github.com/tilemath/tilemath/quadkey"
)

const (
	// EarthRadius is the WGS84 semi-major axis,
	// used as the sphere radius in the spherical-mercator approximation.
	EarthRadius = 6378137.0
	// MaxLatitude is the northernmost latitude on the square mercator world.
	MaxLatitude     = 85.05112878
	DefaultTileSize = 256

	// zoomScanLimit bounds the ZoomForPixelSize scan; resolutions below
	// level 29 have no practical use on a web map.
	zoomScanLimit = 30
)

// Pyramid is a TMS global mercator tile pyramid with a fixed tile edge
// length in pixels. It is immutable after construction and safe to share
// between goroutines.
type Pyramid struct {
	tileSize          uint
	initialResolution float64
	originShift       float64
}

// New returns a pyramid with the given tile edge length in pixels.
// tileSize must be positive; it is conventionally a power of two.
func New(tileSize uint) Pyramid {
	return Pyramid{
		tileSize:          tileSize,
		initialResolution: 2 * math.Pi * EarthRadius / float64(tileSize), // 156543.03392804062 for tileSize 256
		originShift:       math.Pi * EarthRadius,                         // 20037508.342789244
	}
}

// NewDefault returns the common 256-pixel pyramid.
func NewDefault() Pyramid {
	return New(DefaultTileSize)
}

func (p Pyramid) TileSize() uint {
	return p.tileSize
}

// InitialResolution returns the meters covered by one pixel at zoom 0,
// measured at the equator.
func (p Pyramid) InitialResolution() float64 {
	return p.initialResolution
}

// OriginShift returns half the projected extent of the sphere, i.e. the
// largest absolute mercator coordinate.
func (p Pyramid) OriginShift() float64 {
	return p.originShift
}

// MapSize returns the edge length of the full raster at the given zoom,
// in pixels.
func (p Pyramid) MapSize(zoom uint) uint {
	return p.tileSize * mathhelp.Pow2(zoom)
}

// MatrixSize returns the number of tiles along one edge at the given zoom.
func (p Pyramid) MatrixSize(zoom uint) uint {
	return mathhelp.Pow2(zoom)
}

// LatLonToMeters converts WGS84 lat/lon in degrees to mercator meters.
// The projection diverges at the poles; lat must stay strictly inside
// (-90, 90) or the result is not finite.
func (p Pyramid) LatLonToMeters(lat, lon float64) (mx, my float64) {
	mx = lon * p.originShift / 180
	my = math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	my = my * p.originShift / 180
	return mx, my
}

// MetersToLatLon converts mercator meters to WGS84 lat/lon in degrees.
func (p Pyramid) MetersToLatLon(mx, my float64) (lat, lon float64) {
	lon = (mx / p.originShift) * 180
	lat = (my / p.originShift) * 180
	lat = 180 / math.Pi * (2*math.Atan(math.Exp(lat*math.Pi/180)) - math.Pi/2)
	return lat, lon
}

// Resolution returns the meters covered by one pixel at the given zoom,
// measured at the equator. It halves exactly with each level.
func (p Pyramid) Resolution(zoom uint) float64 {
	return p.initialResolution / math.Exp2(float64(zoom))
}

// PixelsToMeters converts pyramid pixel coordinates at the given zoom to
// mercator meters. Pixel (0, 0) is the bottom-left corner of the raster,
// at (-OriginShift, -OriginShift).
func (p Pyramid) PixelsToMeters(px, py float64, zoom uint) (mx, my float64) {
	res := p.Resolution(zoom)
	mx = px*res - p.originShift
	my = py*res - p.originShift
	return mx, my
}

// MetersToPixels converts mercator meters to pyramid pixel coordinates at
// the given zoom.
func (p Pyramid) MetersToPixels(mx, my float64, zoom uint) (px, py float64) {
	res := p.Resolution(zoom)
	px = (mx + p.originShift) / res
	py = (my + p.originShift) / res
	return px, py
}

// PixelsToRaster moves the origin of pixel coordinates to the top-left
// corner of the raster, the convention used for image output.
func (p Pyramid) PixelsToRaster(px, py float64, zoom uint) (rx, ry float64) {
	return px, float64(p.MapSize(zoom)) - py
}

// PixelsToTile returns the tile containing the given pixel. Pixels exactly
// on a tile edge belong to the tile above/right, so pixel (0, 0) is in tile
// (0, 0).
func (p Pyramid) PixelsToTile(px, py float64) (tx, ty int) {
	tx = int(math.Floor(px / float64(p.tileSize)))
	ty = int(math.Floor(py / float64(p.tileSize)))
	return tx, ty
}

// MetersToTile returns the TMS tile containing the given mercator
// coordinate at the given zoom.
func (p Pyramid) MetersToTile(mx, my float64, zoom uint) (tx, ty int) {
	px, py := p.MetersToPixels(mx, my, zoom)
	return p.PixelsToTile(px, py)
}

// LatLonToTile returns the TMS tile containing the given WGS84 coordinate
// at the given zoom.
func (p Pyramid) LatLonToTile(lat, lon float64, zoom uint) (tx, ty int) {
	mx, my := p.LatLonToMeters(lat, lon)
	return p.MetersToTile(mx, my, zoom)
}

// ValidTile reports whether the TMS tile indices exist at the given zoom.
func (p Pyramid) ValidTile(tx, ty int, zoom uint) bool {
	max := int(p.MatrixSize(zoom)) - 1
	return mathhelp.BetweenInc(tx, 0, max) && mathhelp.BetweenInc(ty, 0, max)
}

// TileBounds returns the extent of the given TMS tile in mercator meters.
func (p Pyramid) TileBounds(tx, ty int, zoom uint) geom.Extent {
	minx, miny := p.PixelsToMeters(float64(tx)*float64(p.tileSize), float64(ty)*float64(p.tileSize), zoom)
	maxx, maxy := p.PixelsToMeters(float64(tx+1)*float64(p.tileSize), float64(ty+1)*float64(p.tileSize), zoom)
	return geom.Extent{minx, miny, maxx, maxy}
}

// TileLatLonBounds returns the extent of the given TMS tile in WGS84
// degrees. The return order follows MetersToLatLon, lat before lon.
func (p Pyramid) TileLatLonBounds(tx, ty int, zoom uint) (minLat, minLon, maxLat, maxLon float64) {
	bounds := p.TileBounds(tx, ty, zoom)
	minLat, minLon = p.MetersToLatLon(bounds.MinX(), bounds.MinY())
	maxLat, maxLon = p.MetersToLatLon(bounds.MaxX(), bounds.MaxY())
	return minLat, minLon, maxLat, maxLon
}

// ZoomForPixelSize returns the deepest zoom whose resolution is at least
// pixelSize, i.e. the maximal scaledown level. It never scales up past
// level 0 and returns an error for a pixel size finer than any level.
func (p Pyramid) ZoomForPixelSize(pixelSize float64) (uint, error) {
	for i := uint(0); i < zoomScanLimit; i++ {
		if pixelSize > p.Resolution(i) {
			if i != 0 {
				return i - 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf(`no zoom level matches pixel size %v`, pixelSize)
}

// MustZoomForPixelSize is like ZoomForPixelSize but panics on an
// out-of-range pixel size.
func (p Pyramid) MustZoomForPixelSize(pixelSize float64) uint {
	zoom, err := p.ZoomForPixelSize(pixelSize)
	if err != nil {
		panic(err)
	}
	return zoom
}

// GoogleTile converts TMS tile indices to the Google/XYZ convention by
// moving the row origin from the bottom-left to the top-left corner.
func (p Pyramid) GoogleTile(tx, ty int, zoom uint) (gtx, gty int) {
	return tx, int(mathhelp.Pow2(zoom)) - 1 - ty
}

// QuadTree returns the Microsoft quadkey of the given TMS tile: one base-4
// digit per zoom level, most significant first. tx and ty must be valid
// tile indices at the given zoom.
func (p Pyramid) QuadTree(tx, ty int, zoom uint) quadkey.Key {
	gty := int(mathhelp.Pow2(zoom)) - 1 - ty
	return quadkey.FromTileXY(uint32(tx), uint32(gty), zoom)
}

// ToSlippy converts TMS tile indices to a slippy (XYZ row order) tile.
// It reports false for indices outside the matrix.
func (p Pyramid) ToSlippy(tx, ty int, zoom uint) (*slippy.Tile, bool) {
	if !p.ValidTile(tx, ty, zoom) {
		return nil, false
	}
	gty := int(p.MatrixSize(zoom)) - 1 - ty
	return slippy.NewTile(zoom, uint(tx), uint(gty)), true
}

// FromSlippy converts a slippy (XYZ row order) tile to TMS tile indices.
func (p Pyramid) FromSlippy(tile *slippy.Tile) (tx, ty int) {
	return int(tile.X), int(p.MatrixSize(tile.Z)) - 1 - int(tile.Y)
}
