package main

import (
	"encoding/json"
	"log"
	"os"
	"slices"

	"github.com/carlmjohnson/versioninfo"

	"github.com/tilemath/tilemath/mathhelp"
	"github.com/tilemath/tilemath/mercator"
	"github.com/tilemath/tilemath/quadkey"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/iancoleman/strcase"
	"github.com/muesli/reflow/truncate"
	"github.com/urfave/cli/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const PYRAMID string = `pyramid`
const LAT string = `lat`
const LON string = `lon`
const ZOOMS string = `zooms`
const WKT string = `wkt`
const WKTMAXLEN string = `wktmaxlen`

type conversion struct {
	tile   [2]int
	google [2]int
	key    quadkey.Key
	bounds geom.Extent
}

func main() {
	app := cli.NewApp()
	app.Name = "tilemath"
	app.Usage = "A Golang slippy map tile pyramid calculator"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     PYRAMID,
			Aliases:  []string{"p"},
			Usage:    "ID of a (built-in) pyramid definition. E.g.: WebMercatorQuad",
			Value:    "WebMercatorQuad",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(PYRAMID)},
		},
		&cli.Float64Flag{
			Name:     LAT,
			Usage:    "WGS84 latitude in degrees",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(LAT)},
		},
		&cli.Float64Flag{
			Name:     LON,
			Usage:    "WGS84 longitude in degrees",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(LON)},
		},
		&cli.StringFlag{
			Name:     ZOOMS,
			Aliases:  []string{"z"},
			Usage:    `Zoom levels to convert for. JSON array of integers. E.g.: [4,5,6,7,8]`,
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(ZOOMS)},
		},
		&cli.BoolFlag{
			Name:     WKT,
			Usage:    "Print tile bounds as WKT polygons",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(WKT)},
		},
		&cli.UintFlag{
			Name:     WKTMAXLEN,
			Usage:    "Truncate WKT output to this many characters, 0 to not truncate",
			Value:    0,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(WKTMAXLEN)},
		},
	}

	app.Action = func(c *cli.Context) error {
		def, err := mercator.LoadEmbeddedDefinition(c.String(PYRAMID))
		if err != nil {
			return err
		}
		pyramid, err := mercator.NewFromDefinition(def)
		if err != nil {
			return err
		}
		var zooms []uint
		err = json.Unmarshal([]byte(c.String(ZOOMS)), &zooms)
		if err != nil {
			return err
		}
		slices.Sort(zooms)
		zooms = slices.Compact(zooms)

		lat := c.Float64(LAT)
		lon := c.Float64(LON)
		if !mathhelp.BetweenInc(lat, -mercator.MaxLatitude, mercator.MaxLatitude) {
			log.Fatalf("latitude %v is outside the mercator world [%v, %v]", lat, -mercator.MaxLatitude, mercator.MaxLatitude)
		}
		if !mathhelp.BetweenInc(lon, -180.0, 180.0) {
			log.Fatalf("longitude %v is outside [-180, 180]", lon)
		}

		mx, my := pyramid.LatLonToMeters(lat, lon)
		results := orderedmap.New[uint, conversion]()
		for _, zoom := range zooms {
			if !mathhelp.BetweenInc(zoom, def.MinZoom, def.MaxZoom) {
				log.Fatalf("zoom %v is outside the %v zoom range [%v, %v]", zoom, def.ID, def.MinZoom, def.MaxZoom)
			}
			tx, ty := pyramid.MetersToTile(mx, my, zoom)
			gtx, gty := pyramid.GoogleTile(tx, ty, zoom)
			results.Set(zoom, conversion{
				tile:   [2]int{tx, ty},
				google: [2]int{gtx, gty},
				key:    pyramid.QuadTree(tx, ty, zoom),
				bounds: pyramid.TileBounds(tx, ty, zoom),
			})
		}

		log.Printf("%v: lat/lon %v, %v -> mercator %f, %f", def.ID, lat, lon, mx, my)
		for pair := results.Oldest(); pair != nil; pair = pair.Next() {
			conv := pair.Value
			log.Printf("zoom %v: tms %v/%v, google %v/%v, quadkey %v",
				pair.Key, conv.tile[0], conv.tile[1], conv.google[0], conv.google[1], conv.key)
			if c.Bool(WKT) {
				log.Printf("  bounds: %v", wktMustEncodeTruncated(boundsToPolygon(conv.bounds), c.Uint(WKTMAXLEN)))
			} else {
				log.Printf("  bounds: %f, %f, %f, %f",
					conv.bounds.MinX(), conv.bounds.MinY(), conv.bounds.MaxX(), conv.bounds.MaxY())
			}
		}
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func boundsToPolygon(e geom.Extent) geom.Polygon {
	return geom.Polygon{{
		{e.MinX(), e.MinY()},
		{e.MaxX(), e.MinY()},
		{e.MaxX(), e.MaxY()},
		{e.MinX(), e.MaxY()},
	}}
}

func wktMustEncodeTruncated(g geom.Geometry, width uint) string {
	if width == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), width, "...")
}
