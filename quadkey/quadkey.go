// Package quadkey implements Microsoft QuadKey tile addressing.
//
// A key is a base-4 string with one digit per zoom level, most significant
// first. Each digit encodes one quadrant split: bit 0 is the tile column bit,
// bit 1 the tile row bit, with rows counted from the top (XYZ order).
// See https://learn.microsoft.com/en-us/bingmaps/articles/bing-maps-tile-system
package quadkey

import (
	"fmt"
)

// MaxZoom is the deepest level representable; a key holds 2 bits per level.
const MaxZoom = 32

type Key string

var (
	masks = [...]uint64{
		0b0101010101010101010101010101010101010101010101010101010101010101,
		0b0011001100110011001100110011001100110011001100110011001100110011,
		0b0000111100001111000011110000111100001111000011110000111100001111,
		0b0000000011111111000000001111111100000000111111110000000011111111,
		0b0000000000000000111111111111111100000000000000001111111111111111,
		0b0000000000000000000000000000000011111111111111111111111111111111,
	}
	powersOfTwo = [...]uint{0, 1, 2, 4, 8, 16}
)

// interleave spreads x over the even bits and y over the odd bits,
// so that bit pair i of the result is the i-th quadkey digit.
func interleave(x, y uint32) uint64 {
	ux, uy := uint64(x), uint64(y)
	for i := 4; i >= 0; i-- {
		ux = (ux | (ux << powersOfTwo[i+1])) & masks[i]
		uy = (uy | (uy << powersOfTwo[i+1])) & masks[i]
	}
	return ux | (uy << 1)
}

func deinterleave(z uint64) (x, y uint32) {
	ux := z
	uy := z >> 1
	for i := 0; i <= 5; i++ {
		ux = (ux | (ux >> powersOfTwo[i])) & masks[i]
		uy = (uy | (uy >> powersOfTwo[i])) & masks[i]
	}
	return uint32(ux), uint32(uy)
}

// FromTileXY encodes an XYZ (top-left origin) tile address as a quadkey of
// exactly zoom digits. Only the low zoom bits of x and y contribute;
// zoom must not exceed MaxZoom.
func FromTileXY(x, y uint32, zoom uint) Key {
	z := interleave(x, y)
	buf := make([]byte, zoom)
	for i := uint(0); i < zoom; i++ {
		buf[i] = '0' + byte((z>>(2*(zoom-1-i)))&3)
	}
	return Key(buf)
}

// Decode is the inverse of FromTileXY. The zoom is the key length;
// the empty key decodes to tile (0, 0) at zoom 0.
func (k Key) Decode() (x, y uint32, zoom uint, err error) {
	zoom = uint(len(k))
	if zoom > MaxZoom {
		return 0, 0, 0, fmt.Errorf(`quadkey %q is longer than %v digits`, k, MaxZoom)
	}
	var z uint64
	for i := uint(0); i < zoom; i++ {
		c := k[i]
		if c < '0' || c > '3' {
			return 0, 0, 0, fmt.Errorf(`invalid digit %q in quadkey %q`, c, k)
		}
		z |= uint64(c-'0') << (2 * (zoom - 1 - i))
	}
	x, y = deinterleave(z)
	return x, y, zoom, nil
}

// MustDecode is like Decode but panics on an invalid key.
func (k Key) MustDecode() (x, y uint32, zoom uint) {
	x, y, zoom, err := k.Decode()
	if err != nil {
		panic(err)
	}
	return x, y, zoom
}

func (k Key) Zoom() uint {
	return uint(len(k))
}

// Parent returns the key of the containing tile one level up.
// The parent of the root (empty) key is the root key itself.
func (k Key) Parent() Key {
	if len(k) == 0 {
		return k
	}
	return k[:len(k)-1]
}

// Children returns the keys of the four subtiles one level down,
// in quadrant order (NW, NE, SW, SE).
func (k Key) Children() [4]Key {
	return [4]Key{k + "0", k + "1", k + "2", k + "3"}
}
