// Package polyline implements the encoded-polyline ("polyline5") format at
// 1e-5 degree resolution used by the road-network service's route geometry
// responses (spec.md §6). Decode is the inverse of the simple two-accumulator
// encoder grounded on the courier-emulation example in the retrieved pack
// (other_examples/.../delivery_simulator.go.go: encodePolyline/encodeNumber),
// generalized from two-point routes to arbitrary-length ones.
package polyline

import (
	"strings"

	"github.com/STAMIDES/optimization/internal/domain"
)

const precision = 1e5

// Decode interprets s as a sequence of signed varint deltas (base 32,
// offset 63) applied to latitude then longitude accumulators, and returns
// the decoded (lon, lat) pairs.
func Decode(s string) []domain.GeoPoint {
	if s == "" {
		return nil
	}

	points := make([]domain.GeoPoint, 0, len(s)/4)
	index := 0
	lat, lon := 0, 0

	for index < len(s) {
		dlat, next := decodeValue(s, index)
		index = next
		lat += dlat

		dlon, next2 := decodeValue(s, index)
		index = next2
		lon += dlon

		points = append(points, domain.GeoPoint{
			Lon: float64(lon) / precision,
			Lat: float64(lat) / precision,
		})
	}

	return points
}

// decodeValue decodes one signed varint starting at index, returning the
// value and the index just past it.
func decodeValue(s string, index int) (int, int) {
	shift, result := uint(0), 0
	for {
		b := int(s[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// Encode is the inverse of Decode: it turns an ordered list of (lon, lat)
// points into a polyline5 string, mirroring encodePolyline/encodeNumber
// from the retrieved courier-emulation example.
func Encode(points []domain.GeoPoint) string {
	var b strings.Builder
	prevLat, prevLon := 0, 0

	for _, p := range points {
		lat := round(p.Lat * precision)
		lon := round(p.Lon * precision)

		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return b.String()
}

func encodeValue(b *strings.Builder, v int) {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v = v << 1
	}
	for v >= 0x20 {
		b.WriteByte(byte((0x20 | (v & 0x1f)) + 63))
		v >>= 5
	}
	b.WriteByte(byte(v + 63))
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
