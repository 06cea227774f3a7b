package polyline_test

import (
	"testing"

	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/polyline"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]domain.GeoPoint{
		{{Lon: -120.2, Lat: 38.5}, {Lon: -120.95, Lat: 40.7}, {Lon: -126.453, Lat: 43.252}},
		{{Lon: 0, Lat: 0}},
		{{Lon: 2.349014, Lat: 48.864716}, {Lon: 2.295694, Lat: 48.858093}},
	}

	for _, points := range cases {
		encoded := polyline.Encode(points)
		decoded := polyline.Decode(encoded)
		require.Len(t, decoded, len(points))
		for i, p := range points {
			require.InDelta(t, p.Lat, decoded[i].Lat, 1e-5)
			require.InDelta(t, p.Lon, decoded[i].Lon, 1e-5)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	require.Nil(t, polyline.Decode(""))
}

func TestKnownEncoding(t *testing.T) {
	// The canonical Google example: (38.5,-120.2) (40.7,-120.95) (43.252,-126.453)
	points := []domain.GeoPoint{
		{Lon: -120.2, Lat: 38.5},
		{Lon: -120.95, Lat: 40.7},
		{Lon: -126.453, Lat: 43.252},
	}
	got := polyline.Encode(points)
	require.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", got)
}
