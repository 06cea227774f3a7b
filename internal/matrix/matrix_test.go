package matrix_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/matrix"
	"github.com/stretchr/testify/require"
)

func TestBuildMatricesStitchesTiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sources := len(splitSemicolon(q.Get("sources")))
		destinations := len(splitSemicolon(q.Get("destinations")))

		distances := make([][]float64, sources)
		durations := make([][]float64, sources)
		for i := range distances {
			distances[i] = make([]float64, destinations)
			durations[i] = make([]float64, destinations)
			for j := range distances[i] {
				distances[i][j] = 1000 // 1km in meters
				durations[i][j] = 60
			}
		}

		resp := map[string]any{
			"code":      "Ok",
			"distances": distances,
			"durations": durations,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := &config.OSRM{
		BaseURL:        server.URL,
		MatrixEndpoint: "table/v1/driving",
		MatrixParams:   "annotations=distance,duration",
		BatchSize:      2, // force tiling over 4 coordinates
	}
	client := matrix.NewClient(cfg)

	coords := []domain.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0.01, Longitude: 0},
		{Latitude: 0.02, Longitude: 0},
		{Latitude: 0.03, Longitude: 0},
	}

	m, err := client.BuildMatrices(coords, 100)
	require.NoError(t, err)
	require.Len(t, m.Distance, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			require.Equal(t, 100, m.Distance[i][j])
			require.Equal(t, 60, m.Duration[i][j])
		}
	}
}

func TestBuildMatricesPropagatesErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": "NoRoute"})
	}))
	defer server.Close()

	cfg := &config.OSRM{BaseURL: server.URL, MatrixEndpoint: "table/v1/driving", BatchSize: 10}
	client := matrix.NewClient(cfg)

	_, err := client.BuildMatrices([]domain.Coordinate{{}, {}}, 100)
	require.Error(t, err)
}

func splitSemicolon(s string) []string {
	if s == "" {
		return nil
	}
	out := []string{""}
	idx := 0
	for _, r := range s {
		if r == ';' {
			out = append(out, "")
			idx++
			continue
		}
		out[idx] += string(r)
	}
	return out
}
