// Package matrix implements the Matrix Adapter: it requests a road-distance
// and road-time matrix for an ordered list of node coordinates from the
// external road-network service, scales distances into integer units, and
// exposes the two N×N matrices indexed by node (spec.md §4.2).
package matrix

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
)

// Matrices holds the two N×N matrices produced by BuildMatrices, indexed by
// node exactly as the Normalizer ordered its coordinates.
type Matrices struct {
	Distance [][]int // scaled by Config.DistanceScale
	Duration [][]int // seconds
}

// Client talks to the OSRM-compatible road-network service described in
// spec.md §6. It is stateless over HTTP and safe to share across solves
// (spec.md §5).
type Client struct {
	cfg        *config.OSRM
	httpClient *http.Client
}

// NewClient builds a Client bound to the given road-network configuration.
func NewClient(cfg *config.OSRM) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// matrixResponse is the JSON shape returned by the OSRM-compatible
// table endpoint (spec.md §6).
type matrixResponse struct {
	Code      string      `json:"code"`
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations"`
}

// routeResponse is the JSON shape returned by the route endpoint.
type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// BuildMatrices requests the distance/time matrix for coordinates (in node
// order) and returns the two scaled, integer-valued N×N matrices. Requests
// larger than cfg.BatchSize coordinates are tiled into row×column sub-blocks
// against explicit sources/destinations index lists and stitched back
// together.
func (c *Client) BuildMatrices(coordinates []domain.Coordinate, distanceScale int) (*Matrices, error) {
	n := len(coordinates)
	distance := newIntMatrix(n)
	duration := newIntMatrix(n)
	for i := range distance {
		distance[i][i] = 0
		duration[i][i] = 0
	}

	batch := c.cfg.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}

	for rowStart := 0; rowStart < n; rowStart += batch {
		rowEnd := min(rowStart+batch, n)
		sources := indexRange(rowStart, rowEnd)

		for colStart := 0; colStart < n; colStart += batch {
			colEnd := min(colStart+batch, n)
			destinations := indexRange(colStart, colEnd)

			resp, err := c.queryMatrix(coordinates, sources, destinations)
			if err != nil {
				return nil, err
			}

			for i, r := range sources {
				for j, cIdx := range destinations {
					if i >= len(resp.Distances) || j >= len(resp.Distances[i]) {
						return nil, domain.NewError(domain.KindMatrixQuery,
							fmt.Errorf("%w: missing value at (%d,%d)", domain.ErrMatrixQuery, r, cIdx))
					}
					distance[r][cIdx] = scaleDistance(resp.Distances[i][j], distanceScale)
					duration[r][cIdx] = int(resp.Durations[i][j])
				}
			}
		}
	}

	for i := range distance {
		distance[i][i] = 0
		duration[i][i] = 0
	}

	log.Printf("[matrix] built %dx%d distance/time matrices", n, n)
	return &Matrices{Distance: distance, Duration: duration}, nil
}

func (c *Client) queryMatrix(coordinates []domain.Coordinate, sources, destinations []int) (*matrixResponse, error) {
	coordPath := encodeCoordinates(coordinates)
	endpoint := fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.MatrixEndpoint, coordPath)

	query := parseParams(c.cfg.MatrixParams)
	query.Set("sources", joinInts(sources))
	query.Set("destinations", joinInts(destinations))

	reqURL := endpoint + "?" + query.Encode()

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, domain.NewError(domain.KindMatrixQuery, fmt.Errorf("%w: %v", domain.ErrMatrixQuery, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewError(domain.KindMatrixQuery,
			fmt.Errorf("%w: http status %d", domain.ErrMatrixQuery, resp.StatusCode))
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.NewError(domain.KindMatrixQuery, fmt.Errorf("%w: %v", domain.ErrMatrixQuery, err))
	}
	if body.Code != "Ok" {
		return nil, domain.NewError(domain.KindMatrixQuery,
			fmt.Errorf("%w: code=%s", domain.ErrMatrixQuery, body.Code))
	}

	return &body, nil
}

// RouteGeometry requests the polyline5-encoded geometry between an ordered
// list of coordinates from the road-network service's route endpoint.
func (c *Client) RouteGeometry(coordinates []domain.Coordinate) (string, error) {
	coordPath := encodeCoordinates(coordinates)
	endpoint := fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.RouteEndpoint, coordPath)

	query := parseParams(c.cfg.RouteParams)
	reqURL := endpoint + "?" + query.Encode()

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return "", domain.NewError(domain.KindRouteQuery, fmt.Errorf("%w: %v", domain.ErrRouteQuery, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewError(domain.KindRouteQuery,
			fmt.Errorf("%w: http status %d", domain.ErrRouteQuery, resp.StatusCode))
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", domain.NewError(domain.KindRouteQuery, fmt.Errorf("%w: %v", domain.ErrRouteQuery, err))
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return "", domain.NewError(domain.KindRouteQuery,
			fmt.Errorf("%w: code=%s", domain.ErrRouteQuery, body.Code))
	}

	return body.Routes[0].Geometry, nil
}

func encodeCoordinates(coordinates []domain.Coordinate) string {
	parts := make([]string, len(coordinates))
	for i, c := range coordinates {
		parts[i] = fmt.Sprintf("%g,%g", c.Longitude, c.Latitude)
	}
	return strings.Join(parts, ";")
}

func parseParams(raw string) url.Values {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return values
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}

func indexRange(start, end int) []int {
	out := make([]int, end-start)
	for i := range out {
		out[i] = start + i
	}
	return out
}

func newIntMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func scaleDistance(meters float64, scale int) int {
	// distances arrive in meters; spec.md works in kilometer-scale units
	// multiplied by the configured integer scale.
	return int((meters / 1000.0) * float64(scale))
}
