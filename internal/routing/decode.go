package routing

import (
	"sort"
	"strings"

	"github.com/nextmv-io/sdk/route"
	"golang.org/x/sync/errgroup"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/matrix"
	"github.com/STAMIDES/optimization/internal/normalize"
	"github.com/STAMIDES/optimization/internal/polyline"
)

// GeometryFetcher requests route geometry between an ordered list of
// coordinates from the road-network service (spec.md §6), exposed here as
// an interface so Format can be exercised in tests without a real HTTP
// client; *matrix.Client satisfies it.
type GeometryFetcher interface {
	RouteGeometry(coordinates []domain.Coordinate) (string, error)
}

// Format builds the func(*route.Plan) any callback the Solution Decoder
// (spec.md §4.4) registers against the router via router.Format(...),
// grounded on the outputFormat closures of
// nextmv-io-demos/customization-best-practices/routing-default/main.go and
// .../routing-customized-value/main.go: a closure over the problem-specific
// bookkeeping (here, np/cfg/stopIDs/nodeIndexByStopID/breakOwner) that walks
// p.Vehicles[].Route and p.Unassigned and reconstructs a typed value — a
// domain.Solution, rather than those demos' ad hoc map[string]any.
//
// When geo is non-nil, every served route's geometry is enriched with a
// polyline5-decoded point list fetched in parallel, bounded by poolSize
// concurrent requests (spec.md §5). Every fetch is still dispatched after a
// failure, but a failure on any one geometry query fails the whole
// enrichment: no route keeps its geometry, and the error is reported via
// Solution.ErrorMessage rather than partial success.
func Format(np *normalize.NormalizedProblem, cfg *config.Config, stopIDs []string, nodeIndexByStopID map[string]int, breakOwner map[string]string, geo GeometryFetcher, poolSize int) func(p *route.Plan) any {
	return func(p *route.Plan) any {
		solution := Decode(np, cfg, stopIDs, nodeIndexByStopID, breakOwner, p)
		if geo != nil {
			if err := enrichGeometry(np, &solution, geo, poolSize); err != nil {
				solution.ErrorMessage = domain.NewError(domain.KindRouteQuery, err).Error()
			}
		}
		return solution
	}
}

// enrichGeometry fetches and decodes each route's road geometry concurrently
// against a bounded worker pool (default 10, spec.md §5), mutating
// solution.Routes in place. On error every route's geometry is cleared.
func enrichGeometry(np *normalize.NormalizedProblem, solution *domain.Solution, geo GeometryFetcher, poolSize int) error {
	if poolSize <= 0 {
		poolSize = 10
	}
	vehicleIndexByID := make(map[string]int, np.NumVehicles)
	for k, vehicle := range np.Problem.Vehicles {
		vehicleIndexByID[vehicle.ID] = k
	}

	var g errgroup.Group
	g.SetLimit(poolSize)

	for i := range solution.Routes {
		i := i
		g.Go(func() error {
			r := &solution.Routes[i]
			k, ok := vehicleIndexByID[r.VehicleID]
			if !ok {
				return nil
			}
			coords := make([]domain.Coordinate, 0, len(r.Visits)+2)
			coords = append(coords, np.Nodes[np.VehicleStarts[k]].Coordinates)
			for _, v := range r.Visits {
				coords = append(coords, v.Coordinates)
			}
			coords = append(coords, np.Nodes[np.VehicleEnds[k]].Coordinates)

			encoded, err := geo.RouteGeometry(coords)
			if err != nil {
				return err
			}
			r.Geometry = polyline.Decode(encoded)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i := range solution.Routes {
			solution.Routes[i].Geometry = nil
		}
		return err
	}
	return nil
}

var _ GeometryFetcher = (*matrix.Client)(nil)

// Decode walks a solved route.Plan and reconstructs the typed domain.Solution
// per spec.md §4.4: one Route per vehicle with at least one non-depot visit,
// and the set of dropped ride ids, deduplicated across their pickup and
// delivery halves.
func Decode(
	np *normalize.NormalizedProblem,
	cfg *config.Config,
	stopIDs []string,
	nodeIndexByStopID map[string]int,
	breakOwner map[string]string,
	p *route.Plan,
) domain.Solution {
	solution := domain.Solution{
		Routes:       make([]domain.Route, 0, len(p.Vehicles)),
		DroppedRides: make([]string, 0),
	}

	for _, vehicle := range p.Vehicles {
		if len(vehicle.Route) <= 2 {
			continue // only the start/end depot: nothing served
		}

		visits := make([]domain.Visit, 0, len(vehicle.Route))
		var restWindow *[2]int

		for i, stop := range vehicle.Route {
			nodeIdx, isRideNode := nodeIndexByStopID[stop.ID]

			var task domain.PickupDeliveryTask
			switch {
			case isRideNode && nodeIdx >= 0:
				task = np.Nodes[nodeIdx]
			case strings.HasPrefix(stop.ID, breakStopPrefix):
				// Synthetic rest-break stop: not a domain task, reported via
				// Route.RestTimeWindow instead of as a Visit.
				start := toSeconds(stop.EstimatedArrival)
				end := toSeconds(stop.EstimatedDeparture)
				restWindow = &[2]int{start, end}
				continue
			default:
				continue
			}

			arrival := toSeconds(stop.EstimatedArrival)
			travelToNext := 0
			if i+1 < len(vehicle.Route) {
				travelToNext = toSeconds(vehicle.Route[i+1].EstimatedArrival) - toSeconds(stop.EstimatedDeparture)
			}

			var rideID, userID, direction string
			if task.RideIndex >= 0 {
				ride := np.Problem.Rides[task.RideIndex]
				rideID = ride.ID
				userID = ride.UserID
				direction = ride.Direction
			}

			visits = append(visits, domain.Visit{
				Position:         len(visits),
				RideID:           rideID,
				UserID:           userID,
				Direction:        direction,
				Address:          task.Address,
				Coordinates:      task.Coordinates,
				Type:             task.Type,
				StopID:           task.StopID,
				ArrivalTime:      arrival,
				TravelTimeToNext: travelToNext,
				SolutionWindow:   [2]int{arrival, arrival},
			})
		}

		if len(visits) == 0 {
			continue
		}

		duration := toSeconds(vehicle.Route[len(vehicle.Route)-1].EstimatedArrival) - toSeconds(vehicle.Route[0].EstimatedArrival)

		solution.Routes = append(solution.Routes, domain.Route{
			VehicleID:      vehicle.ID,
			DistanceKm:     float64(vehicle.RouteDistance) / float64(cfg.DistanceScale),
			Duration:       duration,
			Visits:         visits,
			TimeWindow:     domain.TimeWindow{Start: toSeconds(vehicle.Route[0].EstimatedArrival), End: toSeconds(vehicle.Route[len(vehicle.Route)-1].EstimatedArrival)},
			RestTimeWindow: restWindow,
		})
	}

	droppedSet := make(map[string]struct{})
	for _, unassigned := range p.Unassigned {
		rideID := rideIDFromStopID(unassigned.ID, breakOwner)
		if rideID == "" {
			continue
		}
		droppedSet[rideID] = struct{}{}
	}
	for rideID := range droppedSet {
		solution.DroppedRides = append(solution.DroppedRides, rideID)
	}
	sort.Strings(solution.DroppedRides)

	return solution
}

// rideIDFromStopID recovers the owning ride id from a pickup/delivery stop
// id built by the Normalizer ("<rideID>-pickup" / "<rideID>-delivery").
// Synthetic break stop ids never represent a ride and are ignored.
func rideIDFromStopID(stopID string, breakOwner map[string]string) string {
	if _, ok := breakOwner[stopID]; ok {
		return ""
	}
	if id, ok := strings.CutSuffix(stopID, "-pickup"); ok {
		return id
	}
	if id, ok := strings.CutSuffix(stopID, "-delivery"); ok {
		return id
	}
	return ""
}
