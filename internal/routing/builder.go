// Package routing is the Routing Model Builder and Solution Decoder: the
// core of the system (spec.md §4.3-4.4). It translates a normalized,
// matrix-augmented problem into a Pickup-and-Delivery VRP with Time
// Windows on top of github.com/nextmv-io/sdk/route, drives its solver, and
// reconstructs a typed domain.Solution from the result.
package routing

import (
	"time"

	"github.com/nextmv-io/sdk/route"
	"github.com/nextmv-io/sdk/store"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/matrix"
	"github.com/STAMIDES/optimization/internal/normalize"
)

// referenceEpoch anchors the seconds-of-day domain onto a single fixed
// calendar day. Only differences between timestamps are ever meaningful to
// the solver or the decoder, and spec.md explicitly excludes multi-day
// planning, so one arbitrary anchor day is sufficient.
var referenceEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func toTime(seconds int) time.Time {
	return referenceEpoch.Add(time.Duration(seconds) * time.Second)
}

func toSeconds(t time.Time) int {
	return int(t.Sub(referenceEpoch).Seconds())
}

// breakStopPrefix marks the synthetic per-vehicle rest-break stops injected
// into the router's stop list (see DESIGN.md, "rest breaks").
const breakStopPrefix = "__break__"

// Model is the constructed routing model, ready to be solved.
type Model struct {
	np      *normalize.NormalizedProblem
	cfg     *config.Config
	router  route.Router
	planObj *planObjective

	// stopIDs[i] is the route.Stop ID for the i-th entry of the stops slice
	// passed to route.NewRouter (ride tasks, then synthetic break stops).
	stopIDs []string
	// nodeIndexByStopID maps a route.Stop.ID back to this problem's global
	// node index (for ride tasks) or -1 (for synthetic break stops).
	nodeIndexByStopID map[string]int
	// breakOwner maps a break stop's ID to its owning vehicle's ID.
	breakOwner map[string]string
}

// Build constructs the PDPTW routing model for a normalized problem and its
// distance/time matrices, per spec.md §4.3.
func Build(np *normalize.NormalizedProblem, matrices *matrix.Matrices, cfg *config.Config) (*Model, error) {
	v := np.NumVehicles
	r := np.NumRides

	stops := make([]route.Stop, 0, 2*r+v)
	stopIDs := make([]string, 0, 2*r+v)
	quantitiesSeat := make([]int, 0, 2*r+v)
	quantitiesWheelchair := make([]int, 0, 2*r+v)
	serviceTimes := make([]route.Service, 0, 2*r+v)
	windows := make([]route.Window, 0, 2*r+v)
	penalties := make([]int, 0, 2*r+v)
	nodeIndexByStopID := make(map[string]int, 2*r+v)

	for ri := range np.Problem.Rides {
		pair := np.RidePairs[ri]
		for _, nodeIdx := range []int{pair.PickupIndex, pair.DeliveryIndex} {
			task := np.Nodes[nodeIdx]
			stopID := task.StopID

			stops = append(stops, route.Stop{
				ID: stopID,
				Position: route.Position{
					Lon: task.Coordinates.Longitude,
					Lat: task.Coordinates.Latitude,
				},
			})
			stopIDs = append(stopIDs, stopID)
			nodeIndexByStopID[stopID] = nodeIdx

			quantitiesSeat = append(quantitiesSeat, np.SeatDemands[nodeIdx])
			quantitiesWheelchair = append(quantitiesWheelchair, np.WheelchairDemands[nodeIdx])

			serviceTimes = append(serviceTimes, route.Service{
				ID:       stopID,
				Duration: serviceTimeSeconds(np, nodeIdx, cfg),
			})

			windows = append(windows, route.Window{
				TimeWindow: route.TimeWindow{
					Start: toTime(task.TimeWindow.Start),
					End:   toTime(task.TimeWindow.End),
				},
				MaxWait: -1, // unbounded waiting, per spec.md §4.3.2
			})

			penalty := cfg.DropPenalty
			if cfg.Debug.SkipDropPenalties {
				penalty = 0
			}
			penalties = append(penalties, penalty)
		}
	}

	breakOwner := make(map[string]string)
	if !cfg.Debug.SkipRest {
		for k, vehicle := range np.Problem.Vehicles {
			if !vehicle.WithRest {
				continue
			}
			stopID := breakStopID(vehicle.ID)
			shiftStart, shiftEnd := vehicleShiftBounds(np, k)

			stops = append(stops, route.Stop{
				ID:       stopID,
				Position: route.Position{Lon: vehicle.DepotStart.Coordinates.Longitude, Lat: vehicle.DepotStart.Coordinates.Latitude},
			})
			stopIDs = append(stopIDs, stopID)
			nodeIndexByStopID[stopID] = -1
			breakOwner[stopID] = vehicle.ID

			quantitiesSeat = append(quantitiesSeat, 0)
			quantitiesWheelchair = append(quantitiesWheelchair, 0)

			serviceTimes = append(serviceTimes, route.Service{ID: stopID, Duration: cfg.RestTimeSeconds})

			windowStart := shiftStart + cfg.RestMinOffset
			windowEnd := shiftEnd - cfg.RestMinTail - cfg.RestTimeSeconds
			if windowEnd < windowStart {
				windowEnd = windowStart
			}
			windows = append(windows, route.Window{
				TimeWindow: route.TimeWindow{Start: toTime(windowStart), End: toTime(windowEnd)},
				MaxWait:    -1,
			})

			// The break stop can be left unassigned at the full DropPenalty, the
			// same price as a ride stop; SkipDropPenalties does not apply to it.
			penalties = append(penalties, cfg.DropPenalty)
		}
	}

	vehicles := make([]string, v)
	starts := make([]route.Position, v)
	ends := make([]route.Position, v)
	shifts := make([]route.TimeWindow, v)
	seatCapacities := make([]int, v)
	wheelchairCapacities := make([]int, v)
	backlogs := make([]route.Backlog, 0, v)

	for k, vehicle := range np.Problem.Vehicles {
		vehicles[k] = vehicle.ID
		starts[k] = route.Position{Lon: vehicle.DepotStart.Coordinates.Longitude, Lat: vehicle.DepotStart.Coordinates.Latitude}
		ends[k] = route.Position{Lon: vehicle.DepotEnd.Coordinates.Longitude, Lat: vehicle.DepotEnd.Coordinates.Latitude}

		shiftStart, shiftEnd := vehicleShiftBounds(np, k)
		shifts[k] = route.TimeWindow{Start: toTime(shiftStart), End: toTime(shiftEnd)}

		seatCap, wheelchairCap := np.SeatCapacities[k], np.WheelchairCapacities[k]
		if vehicle.HasPreBoarded() {
			if ri := rideIndexByID(np, vehicle.ActiveRideIDPreBoarded); ri >= 0 {
				ride := np.Problem.Rides[ri]
				seatCap -= ride.SeatDemand()
				wheelchairCap -= ride.WheelchairDemand()

				deliveryStopID := np.Nodes[np.RidePairs[ri].DeliveryIndex].StopID
				backlogs = append(backlogs, route.Backlog{VehicleID: vehicle.ID, Stops: []string{deliveryStopID}})
			}
		}
		seatCapacities[k] = seatCap
		wheelchairCapacities[k] = wheelchairCap
	}

	jobs := make([]route.Job, 0, r)
	if !cfg.Debug.SkipPickupDelivery {
		for ri := range np.Problem.Rides {
			pair := np.RidePairs[ri]
			jobs = append(jobs, route.Job{
				PickUp:  np.Nodes[pair.PickupIndex].StopID,
				DropOff: np.Nodes[pair.DeliveryIndex].StopID,
			})
		}
	}

	engineToNode := buildEngineIndex(stopIDs, nodeIndexByStopID, breakOwner, vehicles, np.VehicleStarts, np.VehicleEnds)
	distanceByIndex := newNodeMatrixMeasure(toFloatMatrix(matrices.Distance), engineToNode)
	timeByIndex := newNodeMatrixMeasure(toFloatMatrix(matrices.Duration), engineToNode)

	valueFunctionMeasures := make([]route.ByIndex, v)
	travelTimeMeasures := make([]route.ByIndex, v)
	for k := 0; k < v; k++ {
		if cfg.Debug.SkipDistanceDimension {
			valueFunctionMeasures[k] = timeByIndex
		} else {
			valueFunctionMeasures[k] = distanceByIndex
		}
		if cfg.Debug.SkipTimeDimension {
			travelTimeMeasures[k] = distanceByIndex
		} else {
			travelTimeMeasures[k] = timeByIndex
		}
	}

	planObj := newPlanObjective(np, cfg, matrices.Distance, stopIDs, nodeIndexByStopID, breakOwner)

	opts := []route.Option{
		route.Starts(starts),
		route.Ends(ends),
		route.Shifts(shifts),
		route.Services(serviceTimes),
		route.Windows(windows),
		route.Unassigned(penalties),
		route.ValueFunctionMeasures(valueFunctionMeasures),
		route.TravelTimeMeasures(travelTimeMeasures),
		route.Update(newVehicleObjective(np, cfg, stopIDs, nodeIndexByStopID), planObj),
	}
	if !cfg.Debug.SkipPickupDelivery {
		opts = append(opts, route.Precedence(jobs))
	}
	if !cfg.Debug.SkipSeatCapacity {
		opts = append(opts, route.Capacity(quantitiesSeat, seatCapacities))
	}
	if !cfg.Debug.SkipWheelchairCapacity {
		opts = append(opts, route.Capacity(quantitiesWheelchair, wheelchairCapacities))
	}
	if len(backlogs) > 0 {
		opts = append(opts, route.Backlogs(backlogs))
	}
	if !cfg.Debug.SkipCompatibility || !cfg.Debug.SkipRest || !cfg.Debug.SkipMaxRideTime {
		constraint := newCompositeConstraint(np, cfg, stopIDs, nodeIndexByStopID, breakOwner)
		opts = append(opts, route.Constraint(constraint, vehicles))
	}

	router, err := route.NewRouter(stops, vehicles, opts...)
	if err != nil {
		return nil, domain.NewError(domain.KindSolverInvalid, err)
	}

	return &Model{
		np:                np,
		cfg:               cfg,
		router:            router,
		planObj:           planObj,
		stopIDs:           stopIDs,
		nodeIndexByStopID: nodeIndexByStopID,
		breakOwner:        breakOwner,
	}, nil
}

// Solver returns a store.Solver with a diagram expansion limit of 1 and a
// wall-clock time limit, ready to run. No first-solution strategy or
// local-search metaheuristic is selected; the router's own search is used
// as is. opts is the caller-supplied store.Options
// (e.g. from run.Run's CLI flags); a zero Limits.Duration is filled in from
// Config.SolveTimeLimit, mirroring every teacher demo's
// "if opts.Limits.Duration == 0 { ... }" fallback.
func (m *Model) Solver(opts store.Options) (store.Solver, error) {
	opts.Diagram.Expansion.Limit = 1
	if opts.Limits.Duration == 0 {
		opts.Limits.Duration = m.cfg.SolveTimeLimit
	}

	solver, err := m.router.Solver(opts)
	if err != nil {
		return nil, domain.NewError(domain.KindSolverInvalid, err)
	}
	return solver, nil
}

// Router exposes the underlying route.Router, e.g. to attach a custom
// Format callback from the decode package.
func (m *Model) Router() route.Router { return m.router }

// AttachFormat registers the Solution Decoder (spec.md §4.4) as this
// model's router.Format callback, so that run.Run's generic encoder
// serializes a typed domain.Solution instead of the router's default
// output shape. geo may be nil to skip route-geometry enrichment.
func (m *Model) AttachFormat(geo GeometryFetcher, poolSize int) {
	m.router.Format(Format(m.np, m.cfg, m.stopIDs, m.nodeIndexByStopID, m.breakOwner, geo, poolSize))
}

func serviceTimeSeconds(np *normalize.NormalizedProblem, nodeIdx int, cfg *config.Config) int {
	task := np.Nodes[nodeIdx]
	if task.Type == domain.TaskDepotStart || task.Type == domain.TaskDepotEnd {
		return 0
	}
	ride := np.Problem.Rides[task.RideIndex]
	for _, tag := range ride.Characteristics {
		if tag == "rampa_electrica" {
			return cfg.StopTimeElectricRamp
		}
	}
	if ride.WheelchairRequired {
		return cfg.StopTimeWheelchair
	}
	return cfg.StopTimeCommon
}

func vehicleShiftBounds(np *normalize.NormalizedProblem, vehicleIdx int) (start, end int) {
	startTask := np.Nodes[np.VehicleStarts[vehicleIdx]]
	endTask := np.Nodes[np.VehicleEnds[vehicleIdx]]
	start = startTask.TimeWindow.Start
	end = endTask.TimeWindow.End
	return start, end
}

func rideIndexByID(np *normalize.NormalizedProblem, rideID string) int {
	for i, ride := range np.Problem.Rides {
		if ride.ID == rideID {
			return i
		}
	}
	return -1
}

func breakStopID(vehicleID string) string {
	return breakStopPrefix + vehicleID
}

func toFloatMatrix(m [][]int) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = float64(v)
		}
	}
	return out
}

