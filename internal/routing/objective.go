package routing

import (
	"github.com/nextmv-io/sdk/route"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/normalize"
)

// vehicleObjective implements route.VehicleUpdater: the additional, per-
// vehicle cost term layered on top of the base arc-distance cost already
// contributed by the router's ValueFunctionMeasures (spec.md §4.3.4's soft
// delivery-lateness bound). Grounded on the vehicleData.Update pattern in
// customization-best-practices/routing-customized-value/main.go, generalized
// from earliness/lateness against a fixed target time to lateness-only
// against a delivery window's start.
type vehicleObjective struct {
	np                *normalize.NormalizedProblem
	cfg               *config.Config
	stopIDs           []string
	nodeIndexByStopID map[string]int
}

func newVehicleObjective(np *normalize.NormalizedProblem, cfg *config.Config, stopIDs []string, nodeIndexByStopID map[string]int) vehicleObjective {
	return vehicleObjective{np: np, cfg: cfg, stopIDs: stopIDs, nodeIndexByStopID: nodeIndexByStopID}
}

// Update satisfies route.VehicleUpdater.
func (v vehicleObjective) Update(s route.PartialVehicle) (route.VehicleUpdater, int, bool) {
	positions := s.Route()
	if len(positions) <= 2 {
		return v, 0, true
	}

	etas := s.Times().EstimatedArrival
	value := 0
	for i := 1; i < len(positions)-1; i++ {
		pos := positions[i]
		if pos < 0 || pos >= len(v.stopIDs) {
			continue
		}
		nodeIdx, ok := v.nodeIndexByStopID[v.stopIDs[pos]]
		if !ok || nodeIdx < 0 {
			continue // synthetic break stop, no lateness term
		}
		task := v.np.Nodes[nodeIdx]
		if task.Type != domain.TaskDelivery {
			continue
		}
		if i >= len(etas) {
			continue
		}
		if lateness := etas[i] - int(toTime(task.TimeWindow.Start).Unix()); lateness > 0 {
			value += lateness * v.cfg.SoftDeliveryPenaltyPerSecond
		}
	}

	return v, value, true
}

// planObjective implements route.PlanUpdater: the plan-wide span cost
// (spec.md §4.3.1, "global span cost on the distance dimension, coefficient
// 100"), summed with every vehicle's soft-lateness value. Grounded on
// fleetData.Update in Custom VRP bakery delivery/router/main.go, which
// aggregates per-vehicle Value()s into one plan-wide value and adds its own
// plan-level term (there, an imbalance penalty on route-length spread; here,
// a span-cost penalty on the longest route's distance).
type planObjective struct {
	np                *normalize.NormalizedProblem
	cfg               *config.Config
	distance          [][]int
	stopIDs           []string
	nodeIndexByStopID map[string]int
	breakOwner        map[string]string
	vehicleIndexByID  map[string]int
}

func newPlanObjective(
	np *normalize.NormalizedProblem,
	cfg *config.Config,
	distance [][]int,
	stopIDs []string,
	nodeIndexByStopID map[string]int,
	breakOwner map[string]string,
) *planObjective {
	vehicleIndexByID := make(map[string]int, np.NumVehicles)
	for k, vehicle := range np.Problem.Vehicles {
		vehicleIndexByID[vehicle.ID] = k
	}
	return &planObjective{
		np:                np,
		cfg:               cfg,
		distance:          distance,
		stopIDs:           stopIDs,
		nodeIndexByStopID: nodeIndexByStopID,
		breakOwner:        breakOwner,
		vehicleIndexByID:  vehicleIndexByID,
	}
}

// Update satisfies route.PlanUpdater.
func (p *planObjective) Update(plan route.PartialPlan, vehicles []route.PartialVehicle) (route.PlanUpdater, int, bool) {
	sumVehicleValues := 0
	maxDistance := 0
	for _, vehicle := range vehicles {
		sumVehicleValues += vehicle.Value()
		if d := p.vehicleDistance(vehicle); d > maxDistance {
			maxDistance = d
		}
	}

	spanCost := maxDistance * p.cfg.SpanCostCoefficient
	return p, sumVehicleValues + spanCost, true
}

// vehicleDistance sums the matrix distance along a vehicle's current route,
// from its start depot through every assigned stop to its end depot.
// Synthetic rest-break stops have no node of their own in the distance
// matrix, so they are aliased onto their owning vehicle's start depot node
// (it shares its coordinates exactly), mirroring measure.go's engine-index
// translation.
func (p *planObjective) vehicleDistance(vehicle route.PartialVehicle) int {
	k, ok := p.vehicleIndexByID[vehicle.ID()]
	if !ok {
		return 0
	}
	positions := vehicle.Route()
	if len(positions) < 2 {
		return 0
	}

	nodes := make([]int, len(positions))
	nodes[0] = p.np.VehicleStarts[k]
	nodes[len(positions)-1] = p.np.VehicleEnds[k]
	for i := 1; i < len(positions)-1; i++ {
		pos := positions[i]
		if pos < 0 || pos >= len(p.stopIDs) {
			nodes[i] = nodes[i-1]
			continue
		}
		stopID := p.stopIDs[pos]
		if nodeIdx, ok := p.nodeIndexByStopID[stopID]; ok && nodeIdx >= 0 {
			nodes[i] = nodeIdx
			continue
		}
		nodes[i] = p.np.VehicleStarts[k]
	}

	total := 0
	for i := 1; i < len(nodes); i++ {
		total += p.distance[nodes[i-1]][nodes[i]]
	}
	return total
}
