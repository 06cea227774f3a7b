package routing

import (
	"github.com/nextmv-io/sdk/route"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/normalize"
)

// compositeConstraint implements route.VehicleConstraint, folding together
// every per-vehicle feasibility rule of spec.md §4.3 that the router's
// built-in options don't already express: compatibility (§4.3.7),
// max-ride-time (§4.3.4) and rest-break ownership and non-overlap (§4.3.9).
// Grounded on CustomConstraint in nextmv-io-demos/Parcel Routing
// Techtalk/main.go and SizeClassificationConstraint in Custom VRP bakery
// delivery/router/main.go, both of which walk vehicle.Route() (indices into
// the stops slice, skipping the start/end sentinels at position 0 and
// len-1) to check a single rule; this generalizes that walk to evaluate
// three rules in one pass.
//
// Vehicle-shift containment (§4.3.6) is not re-checked here: route.Shifts
// bounds the vehicle's start/end cumulative time to its shift window and
// route.Windows bounds every node to its own window, so the implication
// "assigned to k => within k's shift" already holds structurally. The
// Debug.SkipShiftContainment flag is accepted for symmetry with spec.md §6
// but has no effect, documented in DESIGN.md.
type compositeConstraint struct {
	np                *normalize.NormalizedProblem
	cfg               *config.Config
	stopIDs           []string
	nodeIndexByStopID map[string]int
	breakOwner        map[string]string
	vehicleIndexByID  map[string]int
}

func newCompositeConstraint(
	np *normalize.NormalizedProblem,
	cfg *config.Config,
	stopIDs []string,
	nodeIndexByStopID map[string]int,
	breakOwner map[string]string,
) compositeConstraint {
	vehicleIndexByID := make(map[string]int, np.NumVehicles)
	for k, vehicle := range np.Problem.Vehicles {
		vehicleIndexByID[vehicle.ID] = k
	}
	return compositeConstraint{
		np:                np,
		cfg:               cfg,
		stopIDs:           stopIDs,
		nodeIndexByStopID: nodeIndexByStopID,
		breakOwner:        breakOwner,
		vehicleIndexByID:  vehicleIndexByID,
	}
}

// rideTimes accumulates the pickup/delivery arrival times seen for one ride
// on one vehicle's route, during a single Violated pass.
type rideTimes struct {
	pickup, delivery       int
	hasPickup, hasDelivery bool
}

// Violated satisfies route.VehicleConstraint.
func (c compositeConstraint) Violated(vehicle route.PartialVehicle) (route.VehicleConstraint, bool) {
	positions := vehicle.Route()
	if len(positions) <= 2 {
		return c, false
	}

	vehicleIdx, ok := c.vehicleIndexByID[vehicle.ID()]
	if !ok {
		return c, false
	}
	dv := c.np.Problem.Vehicles[vehicleIdx]

	etas := vehicle.Times().EstimatedArrival
	etds := vehicle.Times().EstimatedDeparture

	var breakStart, breakEnd int
	hasBreak := false
	rides := make(map[int]*rideTimes)

	for i := 1; i < len(positions)-1; i++ {
		pos := positions[i]
		if pos < 0 || pos >= len(c.stopIDs) || i >= len(etas) {
			continue
		}
		stopID := c.stopIDs[pos]

		nodeIdx, isRideNode := c.nodeIndexByStopID[stopID]
		if !isRideNode || nodeIdx < 0 {
			if owner, ok := c.breakOwner[stopID]; ok {
				if owner != vehicle.ID() {
					// A vehicle may only carry its own rest-break stop.
					return c, true
				}
				breakStart, breakEnd = etas[i], etds[i]
				hasBreak = true
			}
			continue
		}

		task := c.np.Nodes[nodeIdx]
		if task.Type != domain.TaskPickup && task.Type != domain.TaskDelivery {
			continue
		}

		if !c.cfg.Debug.SkipCompatibility {
			ride := c.np.Problem.Rides[task.RideIndex]
			if !compatible(ride, dv) {
				return c, true
			}
		}

		rt, ok := rides[task.RideIndex]
		if !ok {
			rt = &rideTimes{}
			rides[task.RideIndex] = rt
		}
		if task.Type == domain.TaskPickup {
			rt.pickup, rt.hasPickup = etas[i], true
		} else {
			rt.delivery, rt.hasDelivery = etas[i], true
		}
	}

	if !c.cfg.Debug.SkipMaxRideTime {
		for _, rt := range rides {
			if rt.hasPickup && rt.hasDelivery && rt.delivery-rt.pickup > c.cfg.MaxRideTime {
				return c, true
			}
		}
	}

	if !c.cfg.Debug.SkipRest && hasBreak {
		for _, rt := range rides {
			if !rt.hasPickup || !rt.hasDelivery {
				continue
			}
			overlapsFree := breakEnd <= rt.pickup || breakStart >= rt.delivery
			if !overlapsFree {
				return c, true
			}
		}
	}

	return c, false
}

// compatible implements spec.md §4.3.7: every ride characteristic must be
// supported by the vehicle, and a wheelchair-required ride needs non-zero
// wheelchair capacity.
func compatible(ride domain.RideRequest, vehicle domain.Vehicle) bool {
	for _, tag := range ride.Characteristics {
		if !vehicle.SupportsCharacteristic(tag) {
			return false
		}
	}
	if ride.WheelchairRequired && vehicle.WheelchairCapacity <= 0 {
		return false
	}
	return true
}
