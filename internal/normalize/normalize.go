// Package normalize implements the Problem Normalizer: it assigns a dense,
// deterministic node index to every depot endpoint and ride stop, and
// derives the demand/capacity vectors the routing model builder needs.
//
// Node indexing law (spec.md §3): for V vehicles and R rides, indices
// 0..2V-1 are depots (2k = start, 2k+1 = end of vehicle k) and indices
// 2V..2V+2R-1 are ride tasks (2V+2r = pickup, 2V+2r+1 = delivery of ride r).
package normalize

import (
	"fmt"
	"log"

	"github.com/STAMIDES/optimization/internal/domain"
)

// RidePair is the pair of node indices for one ride's pickup and delivery.
type RidePair struct {
	PickupIndex   int
	DeliveryIndex int
}

// NormalizedProblem is the dense, indexed routing instance consumed
// read-only by every downstream component.
type NormalizedProblem struct {
	Problem domain.Problem

	Nodes       []domain.PickupDeliveryTask
	Coordinates []domain.Coordinate

	SeatDemands       []int
	WheelchairDemands []int

	SeatCapacities       []int
	WheelchairCapacities []int

	VehicleStarts []int // VehicleStarts[k] = 2k
	VehicleEnds   []int // VehicleEnds[k] = 2k+1

	RidePairs []RidePair

	NumVehicles int
	NumRides    int
}

// NumberOfNodes returns 2*|V| + 2*|R|.
func (p *NormalizedProblem) NumberOfNodes() int {
	return 2*p.NumVehicles + 2*p.NumRides
}

// Normalize produces a NormalizedProblem from a raw domain.Problem,
// validating time windows, ride completeness and capacities per spec.md
// §4.1.
func Normalize(problem domain.Problem) (*NormalizedProblem, error) {
	v := len(problem.Vehicles)
	r := len(problem.Rides)
	n := 2*v + 2*r

	np := &NormalizedProblem{
		Problem:              problem,
		Nodes:                make([]domain.PickupDeliveryTask, n),
		Coordinates:          make([]domain.Coordinate, n),
		SeatDemands:          make([]int, n),
		WheelchairDemands:    make([]int, n),
		SeatCapacities:       make([]int, v),
		WheelchairCapacities: make([]int, v),
		VehicleStarts:        make([]int, v),
		VehicleEnds:          make([]int, v),
		RidePairs:            make([]RidePair, r),
		NumVehicles:          v,
		NumRides:             r,
	}

	for k, vehicle := range problem.Vehicles {
		seatCap, wheelchairCap, err := effectiveCapacities(vehicle)
		if err != nil {
			return nil, err
		}
		if !vehicle.TimeWindow.Valid() {
			return nil, domain.NewError(domain.KindInvalidInput,
				fmt.Errorf("%w: vehicle %q shift window", domain.ErrInvalidTimeWindow, vehicle.ID))
		}
		if !vehicle.DepotStart.TimeWindow.Valid() || !vehicle.DepotEnd.TimeWindow.Valid() {
			return nil, domain.NewError(domain.KindInvalidInput,
				fmt.Errorf("%w: vehicle %q depot window", domain.ErrInvalidTimeWindow, vehicle.ID))
		}

		np.SeatCapacities[k] = seatCap
		np.WheelchairCapacities[k] = wheelchairCap

		startIdx := 2 * k
		endIdx := 2*k + 1
		np.VehicleStarts[k] = startIdx
		np.VehicleEnds[k] = endIdx

		startWindow := intersectWindow(vehicle.TimeWindow, vehicle.DepotStart.TimeWindow)
		endWindow := intersectWindow(vehicle.TimeWindow, vehicle.DepotEnd.TimeWindow)

		np.Nodes[startIdx] = domain.PickupDeliveryTask{
			Type:         domain.TaskDepotStart,
			Coordinates:  vehicle.DepotStart.Coordinates,
			TimeWindow:   startWindow,
			Address:      vehicle.DepotStart.Address,
			StopID:       vehicle.DepotStart.ID,
			NodeIndex:    startIdx,
			RideIndex:    -1,
			VehicleIndex: k,
		}
		np.Nodes[endIdx] = domain.PickupDeliveryTask{
			Type:         domain.TaskDepotEnd,
			Coordinates:  vehicle.DepotEnd.Coordinates,
			TimeWindow:   endWindow,
			Address:      vehicle.DepotEnd.Address,
			StopID:       vehicle.DepotEnd.ID,
			NodeIndex:    endIdx,
			RideIndex:    -1,
			VehicleIndex: k,
		}
		np.Coordinates[startIdx] = vehicle.DepotStart.Coordinates
		np.Coordinates[endIdx] = vehicle.DepotEnd.Coordinates
	}

	base := 2 * v
	for ri, ride := range problem.Rides {
		if ride.Pickup == (domain.Stop{}) || ride.Delivery == (domain.Stop{}) {
			return nil, domain.NewError(domain.KindInvalidInput,
				fmt.Errorf("%w: ride %q missing pickup or delivery", domain.ErrInvalidInput, ride.ID))
		}
		if !ride.Pickup.TimeWindow.Valid() || !ride.Delivery.TimeWindow.Valid() {
			return nil, domain.NewError(domain.KindInvalidInput,
				fmt.Errorf("%w: ride %q", domain.ErrInvalidTimeWindow, ride.ID))
		}

		pickupIdx := base + 2*ri
		deliveryIdx := base + 2*ri + 1

		seatDemand := ride.SeatDemand()
		wheelchairDemand := ride.WheelchairDemand()

		np.Nodes[pickupIdx] = domain.PickupDeliveryTask{
			Type:        domain.TaskPickup,
			Coordinates: ride.Pickup.Coordinates,
			TimeWindow:  ride.Pickup.TimeWindow,
			Address:     ride.Pickup.Address,
			StopID:      ride.ID + "-pickup",
			NodeIndex:   pickupIdx,
			RideIndex:   ri,
		}
		np.Nodes[deliveryIdx] = domain.PickupDeliveryTask{
			Type:        domain.TaskDelivery,
			Coordinates: ride.Delivery.Coordinates,
			TimeWindow:  ride.Delivery.TimeWindow,
			Address:     ride.Delivery.Address,
			StopID:      ride.ID + "-delivery",
			NodeIndex:   deliveryIdx,
			RideIndex:   ri,
		}
		np.Coordinates[pickupIdx] = ride.Pickup.Coordinates
		np.Coordinates[deliveryIdx] = ride.Delivery.Coordinates

		np.SeatDemands[pickupIdx] = seatDemand
		np.SeatDemands[deliveryIdx] = -seatDemand
		np.WheelchairDemands[pickupIdx] = wheelchairDemand
		np.WheelchairDemands[deliveryIdx] = -wheelchairDemand

		np.RidePairs[ri] = RidePair{PickupIndex: pickupIdx, DeliveryIndex: deliveryIdx}
	}

	log.Printf("[normalize] %d vehicles, %d rides, %d nodes", v, r, n)
	return np, nil
}

// effectiveCapacities resolves the seat/wheelchair capacity pair for a
// vehicle, falling back to the deprecated LegacyCapacity field only when
// both explicit fields are absent (see DESIGN.md, Open Question 1).
func effectiveCapacities(vehicle domain.Vehicle) (seat, wheelchair int, err error) {
	seat, wheelchair = vehicle.SeatCapacity, vehicle.WheelchairCapacity
	if seat == 0 && wheelchair == 0 && vehicle.LegacyCapacity != 0 {
		seat = vehicle.LegacyCapacity
	}
	if seat < 0 || wheelchair < 0 {
		return 0, 0, domain.NewError(domain.KindInvalidInput,
			fmt.Errorf("%w: vehicle %q", domain.ErrNegativeCapacity, vehicle.ID))
	}
	return seat, wheelchair, nil
}

func intersectWindow(a, b domain.TimeWindow) domain.TimeWindow {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if start > end {
		// No feasible overlap: collapse to the vehicle's own window so the
		// caller still gets a usable (if tight) interval; the solver will
		// surface infeasibility through dropped rides rather than a panic.
		return a
	}
	return domain.TimeWindow{Start: start, End: end}
}
