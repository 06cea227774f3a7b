package normalize_test

import (
	"testing"

	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/normalize"
	"github.com/stretchr/testify/require"
)

func vehicle(id string, seat, wheelchair int) domain.Vehicle {
	return domain.Vehicle{
		ID:                 id,
		SeatCapacity:       seat,
		WheelchairCapacity: wheelchair,
		TimeWindow:         domain.TimeWindow{Start: 0, End: 28800},
		DepotStart:         domain.Depot{ID: id + "-start", TimeWindow: domain.TimeWindow{Start: 0, End: 28800}},
		DepotEnd:           domain.Depot{ID: id + "-end", TimeWindow: domain.TimeWindow{Start: 0, End: 28800}},
	}
}

func ride(id string) domain.RideRequest {
	return domain.RideRequest{
		ID:       id,
		Pickup:   domain.Stop{TimeWindow: domain.TimeWindow{Start: 3600, End: 7200}},
		Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 7200, End: 10800}},
	}
}

func TestNodeCountLaw(t *testing.T) {
	problem := domain.Problem{
		Vehicles: []domain.Vehicle{vehicle("v1", 4, 0), vehicle("v2", 4, 1)},
		Rides:    []domain.RideRequest{ride("r1"), ride("r2"), ride("r3")},
	}

	np, err := normalize.Normalize(problem)
	require.NoError(t, err)
	require.Equal(t, 2*2+2*3, np.NumberOfNodes())

	for r, pair := range np.RidePairs {
		require.Equal(t, 2*2+2*r, pair.PickupIndex)
		require.Equal(t, 2*2+2*r+1, pair.DeliveryIndex)
		require.Equal(t, domain.TaskPickup, np.Nodes[pair.PickupIndex].Type)
		require.Equal(t, domain.TaskDelivery, np.Nodes[pair.DeliveryIndex].Type)
	}

	require.Equal(t, 0, np.VehicleStarts[0])
	require.Equal(t, 1, np.VehicleEnds[0])
	require.Equal(t, 2, np.VehicleStarts[1])
	require.Equal(t, 3, np.VehicleEnds[1])
}

func TestDemandBalance(t *testing.T) {
	problem := domain.Problem{
		Vehicles: []domain.Vehicle{vehicle("v1", 4, 1)},
		Rides: []domain.RideRequest{
			{ID: "r1", HasCompanion: true, Pickup: domain.Stop{TimeWindow: domain.TimeWindow{Start: 0, End: 100}}, Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 100, End: 200}}},
			{ID: "r2", WheelchairRequired: true, Pickup: domain.Stop{TimeWindow: domain.TimeWindow{Start: 0, End: 100}}, Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 100, End: 200}}},
		},
	}

	np, err := normalize.Normalize(problem)
	require.NoError(t, err)

	seatSum, wheelchairSum := 0, 0
	for i := 0; i < np.NumberOfNodes(); i++ {
		seatSum += np.SeatDemands[i]
		wheelchairSum += np.WheelchairDemands[i]
	}
	require.Equal(t, 0, seatSum)
	require.Equal(t, 0, wheelchairSum)
}

func TestInvalidTimeWindowRejected(t *testing.T) {
	problem := domain.Problem{
		Vehicles: []domain.Vehicle{vehicle("v1", 4, 0)},
		Rides: []domain.RideRequest{
			{ID: "r1", Pickup: domain.Stop{TimeWindow: domain.TimeWindow{Start: 500, End: 100}}, Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 100, End: 200}}},
		},
	}

	_, err := normalize.Normalize(problem)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidTimeWindow)
}

func TestNegativeCapacityRejected(t *testing.T) {
	problem := domain.Problem{
		Vehicles: []domain.Vehicle{vehicle("v1", -1, 0)},
	}

	_, err := normalize.Normalize(problem)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrNegativeCapacity)
}

func TestLegacyCapacityFallback(t *testing.T) {
	v := vehicle("v1", 0, 0)
	v.LegacyCapacity = 6
	problem := domain.Problem{Vehicles: []domain.Vehicle{v}}

	np, err := normalize.Normalize(problem)
	require.NoError(t, err)
	require.Equal(t, 6, np.SeatCapacities[0])
	require.Equal(t, 0, np.WheelchairCapacities[0])
}

func TestMissingPickupOrDeliveryRejected(t *testing.T) {
	problem := domain.Problem{
		Vehicles: []domain.Vehicle{vehicle("v1", 4, 0)},
		Rides:    []domain.RideRequest{{ID: "r1"}},
	}

	_, err := normalize.Normalize(problem)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
