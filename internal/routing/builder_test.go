package routing

import (
	"testing"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/normalize"
	"github.com/stretchr/testify/require"
)

func TestCompatible(t *testing.T) {
	vehicle := domain.Vehicle{SupportedCharacteristics: []string{"ramp"}, WheelchairCapacity: 0}
	ride := domain.RideRequest{Characteristics: []string{"ramp"}}
	require.True(t, compatible(ride, vehicle))

	ride.WheelchairRequired = true
	require.False(t, compatible(ride, vehicle), "vehicle has no wheelchair capacity")

	vehicle.WheelchairCapacity = 1
	require.True(t, compatible(ride, vehicle))

	ride.Characteristics = []string{"ramp", "oxygen"}
	require.False(t, compatible(ride, vehicle), "vehicle lacks the oxygen tag")
}

func TestServiceTimeSeconds(t *testing.T) {
	cfg := config.Default()
	problem := domain.Problem{
		Vehicles: []domain.Vehicle{{ID: "v1", TimeWindow: domain.TimeWindow{Start: 0, End: 28800}, DepotStart: domain.Depot{TimeWindow: domain.TimeWindow{Start: 0, End: 28800}}, DepotEnd: domain.Depot{TimeWindow: domain.TimeWindow{Start: 0, End: 28800}}}},
		Rides: []domain.RideRequest{
			{ID: "r1", Pickup: domain.Stop{TimeWindow: domain.TimeWindow{Start: 0, End: 100}}, Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 100, End: 200}}},
			{ID: "r2", WheelchairRequired: true, Pickup: domain.Stop{TimeWindow: domain.TimeWindow{Start: 0, End: 100}}, Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 100, End: 200}}},
			{ID: "r3", Characteristics: []string{"rampa_electrica"}, Pickup: domain.Stop{TimeWindow: domain.TimeWindow{Start: 0, End: 100}}, Delivery: domain.Stop{TimeWindow: domain.TimeWindow{Start: 100, End: 200}}},
		},
	}
	np, err := normalize.Normalize(problem)
	require.NoError(t, err)

	require.Equal(t, cfg.StopTimeCommon, serviceTimeSeconds(np, np.RidePairs[0].PickupIndex, cfg))
	require.Equal(t, cfg.StopTimeWheelchair, serviceTimeSeconds(np, np.RidePairs[1].PickupIndex, cfg))
	require.Equal(t, cfg.StopTimeElectricRamp, serviceTimeSeconds(np, np.RidePairs[2].PickupIndex, cfg))
	require.Equal(t, 0, serviceTimeSeconds(np, np.VehicleStarts[0], cfg))
}

func TestRideIDFromStopID(t *testing.T) {
	breakOwner := map[string]string{"__break__v1": "v1"}

	require.Equal(t, "r1", rideIDFromStopID("r1-pickup", breakOwner))
	require.Equal(t, "r1", rideIDFromStopID("r1-delivery", breakOwner))
	require.Equal(t, "", rideIDFromStopID("__break__v1", breakOwner))
	require.Equal(t, "", rideIDFromStopID("unrelated", breakOwner))
}
