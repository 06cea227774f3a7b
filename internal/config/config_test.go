package config_test

import (
	"testing"
	"time"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaultConstants(t *testing.T) {
	cfg := config.Default()

	require.Equal(t, 1_000_000_000, cfg.DropPenalty)
	require.Equal(t, 5000, cfg.MaxRideTime)
	require.Equal(t, 1800, cfg.RestTimeSeconds)
	require.Equal(t, 3600, cfg.RestMinOffset)
	require.Equal(t, 3600, cfg.RestMinTail)
	require.Equal(t, 120, cfg.StopTimeCommon)
	require.Equal(t, 300, cfg.StopTimeWheelchair)
	require.Equal(t, 300, cfg.StopTimeElectricRamp)
	require.Equal(t, 100, cfg.SpanCostCoefficient)
	require.Equal(t, 1000, cfg.SoftDeliveryPenaltyPerSecond)
	require.Equal(t, 5*time.Second, cfg.SolveTimeLimit)
	require.Equal(t, 100, cfg.DistanceScale)
}

func TestDefaultOSRM(t *testing.T) {
	cfg := config.Default()

	require.NotEmpty(t, cfg.OSRM.BaseURL)
	require.NotEmpty(t, cfg.OSRM.MatrixEndpoint)
	require.NotEmpty(t, cfg.OSRM.RouteEndpoint)
	require.Greater(t, cfg.OSRM.BatchSize, 0)
}

func TestDebugFlagsDefaultOff(t *testing.T) {
	cfg := config.Default()

	require.False(t, cfg.Debug.SkipDropPenalties)
	require.False(t, cfg.Debug.SkipCompatibility)
	require.False(t, cfg.Debug.SkipRest)
	require.False(t, cfg.Debug.AllowDepotDrop)
}
