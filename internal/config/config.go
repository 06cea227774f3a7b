// Package config loads the single Config value every component is handed
// by reference, per the "gather scattered constants into one place"
// redesign note in spec.md §9.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// OSRM holds the outbound road-network service contract (spec.md §6).
type OSRM struct {
	BaseURL        string `mapstructure:"OSRM_BASE_URL"`
	MatrixEndpoint string `mapstructure:"OSRM_MATRIX_ENDPOINT"`
	MatrixParams   string `mapstructure:"OSRM_MATRIX_PARAMS"`
	RouteEndpoint  string `mapstructure:"OSRM_ROUTE_ENDPOINT"`
	RouteParams    string `mapstructure:"OSRM_ROUTE_PARAMS"`
	BatchSize      int    `mapstructure:"OSRM_BATCH_SIZE"`
}

// Debug holds the feature-skip flags used to bisect infeasibility by
// disabling one part of the model build at a time (spec.md §6).
type Debug struct {
	SkipDropPenalties       bool `mapstructure:"DEBUG_SKIP_DROP_PENALTIES"`
	SkipDistanceDimension   bool `mapstructure:"DEBUG_SKIP_DISTANCE_DIM"`
	SkipTimeDimension       bool `mapstructure:"DEBUG_SKIP_TIME_DIM"`
	SkipSeatCapacity        bool `mapstructure:"DEBUG_SKIP_SEAT_CAP"`
	SkipWheelchairCapacity  bool `mapstructure:"DEBUG_SKIP_WHEELCHAIR_CAP"`
	SkipPickupDelivery      bool `mapstructure:"DEBUG_SKIP_PICKUP_DELIVERY"`
	SkipMaxRideTime         bool `mapstructure:"DEBUG_SKIP_MAX_RIDE_TIME"`
	SkipShiftContainment    bool `mapstructure:"DEBUG_SKIP_SHIFT_CONTAINMENT"`
	SkipCompatibility       bool `mapstructure:"DEBUG_SKIP_COMPATIBILITY"`
	SkipRest                bool `mapstructure:"DEBUG_SKIP_REST"`
	AllowDepotDrop          bool `mapstructure:"DEBUG_ALLOW_DEPOT_DROP"`
}

// Config is the single process-wide configuration value, constructed once
// at program entry and passed by reference to every component.
type Config struct {
	OSRM  OSRM
	Debug Debug

	DropPenalty                  int
	DepotDropPenalty              int
	MaxRideTime                   int
	RestTimeSeconds               int
	RestMinOffset                 int
	RestMinTail                   int
	StopTimeCommon                int
	StopTimeWheelchair             int
	StopTimeElectricRamp           int
	SpanCostCoefficient            int
	SoftDeliveryPenaltyPerSecond   int
	SolveTimeLimit                 time.Duration
	DistanceScale                  int
}

// Load reads configuration from environment variables (and an optional
// .env file in the working directory), applying the defaults from
// spec.md §6, grounded on shivamshaw23-Hintro/config/config.Load.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("OSRM_BASE_URL", "http://localhost:5000")
	viper.SetDefault("OSRM_MATRIX_ENDPOINT", "table/v1/driving")
	viper.SetDefault("OSRM_MATRIX_PARAMS", "annotations=distance,duration")
	viper.SetDefault("OSRM_ROUTE_ENDPOINT", "route/v1/driving")
	viper.SetDefault("OSRM_ROUTE_PARAMS", "overview=full&geometries=polyline")
	viper.SetDefault("OSRM_BATCH_SIZE", 100)

	viper.SetDefault("DEBUG_SKIP_DROP_PENALTIES", false)
	viper.SetDefault("DEBUG_SKIP_DISTANCE_DIM", false)
	viper.SetDefault("DEBUG_SKIP_TIME_DIM", false)
	viper.SetDefault("DEBUG_SKIP_SEAT_CAP", false)
	viper.SetDefault("DEBUG_SKIP_WHEELCHAIR_CAP", false)
	viper.SetDefault("DEBUG_SKIP_PICKUP_DELIVERY", false)
	viper.SetDefault("DEBUG_SKIP_MAX_RIDE_TIME", false)
	viper.SetDefault("DEBUG_SKIP_SHIFT_CONTAINMENT", false)
	viper.SetDefault("DEBUG_SKIP_COMPATIBILITY", false)
	viper.SetDefault("DEBUG_SKIP_REST", false)
	viper.SetDefault("DEBUG_ALLOW_DEPOT_DROP", false)

	// Try to read a .env file; absence (e.g. in a container) is not an error,
	// injected env vars take over.
	_ = viper.ReadInConfig()

	cfg := &Config{
		OSRM: OSRM{
			BaseURL:        viper.GetString("OSRM_BASE_URL"),
			MatrixEndpoint: viper.GetString("OSRM_MATRIX_ENDPOINT"),
			MatrixParams:   viper.GetString("OSRM_MATRIX_PARAMS"),
			RouteEndpoint:  viper.GetString("OSRM_ROUTE_ENDPOINT"),
			RouteParams:    viper.GetString("OSRM_ROUTE_PARAMS"),
			BatchSize:      viper.GetInt("OSRM_BATCH_SIZE"),
		},
		Debug: Debug{
			SkipDropPenalties:      viper.GetBool("DEBUG_SKIP_DROP_PENALTIES"),
			SkipDistanceDimension:  viper.GetBool("DEBUG_SKIP_DISTANCE_DIM"),
			SkipTimeDimension:      viper.GetBool("DEBUG_SKIP_TIME_DIM"),
			SkipSeatCapacity:       viper.GetBool("DEBUG_SKIP_SEAT_CAP"),
			SkipWheelchairCapacity: viper.GetBool("DEBUG_SKIP_WHEELCHAIR_CAP"),
			SkipPickupDelivery:     viper.GetBool("DEBUG_SKIP_PICKUP_DELIVERY"),
			SkipMaxRideTime:        viper.GetBool("DEBUG_SKIP_MAX_RIDE_TIME"),
			SkipShiftContainment:   viper.GetBool("DEBUG_SKIP_SHIFT_CONTAINMENT"),
			SkipCompatibility:      viper.GetBool("DEBUG_SKIP_COMPATIBILITY"),
			SkipRest:               viper.GetBool("DEBUG_SKIP_REST"),
			AllowDepotDrop:         viper.GetBool("DEBUG_ALLOW_DEPOT_DROP"),
		},

		DropPenalty:                1_000_000_000,
		DepotDropPenalty:           1_000_000_000 / 4,
		MaxRideTime:                5000,
		RestTimeSeconds:            1800,
		RestMinOffset:              3600,
		RestMinTail:                3600,
		StopTimeCommon:             120,
		StopTimeWheelchair:         300,
		StopTimeElectricRamp:       300,
		SpanCostCoefficient:        100,
		SoftDeliveryPenaltyPerSecond: 1000,
		SolveTimeLimit:             5 * time.Second,
		DistanceScale:              100,
	}

	return cfg, nil
}

// Default returns the Config built by Load, discarding Load's error. The
// OSRM and Debug fields still honour environment variables and a .env
// file. Useful for tests and for callers embedding the pipeline as a
// library.
func Default() *Config {
	cfg, _ := Load()
	return cfg
}
