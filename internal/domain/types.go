// Package domain holds the plain value types that describe a paratransit
// fleet-scheduling problem and its solution. Entities are immutable inputs
// except for the node_index fields populated by the normalizer and the
// decoded Solution values built by the routing package.
package domain

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TimeWindow is a [Start, End] interval in seconds-of-day. The zero value
// passes Valid but admits only second 0; callers should use
// DefaultTimeWindow when a window is absent from the input.
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DefaultTimeWindow spans an entire day.
func DefaultTimeWindow() TimeWindow {
	return TimeWindow{Start: 0, End: 86400}
}

// Valid reports whether the window respects Start <= End within [0, 86400].
func (w TimeWindow) Valid() bool {
	if w.Start < 0 || w.End > 86400 {
		return false
	}
	return w.Start <= w.End
}

// Depot is a vehicle's start or end location.
type Depot struct {
	ID          string     `json:"id"`
	Coordinates Coordinate `json:"coordinates"`
	Address     string     `json:"address"`
	TimeWindow  TimeWindow `json:"time_window"`
}

// Vehicle is a fleet member with capacities, a working shift and optional
// accessibility/rest attributes.
type Vehicle struct {
	ID                       string     `json:"id"`
	SeatCapacity             int        `json:"seat_capacity"`
	WheelchairCapacity       int        `json:"wheelchair_capacity"`
	TimeWindow               TimeWindow `json:"time_window"`
	DepotStart               Depot      `json:"depot_start"`
	DepotEnd                 Depot      `json:"depot_end"`
	SupportedCharacteristics []string   `json:"supported_characteristics"`
	WithRest                 bool       `json:"with_rest"`
	ActiveRideIDPreBoarded   string     `json:"active_ride_id_pre_boarded,omitempty"`

	// LegacyCapacity is a deprecated, revision-specific field documented as
	// an Open Question in the originating specification. It is consulted by
	// the normalizer only when SeatCapacity and WheelchairCapacity are both
	// zero. See DESIGN.md for the resolution.
	LegacyCapacity int `json:"capacity,omitempty"`
}

// HasPreBoarded reports whether this vehicle starts its shift with a
// passenger already on board.
func (v Vehicle) HasPreBoarded() bool {
	return v.ActiveRideIDPreBoarded != ""
}

// SupportsCharacteristic reports whether tag is in the vehicle's supported set.
func (v Vehicle) SupportsCharacteristic(tag string) bool {
	for _, t := range v.SupportedCharacteristics {
		if t == tag {
			return true
		}
	}
	return false
}

// Stop is one half of a ride request: a pickup or a delivery.
type Stop struct {
	Coordinates Coordinate `json:"coordinates"`
	TimeWindow  TimeWindow `json:"time_window"`
	Address     string     `json:"address"`
}

// RideRequest is a single passenger trip with a pickup and a delivery.
type RideRequest struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	HasCompanion      bool     `json:"has_companion"`
	WheelchairRequired bool    `json:"wheelchair_required"`
	Pickup            Stop     `json:"pickup"`
	Delivery          Stop     `json:"delivery"`
	Direction         string   `json:"direction,omitempty"`
	Characteristics   []string `json:"characteristics"`
}

// SeatDemand is the number of non-wheelchair occupants this ride adds to a
// vehicle: the rider themselves (if not a wheelchair user) plus a companion.
func (r RideRequest) SeatDemand() int {
	d := 0
	if !r.WheelchairRequired {
		d++
	}
	if r.HasCompanion {
		d++
	}
	return d
}

// WheelchairDemand is 1 if the ride requires a wheelchair space, else 0.
func (r RideRequest) WheelchairDemand() int {
	if r.WheelchairRequired {
		return 1
	}
	return 0
}

// TaskType enumerates the four kinds of routing nodes.
type TaskType string

const (
	TaskDepotStart TaskType = "DEPOT_START"
	TaskDepotEnd   TaskType = "DEPOT_END"
	TaskPickup     TaskType = "PICKUP"
	TaskDelivery   TaskType = "DELIVERY"
)

// PickupDeliveryTask is one routing node: a depot endpoint or a ride's
// pickup/delivery. RideIndex is -1 for depot nodes.
type PickupDeliveryTask struct {
	Type        TaskType
	Coordinates Coordinate
	TimeWindow  TimeWindow
	Address     string
	StopID      string
	NodeIndex   int
	RideIndex   int // index into Problem.Rides, -1 for depots
	VehicleIndex int // index into Problem.Vehicles, meaningful for depot nodes
}

// Problem is the raw domain input: a fleet and a set of ride requests.
type Problem struct {
	Vehicles []Vehicle     `json:"vehicles"`
	Rides    []RideRequest `json:"rides"`
}

// Visit is a decoded stop on a solved route.
type Visit struct {
	Position         int        `json:"position"`
	RideID           string     `json:"ride_id,omitempty"`
	UserID           string     `json:"user_id,omitempty"`
	Direction        string     `json:"direction,omitempty"`
	Address          string     `json:"address"`
	Coordinates      Coordinate `json:"coordinates"`
	Type             TaskType   `json:"type"`
	StopID           string     `json:"stop_id"`
	ArrivalTime      int        `json:"arrival_time"`
	TravelTimeToNext int        `json:"travel_time_to_next"`
	SolutionWindow   [2]int     `json:"solution_window"`
}

// GeoPoint is a (lon, lat) pair, the ordering used by polyline geometry.
type GeoPoint struct {
	Lon float64
	Lat float64
}

// Route is one vehicle's solved itinerary.
type Route struct {
	VehicleID       string      `json:"vehicle_id"`
	DistanceKm      float64     `json:"distance"`
	Duration        int         `json:"duration"`
	Visits          []Visit     `json:"visits"`
	TimeWindow      TimeWindow  `json:"time_window"`
	RestTimeWindow  *[2]int     `json:"rest_time_window,omitempty"`
	Geometry        []GeoPoint  `json:"geometry,omitempty"`
}

// DroppedRide optionally enriches a dropped ride id with why it was dropped.
type DroppedRide struct {
	RideID string `json:"ride_id"`
	Reason string `json:"reason,omitempty"`
}

// Solution is the final, served-or-dropped plan for every ride.
type Solution struct {
	Routes             []Route       `json:"routes"`
	DroppedRides       []string      `json:"dropped_rides"`
	DepotDroppedRides  []DroppedRide `json:"depot_dropped_rides,omitempty"`
	ErrorMessage       string        `json:"error_message,omitempty"`
}
