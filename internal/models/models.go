package models

// Coordinates is a geographic point in degrees
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Stop represents a named stop of the transit network
type Stop struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Bus represents a bus line: an ordered sequence of stop names.
// A line that is not a roundtrip is driven forward and then back
// over the same stops.
type Bus struct {
	Name        string   `json:"name"`
	Stops       []string `json:"stops"`
	IsRoundtrip bool     `json:"is_roundtrip"`
}

// RoutingSettings configures edge weights of the routing graph
type RoutingSettings struct {
	BusWaitTime int     // minutes spent waiting every time a passenger boards
	BusVelocity float64 // meters per minute
}

// LegType represents the kind of segment in a reconstructed trip
type LegType string

const (
	LegWait LegType = "Wait"
	LegBus  LegType = "Bus"
)

// Leg represents one segment of a trip.
// Wait legs carry StopName, Bus legs carry Bus and SpanCount.
type Leg struct {
	Type      LegType `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

// RouteInfo represents a complete trip from origin to destination
type RouteInfo struct {
	TotalTime float64 `json:"total_time"`
	Items     []Leg   `json:"items"`
}

// BusStat holds the statistics reported for a bus line
type BusStat struct {
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}
