package graph

// RouteWeight is the weight of a ride edge: elapsed minutes plus the
// line and number of hops the edge covers.
type RouteWeight struct {
	BusName   string
	StopCount int
	Time      float64
}

// Less orders weights by time only
func (w RouteWeight) Less(other RouteWeight) bool {
	return w.Time < other.Time
}

// Combine sums times. Provenance belongs to a single edge and is not
// carried over.
func (w RouteWeight) Combine(other RouteWeight) RouteWeight {
	return RouteWeight{Time: w.Time + other.Time}
}
