package routing

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/passbi/transport_catalogue/internal/graph"
	"github.com/passbi/transport_catalogue/internal/models"
)

var ErrUnknownStop = errors.New("stop not found")

// GraphStats describes a built routing graph
type GraphStats struct {
	Vertices      int
	Edges         int
	BuildDuration time.Duration
}

// TransitRouter answers minimum-time trip queries between stops.
// It is immutable once constructed and safe for concurrent use.
type TransitRouter struct {
	settings models.RoutingSettings
	network  *graph.Network
	finder   *PathFinder[graph.RouteWeight]
	stats    GraphStats

	fingerprint string
}

// NewTransitRouter builds the routing graph from a network source.
// The router keeps its own copy of everything it needs; later changes to
// the source are not observed.
func NewTransitRouter(settings models.RoutingSettings, src graph.NetworkSource) (*TransitRouter, error) {
	startTime := time.Now()

	network, err := graph.NewBuilder(settings).BuildGraph(src)
	if err != nil {
		return nil, fmt.Errorf("failed to build routing graph: %w", err)
	}

	r := &TransitRouter{
		settings: settings,
		network:  network,
		finder:   NewPathFinder(network.Graph, graph.RouteWeight{}),
		stats: GraphStats{
			Vertices:      network.Graph.VertexCount(),
			Edges:         network.Graph.EdgeCount(),
			BuildDuration: time.Since(startTime),
		},
		fingerprint: fmt.Sprintf("%016x-%d", network.Fingerprint(), settings.BusWaitTime),
	}

	log.Printf("Routing graph built in %v (%d vertices, %d edges)",
		r.stats.BuildDuration, r.stats.Vertices, r.stats.Edges)
	return r, nil
}

// Settings returns the settings the graph was built with
func (r *TransitRouter) Settings() models.RoutingSettings {
	return r.settings
}

// Stats returns graph statistics
func (r *TransitRouter) Stats() GraphStats {
	return r.stats
}

// Fingerprint identifies the routing graph and the wait time used to split
// answers into legs. It is computed once at build time.
func (r *TransitRouter) Fingerprint() string {
	return r.fingerprint
}

// BuildRoute finds the fastest trip between two stops.
// It returns ErrUnknownStop when a stop is not part of the network and
// a nil route without error when the destination cannot be reached.
func (r *TransitRouter) BuildRoute(from, to string) (*models.RouteInfo, error) {
	fromVertex, ok := r.network.Vertex(from)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStop, from)
	}
	toVertex, ok := r.network.Vertex(to)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStop, to)
	}

	if from == to {
		return &models.RouteInfo{TotalTime: 0, Items: []models.Leg{}}, nil
	}

	path, found := r.finder.FindPath(fromVertex, toVertex)
	if !found {
		return nil, nil
	}

	return r.buildLegs(path.Edges), nil
}

// buildLegs turns graph edges into alternating Wait and Bus legs
func (r *TransitRouter) buildLegs(edges []graph.EdgeID) *models.RouteInfo {
	wait := float64(r.settings.BusWaitTime)
	route := &models.RouteInfo{
		Items: make([]models.Leg, 0, len(edges)*2),
	}

	for _, id := range edges {
		edge := r.network.Graph.Edge(id)
		route.TotalTime += edge.Weight.Time

		route.Items = append(route.Items,
			models.Leg{
				Type:     models.LegWait,
				StopName: r.network.StopName(edge.From),
				Time:     wait,
			},
			models.Leg{
				Type:      models.LegBus,
				Bus:       edge.Weight.BusName,
				SpanCount: edge.Weight.StopCount,
				Time:      edge.Weight.Time - wait,
			},
		)
	}

	return route
}
