package graph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/passbi/transport_catalogue/internal/models"
)

var ErrInvalidSettings = errors.New("invalid routing settings")

// NetworkSource is the read-only view of a transit network the builder consumes
type NetworkSource interface {
	AllStopsSortedByName() []models.Stop
	AllBusLines() []models.Bus
	DistanceBetween(from, to string) (float64, error)
}

// Network is the finished routing graph plus the stop <-> vertex index
type Network struct {
	Graph      *DirectedWeightedGraph[RouteWeight]
	StopVertex map[string]VertexID
	VertexStop []string
}

// Vertex returns the vertex of a stop
func (n *Network) Vertex(stop string) (VertexID, bool) {
	v, ok := n.StopVertex[stop]
	return v, ok
}

// StopName returns the stop of a vertex
func (n *Network) StopName(v VertexID) string {
	return n.VertexStop[v]
}

// Fingerprint hashes stop names and edges; equal networks built with
// equal settings share a fingerprint.
func (n *Network) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte

	for _, name := range n.VertexStop {
		h.WriteString(name)
		h.Write([]byte{0})
	}
	for id := 0; id < n.Graph.EdgeCount(); id++ {
		edge := n.Graph.Edge(id)
		binary.LittleEndian.PutUint64(buf[:], uint64(edge.From))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(edge.To))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(edge.Weight.StopCount))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(edge.Weight.Time))
		h.Write(buf[:])
		h.WriteString(edge.Weight.BusName)
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Builder constructs the routing graph from a transit network
type Builder struct {
	settings models.RoutingSettings
}

// NewBuilder creates a new graph builder
func NewBuilder(settings models.RoutingSettings) *Builder {
	return &Builder{settings: settings}
}

// BuildGraph constructs the complete routing graph.
// Every stop becomes a vertex; every (boarding, alighting) pair on a line
// becomes an edge weighted by wait time plus travel time.
func (b *Builder) BuildGraph(src NetworkSource) (*Network, error) {
	if b.settings.BusWaitTime < 0 {
		return nil, fmt.Errorf("%w: bus wait time %d is negative", ErrInvalidSettings, b.settings.BusWaitTime)
	}
	if !(b.settings.BusVelocity > 0) || math.IsInf(b.settings.BusVelocity, 0) {
		return nil, fmt.Errorf("%w: bus velocity %v must be positive", ErrInvalidSettings, b.settings.BusVelocity)
	}

	network := b.buildVertices(src.AllStopsSortedByName())
	log.Printf("Created %d vertices", len(network.VertexStop))

	for _, bus := range src.AllBusLines() {
		if err := b.addBusEdges(network, src, bus); err != nil {
			return nil, fmt.Errorf("failed to build edges for bus %q: %w", bus.Name, err)
		}
	}
	log.Printf("Created %d edges", network.Graph.EdgeCount())

	return network, nil
}

// buildVertices assigns ids 0..n-1 to stops in name order
func (b *Builder) buildVertices(stops []models.Stop) *Network {
	network := &Network{
		Graph:      NewDirectedWeightedGraph[RouteWeight](len(stops)),
		StopVertex: make(map[string]VertexID, len(stops)),
		VertexStop: make([]string, len(stops)),
	}
	for i, stop := range stops {
		network.StopVertex[stop.Name] = i
		network.VertexStop[i] = stop.Name
	}
	return network
}

// addBusEdges creates the edges of one line, plus the return trip of a
// line that is not a roundtrip
func (b *Builder) addBusEdges(network *Network, src NetworkSource, bus models.Bus) error {
	for _, stop := range bus.Stops {
		if _, ok := network.StopVertex[stop]; !ok {
			return fmt.Errorf("unknown stop %q", stop)
		}
	}

	if err := b.addRideEdges(network, src, bus.Name, bus.Stops); err != nil {
		return err
	}
	if bus.IsRoundtrip {
		return nil
	}

	reversed := make([]string, len(bus.Stops))
	for i, stop := range bus.Stops {
		reversed[len(bus.Stops)-1-i] = stop
	}
	return b.addRideEdges(network, src, bus.Name, reversed)
}

// addRideEdges emits stops[i] -> stops[j] for every i < j. The travel time
// grows by one segment per step of j, so each segment is added exactly
// once per boarding stop and in route order.
func (b *Builder) addRideEdges(network *Network, src NetworkSource, busName string, stops []string) error {
	if len(stops) < 2 {
		return nil
	}

	segments := make([]float64, len(stops)-1)
	for k := range segments {
		distance, err := src.DistanceBetween(stops[k], stops[k+1])
		if err != nil {
			return err
		}
		if !(distance >= 0) {
			return fmt.Errorf("invalid distance %v from %q to %q", distance, stops[k], stops[k+1])
		}
		segments[k] = distance / b.settings.BusVelocity
	}

	for i := 0; i < len(stops)-1; i++ {
		total := float64(b.settings.BusWaitTime)
		for j := i + 1; j < len(stops); j++ {
			total += segments[j-1]
			network.Graph.AddEdge(Edge[RouteWeight]{
				From: network.StopVertex[stops[i]],
				To:   network.StopVertex[stops[j]],
				Weight: RouteWeight{
					BusName:   busName,
					StopCount: j - i,
					Time:      total,
				},
			})
		}
	}
	return nil
}
