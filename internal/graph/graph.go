package graph

import "fmt"

// VertexID identifies a vertex of the graph, dense in [0, VertexCount)
type VertexID = int

// EdgeID identifies an edge of the graph, dense in [0, EdgeCount)
type EdgeID = int

// Weight is the constraint for edge weights: an ordered type that can be
// combined along a path.
type Weight[W any] interface {
	Less(other W) bool
	Combine(other W) W
}

// Edge represents a directed, weighted connection between two vertices
type Edge[W any] struct {
	From   VertexID
	To     VertexID
	Weight W
}

// DirectedWeightedGraph holds edges in insertion order together with the
// outgoing edge ids of every vertex. It is filled once by a builder and
// only read afterwards.
type DirectedWeightedGraph[W any] struct {
	edges     []Edge[W]
	incidence [][]EdgeID // fromVertex -> []EdgeID
}

// NewDirectedWeightedGraph creates a graph with a fixed number of vertices
func NewDirectedWeightedGraph[W any](vertexCount int) *DirectedWeightedGraph[W] {
	return &DirectedWeightedGraph[W]{
		incidence: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id
func (g *DirectedWeightedGraph[W]) AddEdge(edge Edge[W]) EdgeID {
	if edge.From < 0 || edge.From >= len(g.incidence) || edge.To < 0 || edge.To >= len(g.incidence) {
		panic(fmt.Sprintf("graph: edge %d -> %d out of range [0, %d)", edge.From, edge.To, len(g.incidence)))
	}

	id := len(g.edges)
	g.edges = append(g.edges, edge)
	g.incidence[edge.From] = append(g.incidence[edge.From], id)
	return id
}

// VertexCount returns the number of vertices
func (g *DirectedWeightedGraph[W]) VertexCount() int {
	return len(g.incidence)
}

// EdgeCount returns the number of edges
func (g *DirectedWeightedGraph[W]) EdgeCount() int {
	return len(g.edges)
}

// Edge returns an edge by id
func (g *DirectedWeightedGraph[W]) Edge(id EdgeID) Edge[W] {
	return g.edges[id]
}

// IncidentEdges returns the ids of the edges leaving a vertex.
// The returned slice must not be modified.
func (g *DirectedWeightedGraph[W]) IncidentEdges(v VertexID) []EdgeID {
	return g.incidence[v]
}
