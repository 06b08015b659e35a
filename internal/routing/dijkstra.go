package routing

import (
	"container/heap"

	"github.com/passbi/transport_catalogue/internal/graph"
)

// Path is the cheapest way between two vertices
type Path[W any] struct {
	Weight W
	Edges  []graph.EdgeID
}

// PathFinder answers shortest path queries over an immutable graph.
// Every query runs its own search, so a PathFinder is safe for
// concurrent use.
type PathFinder[W graph.Weight[W]] struct {
	graph *graph.DirectedWeightedGraph[W]
	zero  W
}

// NewPathFinder creates a path finder. zero is the weight of the empty path.
func NewPathFinder[W graph.Weight[W]](g *graph.DirectedWeightedGraph[W], zero W) *PathFinder[W] {
	return &PathFinder[W]{graph: g, zero: zero}
}

// FindPath runs Dijkstra from one vertex until the other one is settled.
// It returns false when the target cannot be reached.
func (p *PathFinder[W]) FindPath(from, to graph.VertexID) (*Path[W], bool) {
	n := p.graph.VertexCount()
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, false
	}
	if from == to {
		return &Path[W]{Weight: p.zero, Edges: []graph.EdgeID{}}, true
	}

	dist := make([]W, n)
	reached := make([]bool, n)
	settled := make([]bool, n)
	prevEdge := make([]graph.EdgeID, n)

	dist[from] = p.zero
	reached[from] = true
	prevEdge[from] = -1

	openSet := &priorityQueue[W]{}
	heap.Push(openSet, &searchState[W]{vertex: from, weight: p.zero})

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchState[W])
		if settled[current.vertex] {
			continue
		}
		settled[current.vertex] = true

		if current.vertex == to {
			return &Path[W]{Weight: dist[to], Edges: p.reconstruct(prevEdge, to)}, true
		}

		for _, id := range p.graph.IncidentEdges(current.vertex) {
			edge := p.graph.Edge(id)
			if settled[edge.To] {
				continue
			}

			tentative := dist[current.vertex].Combine(edge.Weight)
			if reached[edge.To] && !tentative.Less(dist[edge.To]) {
				continue
			}

			dist[edge.To] = tentative
			reached[edge.To] = true
			prevEdge[edge.To] = id
			heap.Push(openSet, &searchState[W]{vertex: edge.To, weight: tentative})
		}
	}

	return nil, false
}

// reconstruct walks predecessor edges back from the target
func (p *PathFinder[W]) reconstruct(prevEdge []graph.EdgeID, to graph.VertexID) []graph.EdgeID {
	var edges []graph.EdgeID
	for v := to; prevEdge[v] != -1; {
		id := prevEdge[v]
		edges = append(edges, id)
		v = p.graph.Edge(id).From
	}

	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}

// searchState is a frontier entry of the search
type searchState[W any] struct {
	vertex graph.VertexID
	weight W
	index  int // for heap
}

// priorityQueue implements heap.Interface ordered by weight, then vertex id
type priorityQueue[W graph.Weight[W]] []*searchState[W]

func (pq priorityQueue[W]) Len() int { return len(pq) }

func (pq priorityQueue[W]) Less(i, j int) bool {
	if pq[i].weight.Less(pq[j].weight) {
		return true
	}
	if pq[j].weight.Less(pq[i].weight) {
		return false
	}
	return pq[i].vertex < pq[j].vertex
}

func (pq priorityQueue[W]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[W]) Push(x interface{}) {
	n := len(*pq)
	state := x.(*searchState[W])
	state.index = n
	*pq = append(*pq, state)
}

func (pq *priorityQueue[W]) Pop() interface{} {
	old := *pq
	n := len(old)
	state := old[n-1]
	old[n-1] = nil
	state.index = -1
	*pq = old[0 : n-1]
	return state
}
