package graph

import (
	"testing"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource lets tests describe networks the catalogue would reject
type fakeSource struct {
	stops     []models.Stop
	buses     []models.Bus
	distances map[[2]string]float64
}

func (f *fakeSource) AllStopsSortedByName() []models.Stop { return f.stops }
func (f *fakeSource) AllBusLines() []models.Bus           { return f.buses }

func (f *fakeSource) DistanceBetween(from, to string) (float64, error) {
	if d, ok := f.distances[[2]string{from, to}]; ok {
		return d, nil
	}
	return 0, catalogue.ErrDistanceNotSet
}

func buildCatalogue(t *testing.T, stops []string, distances map[[2]string]int, buses ...models.Bus) *catalogue.Catalogue {
	t.Helper()

	c := catalogue.New()
	for _, stop := range stops {
		require.NoError(t, c.AddStop(stop, models.Coordinates{}))
	}
	for pair, d := range distances {
		require.NoError(t, c.SetDistance(pair[0], pair[1], d))
	}
	for _, bus := range buses {
		require.NoError(t, c.AddBus(bus.Name, bus.Stops, bus.IsRoundtrip))
	}
	return c
}

func edgesOf(n *Network) map[[2]string]RouteWeight {
	result := make(map[[2]string]RouteWeight)
	for id := 0; id < n.Graph.EdgeCount(); id++ {
		e := n.Graph.Edge(id)
		result[[2]string{n.StopName(e.From), n.StopName(e.To)}] = e.Weight
	}
	return result
}

func TestBuildGraphVertices(t *testing.T) {
	c := buildCatalogue(t, []string{"C", "A", "B"}, nil)

	network, err := NewBuilder(models.RoutingSettings{BusWaitTime: 1, BusVelocity: 1}).BuildGraph(c)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, network.VertexStop)
	assert.Equal(t, map[string]VertexID{"A": 0, "B": 1, "C": 2}, network.StopVertex)
	assert.Equal(t, 3, network.Graph.VertexCount())
	assert.Equal(t, 0, network.Graph.EdgeCount())

	v, ok := network.Vertex("B")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = network.Vertex("Ghost")
	assert.False(t, ok)
}

func TestBuildGraphRoundtripLine(t *testing.T) {
	c := buildCatalogue(t,
		[]string{"A", "B", "C"},
		map[[2]string]int{{"A", "B"}: 1000, {"B", "C"}: 1000},
		models.Bus{Name: "1", Stops: []string{"A", "B", "C"}, IsRoundtrip: true},
	)

	network, err := NewBuilder(models.RoutingSettings{BusWaitTime: 2, BusVelocity: 1000}).BuildGraph(c)
	require.NoError(t, err)

	assert.Equal(t, map[[2]string]RouteWeight{
		{"A", "B"}: {BusName: "1", StopCount: 1, Time: 3},
		{"A", "C"}: {BusName: "1", StopCount: 2, Time: 4},
		{"B", "C"}: {BusName: "1", StopCount: 1, Time: 3},
	}, edgesOf(network))
}

func TestBuildGraphBackAndForthLine(t *testing.T) {
	c := buildCatalogue(t,
		[]string{"X", "Y", "Z"},
		map[[2]string]int{{"X", "Y"}: 500, {"Y", "X"}: 1000, {"Y", "Z"}: 200},
		models.Bus{Name: "2", Stops: []string{"X", "Y", "Z"}, IsRoundtrip: false},
	)

	network, err := NewBuilder(models.RoutingSettings{BusWaitTime: 1, BusVelocity: 100}).BuildGraph(c)
	require.NoError(t, err)

	assert.Equal(t, 6, network.Graph.EdgeCount())
	assert.Equal(t, map[[2]string]RouteWeight{
		{"X", "Y"}: {BusName: "2", StopCount: 1, Time: 6},
		{"X", "Z"}: {BusName: "2", StopCount: 2, Time: 8},
		{"Y", "Z"}: {BusName: "2", StopCount: 1, Time: 3},
		// Z -> Y falls back to the Y -> Z distance
		{"Z", "Y"}: {BusName: "2", StopCount: 1, Time: 3},
		{"Z", "X"}: {BusName: "2", StopCount: 2, Time: 13},
		{"Y", "X"}: {BusName: "2", StopCount: 1, Time: 11},
	}, edgesOf(network))
}

func TestBuildGraphDegenerateLines(t *testing.T) {
	c := buildCatalogue(t,
		[]string{"A"},
		nil,
		models.Bus{Name: "empty", Stops: nil, IsRoundtrip: true},
		models.Bus{Name: "single", Stops: []string{"A"}, IsRoundtrip: false},
	)

	network, err := NewBuilder(models.RoutingSettings{BusWaitTime: 1, BusVelocity: 1}).BuildGraph(c)
	require.NoError(t, err)
	assert.Equal(t, 0, network.Graph.EdgeCount())
}

func TestBuildGraphEdgeWeightsAreNonNegative(t *testing.T) {
	c := buildCatalogue(t,
		[]string{"A", "B", "C", "D"},
		map[[2]string]int{{"A", "B"}: 700, {"B", "C"}: 1300, {"C", "D"}: 50, {"D", "A"}: 900},
		models.Bus{Name: "ring", Stops: []string{"A", "B", "C", "D", "A"}, IsRoundtrip: true},
		models.Bus{Name: "line", Stops: []string{"D", "C", "B"}, IsRoundtrip: false},
	)

	settings := models.RoutingSettings{BusWaitTime: 6, BusVelocity: 40 * 1000.0 / 60}
	network, err := NewBuilder(settings).BuildGraph(c)
	require.NoError(t, err)

	for id := 0; id < network.Graph.EdgeCount(); id++ {
		w := network.Graph.Edge(id).Weight
		assert.GreaterOrEqual(t, w.Time, float64(settings.BusWaitTime))
		assert.Positive(t, w.StopCount)
	}
}

func TestBuildGraphErrors(t *testing.T) {
	valid := models.RoutingSettings{BusWaitTime: 1, BusVelocity: 10}

	t.Run("Negative wait time", func(t *testing.T) {
		_, err := NewBuilder(models.RoutingSettings{BusWaitTime: -1, BusVelocity: 10}).BuildGraph(&fakeSource{})
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("Zero velocity", func(t *testing.T) {
		_, err := NewBuilder(models.RoutingSettings{BusWaitTime: 1}).BuildGraph(&fakeSource{})
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("Line references unknown stop", func(t *testing.T) {
		src := &fakeSource{
			stops: []models.Stop{{Name: "A"}},
			buses: []models.Bus{{Name: "1", Stops: []string{"A", "Ghost"}, IsRoundtrip: true}},
		}
		network, err := NewBuilder(valid).BuildGraph(src)
		assert.Error(t, err)
		assert.Nil(t, network)
	})

	t.Run("Missing distance", func(t *testing.T) {
		src := &fakeSource{
			stops: []models.Stop{{Name: "A"}, {Name: "B"}},
			buses: []models.Bus{{Name: "1", Stops: []string{"A", "B"}, IsRoundtrip: true}},
		}
		network, err := NewBuilder(valid).BuildGraph(src)
		assert.ErrorIs(t, err, catalogue.ErrDistanceNotSet)
		assert.Nil(t, network)
	})

	t.Run("Negative distance", func(t *testing.T) {
		src := &fakeSource{
			stops:     []models.Stop{{Name: "A"}, {Name: "B"}},
			buses:     []models.Bus{{Name: "1", Stops: []string{"A", "B"}, IsRoundtrip: true}},
			distances: map[[2]string]float64{{"A", "B"}: -5},
		}
		_, err := NewBuilder(valid).BuildGraph(src)
		assert.Error(t, err)
	})
}

func TestFingerprint(t *testing.T) {
	build := func(distance int) *Network {
		c := buildCatalogue(t,
			[]string{"A", "B"},
			map[[2]string]int{{"A", "B"}: distance},
			models.Bus{Name: "1", Stops: []string{"A", "B"}, IsRoundtrip: false},
		)
		network, err := NewBuilder(models.RoutingSettings{BusWaitTime: 1, BusVelocity: 10}).BuildGraph(c)
		require.NoError(t, err)
		return network
	}

	assert.Equal(t, build(100).Fingerprint(), build(100).Fingerprint())
	assert.NotEqual(t, build(100).Fingerprint(), build(200).Fingerprint())
}
