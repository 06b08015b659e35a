package input

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "base_requests": [
    {"type": "Bus", "name": "297", "stops": ["A", "B", "C"], "is_roundtrip": false},
    {"type": "Stop", "name": "A", "latitude": 55.611087, "longitude": 37.20829, "road_distances": {"B": 3000}},
    {"type": "Stop", "name": "B", "latitude": 55.595884, "longitude": 37.209755, "road_distances": {"C": 9000, "A": 100}},
    {"type": "Stop", "name": "C", "latitude": 55.632761, "longitude": 37.333324, "road_distances": {}},
    {"type": "Stop", "name": "D", "latitude": 55.574371, "longitude": 37.6517}
  ],
  "routing_settings": {"bus_wait_time": 2, "bus_velocity": 60},
  "render_settings": {"width": 200},
  "stat_requests": [
    {"id": 1, "type": "Stop", "name": "B"},
    {"id": 2, "type": "Stop", "name": "Ghost"},
    {"id": 3, "type": "Bus", "name": "297"},
    {"id": 4, "type": "Bus", "name": "999"},
    {"id": 5, "type": "Route", "from": "A", "to": "C"},
    {"id": 6, "type": "Route", "from": "B", "to": "B"},
    {"id": 7, "type": "Route", "from": "A", "to": "D"},
    {"id": 8, "type": "Route", "from": "A", "to": "Ghost"},
    {"id": 9, "type": "Map"}
  ]
}`

func loadSample(t *testing.T) (*Document, *catalogue.Catalogue, *routing.TransitRouter) {
	t.Helper()

	doc, err := Parse(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	c := catalogue.New()
	require.NoError(t, FillCatalogue(doc, c))

	require.NotNil(t, doc.RoutingSettings)
	router, err := routing.NewTransitRouter(doc.RoutingSettings.ToModel(), c)
	require.NoError(t, err)

	return doc, c, router
}

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Len(t, doc.BaseRequests, 5)
	assert.Len(t, doc.StatRequests, 9)
	assert.Equal(t, &RoutingSettings{BusWaitTime: 2, BusVelocity: 60}, doc.RoutingSettings)
	assert.Equal(t, []string{"A", "B", "C"}, doc.BaseRequests[0].Stops)
	assert.Equal(t, map[string]int{"C": 9000, "A": 100}, doc.BaseRequests[2].RoadDistances)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Invalid JSON", `{"base_requests": [`},
		{"Unknown base request type", `{"base_requests": [{"type": "Train", "name": "T"}]}`},
		{"Missing name", `{"base_requests": [{"type": "Stop", "latitude": 1, "longitude": 1}]}`},
		{"Latitude out of range", `{"base_requests": [{"type": "Stop", "name": "A", "latitude": 91, "longitude": 1}]}`},
		{"Negative wait time", `{"routing_settings": {"bus_wait_time": -1, "bus_velocity": 40}}`},
		{"Zero velocity", `{"routing_settings": {"bus_wait_time": 1, "bus_velocity": 0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestRoutingSettingsToModel(t *testing.T) {
	settings := RoutingSettings{BusWaitTime: 6, BusVelocity: 60}.ToModel()
	assert.Equal(t, 6, settings.BusWaitTime)
	assert.Equal(t, 1000.0, settings.BusVelocity)
}

func TestFillCatalogue(t *testing.T) {
	_, c, _ := loadSample(t)

	assert.Len(t, c.AllStopsSortedByName(), 4)
	assert.Len(t, c.AllBusLines(), 1)

	d, err := c.DistanceBetween("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 100.0, d)

	t.Run("Bus with unknown stop", func(t *testing.T) {
		doc := &Document{BaseRequests: []BaseRequest{
			{Type: TypeBus, Name: "1", Stops: []string{"Ghost"}},
		}}
		err := FillCatalogue(doc, catalogue.New())
		assert.ErrorIs(t, err, catalogue.ErrStopNotFound)
	})

	t.Run("Distance to unknown stop", func(t *testing.T) {
		doc := &Document{BaseRequests: []BaseRequest{
			{Type: TypeStop, Name: "A", RoadDistances: map[string]int{"Ghost": 10}},
		}}
		err := FillCatalogue(doc, catalogue.New())
		assert.ErrorIs(t, err, catalogue.ErrStopNotFound)
	})
}

func TestHandlerApply(t *testing.T) {
	doc, c, router := loadSample(t)

	responses := NewHandler(c, router).Apply(doc.StatRequests)
	require.Len(t, responses, len(doc.StatRequests))

	expected := []string{
		`{"request_id": 1, "buses": ["297"]}`,
		`{"request_id": 2, "error_message": "not found"}`,
		"",
		`{"request_id": 4, "error_message": "not found"}`,
		`{"request_id": 5, "total_time": 14, "items": [
			{"type": "Wait", "stop_name": "A", "time": 2},
			{"type": "Bus", "bus": "297", "span_count": 2, "time": 12}
		]}`,
		`{"request_id": 6, "total_time": 0, "items": []}`,
		`{"request_id": 7, "error_message": "not found"}`,
		`{"request_id": 8, "error_message": "not found"}`,
		`{"request_id": 9, "error_message": "not supported"}`,
	}

	for i, want := range expected {
		if want == "" {
			continue
		}
		got, err := json.Marshal(responses[i])
		require.NoError(t, err)
		assert.JSONEq(t, want, string(got), "request %d", i+1)
	}

	t.Run("Bus statistics", func(t *testing.T) {
		bus, ok := responses[2].(BusResponse)
		require.True(t, ok)
		assert.Equal(t, 3, bus.RequestID)
		assert.Equal(t, 5, bus.StopCount)
		assert.Equal(t, 3, bus.UniqueStopCount)
		// 3000 + 100 between A and B, 9000 both ways between B and C
		assert.Equal(t, 21100, bus.RouteLength)
		assert.Greater(t, bus.Curvature, 0.0)
	})
}

func TestHandlerWithoutRouter(t *testing.T) {
	_, c, _ := loadSample(t)

	resp := NewHandler(c, nil).Answer(StatRequest{ID: 1, Type: TypeRoute, From: "A", To: "C"})
	assert.Equal(t, ErrorResponse{RequestID: 1, ErrorMessage: "not found"}, resp)
}
