package input

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/models"
)

// Request types
const (
	TypeStop  = "Stop"
	TypeBus   = "Bus"
	TypeRoute = "Route"
	TypeMap   = "Map"
)

// Document is a complete batch input: the network description, routing
// settings and the queries to answer
type Document struct {
	BaseRequests    []BaseRequest    `json:"base_requests"`
	StatRequests    []StatRequest    `json:"stat_requests"`
	RoutingSettings *RoutingSettings `json:"routing_settings"`
	RenderSettings  json.RawMessage  `json:"render_settings,omitempty"`
}

// BaseRequest describes either a stop or a bus line
type BaseRequest struct {
	Type          string         `json:"type" validate:"oneof=Stop Bus"`
	Name          string         `json:"name" validate:"required"`
	Latitude      float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64        `json:"longitude" validate:"gte=-180,lte=180"`
	RoadDistances map[string]int `json:"road_distances,omitempty"`
	Stops         []string       `json:"stops,omitempty"`
	IsRoundtrip   bool           `json:"is_roundtrip"`
}

// StatRequest is a single query
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// RoutingSettings as they appear in the input: wait in minutes, velocity in km/h
type RoutingSettings struct {
	BusWaitTime int     `json:"bus_wait_time" validate:"gte=0,lte=1000"`
	BusVelocity float64 `json:"bus_velocity" validate:"gt=0,lte=1000"`
}

// ToModel converts the velocity to meters per minute
func (s RoutingSettings) ToModel() models.RoutingSettings {
	return models.RoutingSettings{
		BusWaitTime: s.BusWaitTime,
		BusVelocity: s.BusVelocity * 1000 / 60,
	}
}

var validate = validator.New()

// Parse decodes and validates a document
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	for i, req := range doc.BaseRequests {
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("invalid base request %d (%q): %w", i, req.Name, err)
		}
	}
	if doc.RoutingSettings != nil {
		if err := ValidateSettings(*doc.RoutingSettings); err != nil {
			return nil, err
		}
	}

	return &doc, nil
}

// ValidateSettings checks routing settings bounds
func ValidateSettings(s RoutingSettings) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid routing settings: %w", err)
	}
	return nil
}

// FillCatalogue adds every stop, then every road distance, then every bus
func FillCatalogue(doc *Document, c *catalogue.Catalogue) error {
	stops, buses := 0, 0

	for _, req := range doc.BaseRequests {
		if req.Type != TypeStop {
			continue
		}
		coords := models.Coordinates{Lat: req.Latitude, Lon: req.Longitude}
		if err := c.AddStop(req.Name, coords); err != nil {
			return fmt.Errorf("failed to add stop: %w", err)
		}
		stops++
	}

	for _, req := range doc.BaseRequests {
		if req.Type != TypeStop {
			continue
		}
		for other, distance := range req.RoadDistances {
			if err := c.SetDistance(req.Name, other, distance); err != nil {
				return fmt.Errorf("failed to set distance: %w", err)
			}
		}
	}

	for _, req := range doc.BaseRequests {
		if req.Type != TypeBus {
			continue
		}
		if err := c.AddBus(req.Name, req.Stops, req.IsRoundtrip); err != nil {
			return fmt.Errorf("failed to add bus: %w", err)
		}
		buses++
	}

	log.Printf("Loaded %d stops and %d buses", stops, buses)
	return nil
}
