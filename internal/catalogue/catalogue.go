package catalogue

import (
	"errors"
	"fmt"
	"sort"

	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/models"
)

var (
	ErrStopNotFound   = errors.New("stop not found")
	ErrBusNotFound    = errors.New("bus not found")
	ErrDistanceNotSet = errors.New("distance not set")
)

type stopPair struct {
	from string
	to   string
}

// Catalogue holds the stops, bus lines and road distances of a network.
// It is populated once and read afterwards; it is not safe for
// concurrent mutation.
type Catalogue struct {
	stops     map[string]models.Stop
	buses     map[string]models.Bus
	stopBuses map[string]map[string]struct{} // stop name -> set of bus names
	distances map[stopPair]int               // meters
}

// New creates an empty catalogue
func New() *Catalogue {
	return &Catalogue{
		stops:     make(map[string]models.Stop),
		buses:     make(map[string]models.Bus),
		stopBuses: make(map[string]map[string]struct{}),
		distances: make(map[stopPair]int),
	}
}

// AddStop registers a stop
func (c *Catalogue) AddStop(name string, coords models.Coordinates) error {
	if name == "" {
		return fmt.Errorf("stop name is empty")
	}
	if _, exists := c.stops[name]; exists {
		return fmt.Errorf("stop %q already exists", name)
	}

	c.stops[name] = models.Stop{Name: name, Coordinates: coords}
	c.stopBuses[name] = make(map[string]struct{})
	return nil
}

// AddBus registers a bus line. Every stop of the line must already exist.
func (c *Catalogue) AddBus(name string, stops []string, roundtrip bool) error {
	if name == "" {
		return fmt.Errorf("bus name is empty")
	}
	if _, exists := c.buses[name]; exists {
		return fmt.Errorf("bus %q already exists", name)
	}
	for _, stop := range stops {
		if _, ok := c.stops[stop]; !ok {
			return fmt.Errorf("bus %q: %w: %q", name, ErrStopNotFound, stop)
		}
	}

	c.buses[name] = models.Bus{
		Name:        name,
		Stops:       append([]string(nil), stops...),
		IsRoundtrip: roundtrip,
	}
	for _, stop := range stops {
		c.stopBuses[stop][name] = struct{}{}
	}
	return nil
}

// SetDistance sets the road distance in meters from one stop to another
func (c *Catalogue) SetDistance(from, to string, meters int) error {
	if _, ok := c.stops[from]; !ok {
		return fmt.Errorf("%w: %q", ErrStopNotFound, from)
	}
	if _, ok := c.stops[to]; !ok {
		return fmt.Errorf("%w: %q", ErrStopNotFound, to)
	}
	if meters <= 0 {
		return fmt.Errorf("distance from %q to %q must be positive, got %d", from, to, meters)
	}

	c.distances[stopPair{from: from, to: to}] = meters
	return nil
}

// Stop returns a stop by name
func (c *Catalogue) Stop(name string) (models.Stop, bool) {
	stop, ok := c.stops[name]
	return stop, ok
}

// Bus returns a bus line by name
func (c *Catalogue) Bus(name string) (models.Bus, bool) {
	bus, ok := c.buses[name]
	if !ok {
		return models.Bus{}, false
	}
	bus.Stops = append([]string(nil), bus.Stops...)
	return bus, true
}

// AllStopsSortedByName returns every stop ordered by name
func (c *Catalogue) AllStopsSortedByName() []models.Stop {
	stops := make([]models.Stop, 0, len(c.stops))
	for _, stop := range c.stops {
		stops = append(stops, stop)
	}
	sort.Slice(stops, func(i, j int) bool {
		return stops[i].Name < stops[j].Name
	})
	return stops
}

// AllBusLines returns every bus line ordered by name
func (c *Catalogue) AllBusLines() []models.Bus {
	buses := make([]models.Bus, 0, len(c.buses))
	for _, bus := range c.buses {
		bus.Stops = append([]string(nil), bus.Stops...)
		buses = append(buses, bus)
	}
	sort.Slice(buses, func(i, j int) bool {
		return buses[i].Name < buses[j].Name
	})
	return buses
}

// DistanceBetween returns the road distance from one stop to another.
// When only the opposite direction was set, that value is used.
func (c *Catalogue) DistanceBetween(from, to string) (float64, error) {
	if d, ok := c.distances[stopPair{from: from, to: to}]; ok {
		return float64(d), nil
	}
	if d, ok := c.distances[stopPair{from: to, to: from}]; ok {
		return float64(d), nil
	}
	return 0, fmt.Errorf("%w: %q -> %q", ErrDistanceNotSet, from, to)
}

// BusesByStop returns the sorted names of the buses serving a stop
func (c *Catalogue) BusesByStop(name string) ([]string, error) {
	set, ok := c.stopBuses[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStopNotFound, name)
	}

	buses := make([]string, 0, len(set))
	for bus := range set {
		buses = append(buses, bus)
	}
	sort.Strings(buses)
	return buses, nil
}

// BusStat computes the statistics of a bus line
func (c *Catalogue) BusStat(name string) (models.BusStat, error) {
	bus, ok := c.buses[name]
	if !ok {
		return models.BusStat{}, fmt.Errorf("%w: %q", ErrBusNotFound, name)
	}

	unique := make(map[string]struct{}, len(bus.Stops))
	for _, stop := range bus.Stops {
		unique[stop] = struct{}{}
	}

	stat := models.BusStat{
		StopCount:       len(bus.Stops),
		UniqueStopCount: len(unique),
	}
	if !bus.IsRoundtrip && len(bus.Stops) > 0 {
		stat.StopCount = len(bus.Stops)*2 - 1
	}

	var geoLength float64
	for i := 0; i+1 < len(bus.Stops); i++ {
		from, to := bus.Stops[i], bus.Stops[i+1]

		forward, err := c.DistanceBetween(from, to)
		if err != nil {
			return models.BusStat{}, fmt.Errorf("bus %q: %w", name, err)
		}
		segment := geo.Distance(c.stops[from].Coordinates, c.stops[to].Coordinates)

		if bus.IsRoundtrip {
			stat.RouteLength += int(forward)
			geoLength += segment
			continue
		}

		backward, err := c.DistanceBetween(to, from)
		if err != nil {
			return models.BusStat{}, fmt.Errorf("bus %q: %w", name, err)
		}
		stat.RouteLength += int(forward) + int(backward)
		geoLength += segment * 2
	}

	if geoLength > 0 {
		stat.Curvature = float64(stat.RouteLength) / geoLength
	}
	return stat, nil
}
