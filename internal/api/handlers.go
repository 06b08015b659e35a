package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transport_catalogue/internal/cache"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/input"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/routing"
)

// maxNearbyRadius bounds /v2/stops/nearby, in meters
const maxNearbyRadius = 5000

// Router answers trip queries over a built network
type Router interface {
	BuildRoute(from, to string) (*models.RouteInfo, error)
	Fingerprint() string
	Stats() routing.GraphStats
}

// HealthCheck reports the state of a dependency
type HealthCheck func(ctx context.Context) error

// Handler serves the catalogue and the router over HTTP
type Handler struct {
	catalogue *catalogue.Catalogue
	router    Router
	routes    *cache.Routes
	checks    map[string]HealthCheck
}

// NewHandler creates the HTTP handler. routes may be nil to disable caching.
func NewHandler(c *catalogue.Catalogue, router Router, routes *cache.Routes) *Handler {
	return &Handler{
		catalogue: c,
		router:    router,
		routes:    routes,
		checks:    make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency reported by /health
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Register mounts the handler's endpoints on app
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	v2 := app.Group("/v2")
	v2.Get("/route", h.Route)
	v2.Get("/stops/nearby", h.StopsNearby)
	v2.Get("/stops/:name", h.StopBuses)
	v2.Get("/buses/:name", h.BusStat)
	v2.Post("/requests", h.Requests)
}

// Route handles the /v2/route endpoint
func (h *Handler) Route(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")

	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required parameters: from and to",
		})
	}

	route, err := h.buildRoute(c.Context(), from, to)
	if errors.Is(err, routing.ErrUnknownStop) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "stop not found",
		})
	}
	if err != nil {
		log.Printf("Route computation failed for %q -> %q: %v", from, to, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	if route == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	}

	return c.JSON(route)
}

// buildRoute computes a route through the route cache
func (h *Handler) buildRoute(ctx context.Context, from, to string) (*models.RouteInfo, error) {
	key := cache.RouteKey(h.router.Fingerprint(), from, to)
	return h.routes.GetOrCompute(ctx, key, func() (*models.RouteInfo, error) {
		return h.router.BuildRoute(from, to)
	})
}

// StopBuses handles the /v2/stops/:name endpoint
func (h *Handler) StopBuses(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid stop name",
		})
	}

	buses, err := h.catalogue.BusesByStop(name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	}

	return c.JSON(fiber.Map{
		"buses": buses,
	})
}

// BusStat handles the /v2/buses/:name endpoint
func (h *Handler) BusStat(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid bus name",
		})
	}

	stat, err := h.catalogue.BusStat(name)
	if errors.Is(err, catalogue.ErrBusNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	}
	if err != nil {
		log.Printf("Bus stat failed for %q: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(stat)
}

// Requests handles the /v2/requests endpoint: a batch of stat requests
// answered in order, as the batch tool does
func (h *Handler) Requests(c *fiber.Ctx) error {
	var requests []input.StatRequest
	if err := c.BodyParser(&requests); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
	}

	ctx := c.Context()
	builder := routeBuilderFunc(func(from, to string) (*models.RouteInfo, error) {
		return h.buildRoute(ctx, from, to)
	})

	return c.JSON(input.NewHandler(h.catalogue, builder).Apply(requests))
}

type routeBuilderFunc func(from, to string) (*models.RouteInfo, error)

func (f routeBuilderFunc) BuildRoute(from, to string) (*models.RouteInfo, error) {
	return f(from, to)
}

// NearbyStop is a stop within the search radius
type NearbyStop struct {
	Name      string   `json:"name"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	DistanceM int      `json:"distance_meters"`
	Buses     []string `json:"buses"`
}

// StopsNearby handles the /v2/stops/nearby endpoint
func (h *Handler) StopsNearby(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	radiusStr := c.Query("radius", "500")

	if latStr == "" || lonStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required parameters: lat and lon",
		})
	}

	point, err := parseCoordinates(latStr + "," + lonStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	radius, err := strconv.Atoi(radiusStr)
	if err != nil || radius < 0 || radius > maxNearbyRadius {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid radius (must be between 0 and %d meters)", maxNearbyRadius),
		})
	}

	stops := []NearbyStop{}
	for _, stop := range h.catalogue.AllStopsSortedByName() {
		distance := geo.Distance(point, stop.Coordinates)
		if distance > float64(radius) {
			continue
		}
		buses, _ := h.catalogue.BusesByStop(stop.Name)
		stops = append(stops, NearbyStop{
			Name:      stop.Name,
			Lat:       stop.Coordinates.Lat,
			Lon:       stop.Coordinates.Lon,
			DistanceM: int(distance + 0.5),
			Buses:     buses,
		})
	}

	// stable: ties stay in name order
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].DistanceM < stops[j].DistanceM
	})

	return c.JSON(fiber.Map{
		"stops": stops,
	})
}

// Health handles the /health endpoint
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx := c.Context()

	status := "healthy"
	httpStatus := fiber.StatusOK
	checks := fiber.Map{}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "unhealthy"
			httpStatus = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	stats := h.router.Stats()
	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"graph": fiber.Map{
			"vertices":          stats.Vertices,
			"edges":             stats.Edges,
			"build_duration_ms": stats.BuildDuration.Milliseconds(),
			"fingerprint":       h.router.Fingerprint(),
		},
	})
}

// parseCoordinates parses "lat,lon" string into a point
func parseCoordinates(coordStr string) (models.Coordinates, error) {
	parts := strings.Split(coordStr, ",")
	if len(parts) != 2 {
		return models.Coordinates{}, fmt.Errorf("expected format: lat,lon")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid latitude: %w", err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid longitude: %w", err)
	}

	if lat < -90 || lat > 90 {
		return models.Coordinates{}, fmt.Errorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return models.Coordinates{}, fmt.Errorf("longitude must be between -180 and 180")
	}

	return models.Coordinates{Lat: lat, Lon: lon}, nil
}
