package input

import (
	"errors"
	"log"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/routing"
)

const (
	messageNotFound     = "not found"
	messageNotSupported = "not supported"
)

// RouteBuilder finds trips between stops
type RouteBuilder interface {
	BuildRoute(from, to string) (*models.RouteInfo, error)
}

// ErrorResponse answers a request that could not be served
type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

// StopResponse lists the buses serving a stop
type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

// BusResponse carries bus line statistics
type BusResponse struct {
	RequestID int `json:"request_id"`
	models.BusStat
}

// RouteResponse carries a trip
type RouteResponse struct {
	RequestID int `json:"request_id"`
	models.RouteInfo
}

// Handler answers stat requests against a catalogue and a router
type Handler struct {
	catalogue *catalogue.Catalogue
	router    RouteBuilder
}

// NewHandler creates a request handler. router may be nil when the input
// carried no routing settings; route requests are then answered as not found.
func NewHandler(c *catalogue.Catalogue, router RouteBuilder) *Handler {
	return &Handler{catalogue: c, router: router}
}

// Apply answers requests in order
func (h *Handler) Apply(requests []StatRequest) []any {
	responses := make([]any, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, h.Answer(req))
	}
	return responses
}

// Answer answers a single request
func (h *Handler) Answer(req StatRequest) any {
	switch req.Type {
	case TypeStop:
		return h.stop(req)
	case TypeBus:
		return h.bus(req)
	case TypeRoute:
		return h.route(req)
	case TypeMap:
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotSupported}
	default:
		log.Printf("Warning: unknown request type %q (id %d)", req.Type, req.ID)
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotSupported}
	}
}

func (h *Handler) stop(req StatRequest) any {
	buses, err := h.catalogue.BusesByStop(req.Name)
	if err != nil {
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotFound}
	}
	return StopResponse{RequestID: req.ID, Buses: buses}
}

func (h *Handler) bus(req StatRequest) any {
	stat, err := h.catalogue.BusStat(req.Name)
	if err != nil {
		if !errors.Is(err, catalogue.ErrBusNotFound) {
			log.Printf("Bus stat failed for %q: %v", req.Name, err)
		}
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotFound}
	}
	return BusResponse{RequestID: req.ID, BusStat: stat}
}

func (h *Handler) route(req StatRequest) any {
	if h.router == nil {
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotFound}
	}

	route, err := h.router.BuildRoute(req.From, req.To)
	if err != nil {
		if !errors.Is(err, routing.ErrUnknownStop) {
			log.Printf("Route computation failed for %q -> %q: %v", req.From, req.To, err)
		}
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotFound}
	}
	if route == nil {
		return ErrorResponse{RequestID: req.ID, ErrorMessage: messageNotFound}
	}
	return RouteResponse{RequestID: req.ID, RouteInfo: *route}
}
