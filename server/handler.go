// Package server exposes the directions screen over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"maps-directions/entities"
	"maps-directions/mapview"
	"maps-directions/orchestrator"
	"maps-directions/places"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlacePicker interface {
	Search(ctx context.Context, query string) ([]entities.PlaceSelection, error)
	Pick(ctx context.Context, query string) (entities.PlaceSelection, error)
}

// MapSurface is the map state served to HTTP clients.
type MapSurface interface {
	Snapshot() mapview.MapState
	GeoJSON() ([]byte, error)
}

type InfoNotifier interface {
	Info(ctx context.Context, info, source string)
}

// Handler serves the directions screen.
type Handler struct {
	orch       *orchestrator.Orchestrator
	picker     PlacePicker
	directions orchestrator.DirectionsService
	surface    MapSurface
	updates    http.Handler
	notifier   InfoNotifier
	logger     *zap.Logger
}

func NewHandler(
	orch *orchestrator.Orchestrator,
	picker PlacePicker,
	directions orchestrator.DirectionsService,
	surface MapSurface,
	updates http.Handler,
	notifier InfoNotifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orch:       orch,
		picker:     picker,
		directions: directions,
		surface:    surface,
		updates:    updates,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterRoutes registers all screen routes on the given router group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1")
	{
		api.POST("/selection/start", h.SetStart)
		api.POST("/selection/end", h.SetEnd)
		api.POST("/recompute", h.Recompute)
		api.GET("/state", h.State)
		api.GET("/steps", h.Steps)
		api.GET("/map", h.Map)
		api.GET("/places", h.SearchPlaces)
		api.POST("/directions", h.Directions)
	}
	if h.updates != nil {
		r.GET("/ws", gin.WrapH(h.updates))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// SelectionRequest picks a place either by search query or directly.
type SelectionRequest struct {
	Query string                   `json:"query"`
	Place *entities.PlaceSelection `json:"place"`
}

type StateResponse struct {
	orchestrator.State
	Pending int              `json:"pending"`
	Map     mapview.MapState `json:"map"`
}

type StepsResponse struct {
	Route *entities.Route `json:"route"`
	Steps []entities.Step `json:"steps"`
}

// SetStart handles POST /api/v1/selection/start.
func (h *Handler) SetStart(c *gin.Context) {
	h.applySelection(c, h.orch.SetStart)
}

// SetEnd handles POST /api/v1/selection/end.
func (h *Handler) SetEnd(c *gin.Context) {
	h.applySelection(c, h.orch.SetEnd)
}

func (h *Handler) applySelection(c *gin.Context, apply func(context.Context, entities.PlaceSelection)) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sel, err := h.resolveSelection(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	apply(c.Request.Context(), sel)
	c.JSON(http.StatusAccepted, gin.H{"data": h.state()})
}

var errBadSelection = errors.New("exactly one of query or place is required")

func (h *Handler) resolveSelection(ctx context.Context, req SelectionRequest) (entities.PlaceSelection, error) {
	switch {
	case req.Place != nil && req.Query == "":
		return *req.Place, nil
	case req.Place == nil && req.Query != "":
		return h.picker.Pick(ctx, req.Query)
	default:
		return entities.PlaceSelection{}, errBadSelection
	}
}

// Recompute handles POST /api/v1/recompute.
func (h *Handler) Recompute(c *gin.Context) {
	h.orch.Recompute(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"data": h.state()})
}

// State handles GET /api/v1/state.
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.state()})
}

func (h *Handler) state() StateResponse {
	return StateResponse{
		State:   h.orch.Snapshot(),
		Pending: h.orch.Pending(),
		Map:     h.surface.Snapshot(),
	}
}

// Steps handles GET /api/v1/steps.
func (h *Handler) Steps(c *gin.Context) {
	route, steps := h.orch.ViewRouteSteps(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": StepsResponse{Route: route, Steps: steps}})
}

// Map handles GET /api/v1/map and returns the surface as GeoJSON.
func (h *Handler) Map(c *gin.Context) {
	data, err := h.surface.GeoJSON()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// SearchPlaces handles GET /api/v1/places?q=.
func (h *Handler) SearchPlaces(c *gin.Context) {
	results, err := h.picker.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

// Directions handles POST /api/v1/directions. It does not touch the screen
// state and returns every candidate.
func (h *Handler) Directions(c *gin.Context) {
	var req entities.RouteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required"})
		return
	}

	routes, err := h.directions.Directions(c.Request.Context(), *req.Start, *req.End)
	if err != nil {
		h.writeError(c, fmt.Errorf("directions error: %w", err))
		return
	}
	if len(routes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no routes"})
		return
	}

	c.JSON(http.StatusOK, entities.RouteOutput{Routes: routes})
	if h.notifier != nil {
		h.notifier.Info(context.WithoutCancel(c.Request.Context()),
			fmt.Sprintf("Route request processed: Origin=%s, Destination=%s, RoutesFound=%d", req.Start.Location, req.End.Location, len(routes)),
			"Route Handler")
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, places.ErrNoSelection):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errBadSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// NewRouter builds the gin engine with the screen's middleware and routes.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	h.RegisterRoutes(&router.RouterGroup)
	return router
}
