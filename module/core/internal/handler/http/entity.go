package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

type monitorService interface {
	View(entityID string) (domain.MonitorView, error)
	Entities() []string
	Geofence() domain.Geofence
}

type positionService interface {
	GetAllEntities(ctx context.Context) ([]domain.Entity, error)
}

type viewerService interface {
	GetLocation(viewerID string) (domain.ViewerLocation, bool)
}

type locationResponse struct {
	EntityID  string  `json:"entity_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Inside    bool    `json:"inside"`
}

type pointResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type EntityHandler struct {
	monitorSvc  monitorService
	positionSvc positionService
	viewerSvc   viewerService
}

func NewEntityHandler(monitorSvc monitorService, positionSvc positionService, viewerSvc viewerService) *EntityHandler {
	return &EntityHandler{
		monitorSvc:  monitorSvc,
		positionSvc: positionSvc,
		viewerSvc:   viewerSvc,
	}
}

func (h *EntityHandler) Register(r *gin.RouterGroup) {
	r.GET("/geofence", h.GetGeofence)
	r.GET("/entities", h.GetAllEntities)
	r.GET("/monitors", h.GetMonitoredEntities)
	r.GET("/entities/:entity_id/location", h.GetLatestLocation)
	r.GET("/entities/:entity_id/history", h.GetHistory)
	r.GET("/entities/:entity_id/status", h.GetStatus)
	r.GET("/viewers/:viewer_id/location", h.GetViewerLocation)
}

func (h *EntityHandler) GetGeofence(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorSvc.Geofence())
}

func (h *EntityHandler) GetAllEntities(c *gin.Context) {
	entities, err := h.positionSvc.GetAllEntities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch entities"})
		return
	}
	if entities == nil {
		entities = []domain.Entity{}
	}
	c.JSON(http.StatusOK, entities)
}

func (h *EntityHandler) GetMonitoredEntities(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorSvc.Entities())
}

func (h *EntityHandler) GetLatestLocation(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	if view.Status == domain.StatusError {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": view.Error})
		return
	}
	if view.Latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not available yet"})
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		EntityID:  view.EntityID,
		Latitude:  view.Latest.Lat,
		Longitude: view.Latest.Lon,
		Timestamp: view.Latest.Timestamp,
		Inside:    view.Inside,
	})
}

func (h *EntityHandler) GetHistory(c *gin.Context) {
	start, ok := queryInt(c, "start", math.MinInt64)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}
	end, ok := queryInt(c, "end", math.MaxInt64)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	view, found := h.view(c)
	if !found {
		return
	}
	if view.Status == domain.StatusError {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": view.Error})
		return
	}

	results := make([]pointResponse, 0, len(view.History))
	for _, p := range view.History {
		if p.Timestamp < start || p.Timestamp > end {
			continue
		}
		results = append(results, pointResponse{Latitude: p.Lat, Longitude: p.Lon, Timestamp: p.Timestamp})
	}
	c.JSON(http.StatusOK, results)
}

func (h *EntityHandler) GetStatus(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *EntityHandler) GetViewerLocation(c *gin.Context) {
	vl, ok := h.viewerSvc.GetLocation(c.Param("viewer_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "viewer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"viewer_id": vl.ViewerID,
		"latitude":  vl.Location.Lat,
		"longitude": vl.Location.Lon,
		"timestamp": vl.Location.Timestamp,
	})
}

func (h *EntityHandler) view(c *gin.Context) (domain.MonitorView, bool) {
	view, err := h.monitorSvc.View(c.Param("entity_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotMonitored) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not monitored"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch entity"})
		}
		return domain.MonitorView{}, false
	}
	return view, true
}

func queryInt(c *gin.Context, key string, fallback int64) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
