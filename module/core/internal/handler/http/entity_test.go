package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

type mockMonitorService struct {
	views map[string]domain.MonitorView
	fence domain.Geofence
}

func (m *mockMonitorService) View(entityID string) (domain.MonitorView, error) {
	v, ok := m.views[entityID]
	if !ok {
		return domain.MonitorView{}, fmt.Errorf("%w: %s", domain.ErrNotMonitored, entityID)
	}
	return v, nil
}

func (m *mockMonitorService) Entities() []string {
	ids := make([]string, 0, len(m.views))
	for id := range m.views {
		ids = append(ids, id)
	}
	return ids
}

func (m *mockMonitorService) Geofence() domain.Geofence {
	return m.fence
}

type mockPositionService struct {
	getAllEntitiesFn func(ctx context.Context) ([]domain.Entity, error)
}

func (m *mockPositionService) GetAllEntities(ctx context.Context) ([]domain.Entity, error) {
	return m.getAllEntitiesFn(ctx)
}

type mockViewerService struct {
	locations map[string]domain.ViewerLocation
}

func (m *mockViewerService) GetLocation(viewerID string) (domain.ViewerLocation, bool) {
	vl, ok := m.locations[viewerID]
	return vl, ok
}

func readyView() domain.MonitorView {
	return domain.MonitorView{
		EntityID: "elephantId6",
		Status:   domain.StatusReady,
		Latest:   &domain.Position{Lat: 6.70, Lon: 81.397, Timestamp: 300},
		History: []domain.Position{
			{Lat: 6.5805, Lon: 81.397, Timestamp: 100},
			{Lat: 6.60, Lon: 81.397, Timestamp: 200},
			{Lat: 6.70, Lon: 81.397, Timestamp: 300},
		},
		Inside:   false,
		Revision: 3,
	}
}

func setupRouter(monitorSvc monitorService, positionSvc positionService, viewerSvc viewerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewEntityHandler(monitorSvc, positionSvc, viewerSvc)
	h.Register(r.Group(""))
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetLatestLocation_Success(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{"elephantId6": readyView()}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/elephantId6/location")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp locationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.EntityID != "elephantId6" {
		t.Errorf("expected elephantId6, got %s", resp.EntityID)
	}
	if resp.Latitude != 6.70 {
		t.Errorf("expected 6.70, got %f", resp.Latitude)
	}
	if resp.Timestamp != 300 {
		t.Errorf("expected 300, got %d", resp.Timestamp)
	}
	if resp.Inside {
		t.Error("expected inside=false")
	}
}

func TestGetLatestLocation_NotMonitored(t *testing.T) {
	r := setupRouter(&mockMonitorService{}, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/UNKNOWN/location")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetLatestLocation_Loading(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{
		"elephantId6": {EntityID: "elephantId6", Status: domain.StatusLoading},
	}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/elephantId6/location")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetLatestLocation_Error(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{
		"elephantId6": {
			EntityID: "elephantId6",
			Status:   domain.StatusError,
			Error:    "Failed to load movement data for elephantId6: connection refused",
		},
	}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/elephantId6/location")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"] != "Failed to load movement data for elephantId6: connection refused" {
		t.Errorf("unexpected error body %q", resp["error"])
	}
}

func TestGetHistory_Filtered(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{"elephantId6": readyView()}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/elephantId6/history?start=150&end=300")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []pointResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
	if resp[0].Timestamp != 200 {
		t.Errorf("expected 200, got %d", resp[0].Timestamp)
	}
}

func TestGetHistory_Unbounded(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{"elephantId6": readyView()}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/elephantId6/history")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []pointResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp))
	}
}

func TestGetHistory_InvalidParams(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{"elephantId6": readyView()}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	tests := []struct {
		name string
		url  string
	}{
		{"bad start", "/entities/elephantId6/history?start=abc&end=300"},
		{"bad end", "/entities/elephantId6/history?start=100&end=xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.url)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestGetStatus(t *testing.T) {
	monitors := &mockMonitorService{views: map[string]domain.MonitorView{"elephantId6": readyView()}}
	r := setupRouter(monitors, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/entities/elephantId6/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp domain.MonitorView
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != domain.StatusReady {
		t.Errorf("expected ready, got %s", resp.Status)
	}
	if len(resp.History) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(resp.History))
	}
}

func TestGetAllEntities_Success(t *testing.T) {
	positions := &mockPositionService{
		getAllEntitiesFn: func(_ context.Context) ([]domain.Entity, error) {
			return []domain.Entity{{EntityID: "elephantId1"}, {EntityID: "elephantId6"}}, nil
		},
	}
	r := setupRouter(&mockMonitorService{}, positions, &mockViewerService{})

	w := serve(r, "/entities")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []domain.Entity
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(resp))
	}
}

func TestGetAllEntities_Empty(t *testing.T) {
	positions := &mockPositionService{
		getAllEntitiesFn: func(_ context.Context) ([]domain.Entity, error) {
			return nil, nil
		},
	}
	r := setupRouter(&mockMonitorService{}, positions, &mockViewerService{})

	w := serve(r, "/entities")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "[]" {
		t.Errorf("expected [], got %s", w.Body.String())
	}
}

func TestGetAllEntities_Error(t *testing.T) {
	positions := &mockPositionService{
		getAllEntitiesFn: func(_ context.Context) ([]domain.Entity, error) {
			return nil, errors.New("db error")
		},
	}
	r := setupRouter(&mockMonitorService{}, positions, &mockViewerService{})

	w := serve(r, "/entities")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetGeofence(t *testing.T) {
	fence := domain.Geofence{CenterLat: 6.5805, CenterLon: 81.397, RadiusMeters: 9000}
	r := setupRouter(&mockMonitorService{fence: fence}, &mockPositionService{}, &mockViewerService{})

	w := serve(r, "/geofence")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp domain.Geofence
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp != fence {
		t.Errorf("expected %+v, got %+v", fence, resp)
	}
}

func TestGetViewerLocation(t *testing.T) {
	viewers := &mockViewerService{locations: map[string]domain.ViewerLocation{
		"viewer-1": {ViewerID: "viewer-1", Location: domain.Position{Lat: 6.9, Lon: 81.0, Timestamp: 10}},
	}}
	r := setupRouter(&mockMonitorService{}, &mockPositionService{}, viewers)

	w := serve(r, "/viewers/viewer-1/location")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = serve(r, "/viewers/viewer-2/location")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
