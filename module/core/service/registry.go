package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
)

// MonitorService owns one EntityMonitor per tracked entity.
type MonitorService struct {
	source source.PositionSource
	sink   publisher.AlertSink
	cfg    MonitorConfig

	mu       sync.Mutex
	monitors map[string]*EntityMonitor
}

func NewMonitorService(src source.PositionSource, sink publisher.AlertSink, cfg MonitorConfig) *MonitorService {
	return &MonitorService{
		source:   src,
		sink:     sink,
		cfg:      cfg,
		monitors: make(map[string]*EntityMonitor),
	}
}

// Start begins monitoring entityID. A monitor that already terminated is
// replaced with a fresh one.
func (s *MonitorService) Start(ctx context.Context, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.monitors[entityID]; ok {
		select {
		case <-m.Done():
		default:
			return fmt.Errorf("%w: %s", domain.ErrAlreadyMonitored, entityID)
		}
	}

	m := NewEntityMonitor(entityID, s.cfg, s.source, s.sink)
	s.monitors[entityID] = m
	return m.Start(ctx)
}

func (s *MonitorService) Stop(entityID string) error {
	s.mu.Lock()
	m, ok := s.monitors[entityID]
	delete(s.monitors, entityID)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotMonitored, entityID)
	}
	m.Stop()
	return nil
}

func (s *MonitorService) StopAll() {
	s.mu.Lock()
	monitors := s.monitors
	s.monitors = make(map[string]*EntityMonitor)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, m := range monitors {
		wg.Add(1)
		go func(m *EntityMonitor) {
			defer wg.Done()
			m.Stop()
		}(m)
	}
	wg.Wait()
}

func (s *MonitorService) View(entityID string) (domain.MonitorView, error) {
	s.mu.Lock()
	m, ok := s.monitors[entityID]
	s.mu.Unlock()

	if !ok {
		return domain.MonitorView{}, fmt.Errorf("%w: %s", domain.ErrNotMonitored, entityID)
	}
	return m.View(), nil
}

func (s *MonitorService) Entities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.monitors))
	for id := range s.monitors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MonitorService) Geofence() domain.Geofence {
	return s.cfg.Fence
}
