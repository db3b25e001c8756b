package service

import (
	"sync"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

// ViewerService keeps the last known fix of each viewing user. It is
// display-only state.
type ViewerService struct {
	mu        sync.RWMutex
	locations map[string]domain.ViewerLocation
}

func NewViewerService() *ViewerService {
	return &ViewerService{locations: make(map[string]domain.ViewerLocation)}
}

// UpdateLocation stores vl unless a newer fix is already known.
func (s *ViewerService) UpdateLocation(vl domain.ViewerLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.locations[vl.ViewerID]; ok && cur.Location.Timestamp > vl.Location.Timestamp {
		return
	}
	s.locations[vl.ViewerID] = vl
}

func (s *ViewerService) GetLocation(viewerID string) (domain.ViewerLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vl, ok := s.locations[viewerID]
	return vl, ok
}
