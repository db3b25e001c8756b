package service

import (
	"math"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

const earthRadiusMeters = 6371000

// InitialPolicy decides how the first-ever classification of an entity is
// treated.
type InitialPolicy int

const (
	// InitialAssumeInside starts every entity INSIDE, so a first position
	// outside the fence raises an exit alert.
	InitialAssumeInside InitialPolicy = iota
	// InitialSilent only seeds the state from the first classification and
	// never alerts on it.
	InitialSilent
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceToCenter is the haversine distance from p to the fence center.
func DistanceToCenter(p domain.Position, fence domain.Geofence) float64 {
	return Haversine(p.Lat, p.Lon, fence.CenterLat, fence.CenterLon)
}

// Contains reports whether p lies within the fence. A point exactly on the
// boundary is inside.
func Contains(p domain.Position, fence domain.Geofence) bool {
	return DistanceToCenter(p, fence) <= fence.RadiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Tracker is the edge-triggered containment state machine of one entity.
// It is not safe for concurrent use; EntityMonitor serializes access.
type Tracker struct {
	fence  domain.Geofence
	policy InitialPolicy
	state  domain.TrackedEntityState
}

func NewTracker(entityID string, fence domain.Geofence, policy InitialPolicy) *Tracker {
	return &Tracker{
		fence:  fence,
		policy: policy,
		state: domain.TrackedEntityState{
			EntityID: entityID,
			Inside:   true,
		},
	}
}

// Observe classifies p and advances the state. It returns GeofenceExit and
// true only on an inside to outside transition; re-entry is reported as
// GeofenceEntry with false.
func (t *Tracker) Observe(p domain.Position) (domain.GeofenceEventType, bool) {
	inside := Contains(p, t.fence)
	first := !t.state.Evaluated
	wasInside := t.state.Inside

	latest := p
	t.state.Latest = &latest
	t.state.Inside = inside
	t.state.Evaluated = true

	if first && t.policy == InitialSilent {
		return "", false
	}

	switch {
	case wasInside && !inside:
		return domain.GeofenceExit, true
	case !wasInside && inside:
		return domain.GeofenceEntry, false
	}
	return "", false
}

// State returns a copy of the tracked state.
func (t *Tracker) State() domain.TrackedEntityState {
	s := t.state
	if s.Latest != nil {
		latest := *s.Latest
		s.Latest = &latest
	}
	return s
}
