package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGeofence = errors.New("invalid geofence")

// Geofence is a fixed circular region around a center coordinate.
type Geofence struct {
	CenterLat    float64 `json:"center_latitude"`
	CenterLon    float64 `json:"center_longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

func (g Geofence) Validate() error {
	if !ValidCoordinate(g.CenterLat, g.CenterLon) {
		return fmt.Errorf("%w: center (%f, %f) out of range", ErrInvalidGeofence, g.CenterLat, g.CenterLon)
	}
	if math.IsNaN(g.RadiusMeters) || math.IsInf(g.RadiusMeters, 0) || g.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %f", ErrInvalidGeofence, g.RadiusMeters)
	}
	return nil
}

type GeofenceEventType string

const (
	GeofenceEntry GeofenceEventType = "geofence_entry"
	GeofenceExit  GeofenceEventType = "geofence_exit"
)

// Alert is the one-shot message handed to an alert sink when an entity
// leaves the geofence.
type Alert struct {
	EntityID string            `json:"entity_id"`
	Event    GeofenceEventType `json:"event"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Position Position          `json:"position"`
}
