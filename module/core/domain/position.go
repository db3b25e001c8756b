package domain

import "math"

// Position is a single timestamped fix of a tracked entity. Timestamp is an
// ordering key only and is not checked against wall-clock time.
type Position struct {
	Lat       float64 `json:"latitude"`
	Lon       float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// PositionRecord is a record as delivered by a position source. Any field
// may be missing or unparsable; Key is the string-encoded timestamp.
type PositionRecord struct {
	Key       string
	Latitude  *float64
	Longitude *float64
}

// Snapshot is a full replacement set of records for one entity. Record order
// is delivery order.
type Snapshot struct {
	EntityID string
	Records  []PositionRecord
}

// Reduction is the latest position and the time-ordered history derived
// from a snapshot.
type Reduction struct {
	Latest    Position
	History   []Position
	Discarded int
}

type Entity struct {
	EntityID string `json:"entity_id"`
}

func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
