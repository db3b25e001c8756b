package domain

import "errors"

var (
	ErrAlreadyMonitored = errors.New("entity already monitored")
	ErrNotMonitored     = errors.New("entity not monitored")
)

// TrackedEntityState is the containment state of one monitored entity.
// Evaluated is false until the first position has been classified.
type TrackedEntityState struct {
	EntityID  string
	Latest    *Position
	Inside    bool
	Evaluated bool
}

type MonitorStatus string

const (
	StatusLoading MonitorStatus = "loading"
	StatusReady   MonitorStatus = "ready"
	StatusError   MonitorStatus = "error"
	StatusStopped MonitorStatus = "stopped"
)

// MonitorView is a read-only copy of a monitor's state for display.
type MonitorView struct {
	EntityID string        `json:"entity_id"`
	Status   MonitorStatus `json:"status"`
	Latest   *Position     `json:"latest,omitempty"`
	History  []Position    `json:"history"`
	Inside   bool          `json:"inside"`
	Error    string        `json:"error,omitempty"`
	Revision uint64        `json:"revision"`
}

// ViewerLocation is the viewing user's own position. It is shown next to the
// tracked entity and never feeds geofence evaluation.
type ViewerLocation struct {
	ViewerID string   `json:"viewer_id"`
	Location Position `json:"location"`
}
