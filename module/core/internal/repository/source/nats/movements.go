package nats

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/metrics"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
)

var _ source.PositionSource = (*MovementSource)(nil)

func SubjectFor(entityID string) string {
	return "wildlife.movements." + entityID
}

// MovementSource reads full snapshots published on a per-entity subject.
type MovementSource struct {
	conn *nats.Conn
}

func NewMovementSource(conn *nats.Conn) *MovementSource {
	return &MovementSource{conn: conn}
}

func (s *MovementSource) Subscribe(entityID string, onSnapshot source.SnapshotHandler, _ source.ErrorHandler) (source.Subscription, error) {
	subject := SubjectFor(entityID)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handlePayload(entityID, msg.Data, onSnapshot)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return sub, nil
}

func handlePayload(entityID string, data []byte, onSnapshot source.SnapshotHandler) {
	snap, err := source.DecodeSnapshot(entityID, data)
	if err != nil {
		metrics.PayloadsDropped.WithLabelValues("nats").Inc()
		slog.Warn("invalid snapshot payload", "entity_id", entityID, "error", err)
		return
	}
	onSnapshot(snap)
}
