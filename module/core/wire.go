package core

import (
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
	mqttsource "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source/mqtt"
	natssource "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source/nats"
)

// EncodeSnapshot renders positions in the movement store wire form used by
// the MQTT and NATS sources.
func EncodeSnapshot(positions []domain.Position) ([]byte, error) {
	return source.EncodeSnapshot(positions)
}

func MovementTopic(entityID string) string {
	return mqttsource.TopicFor(entityID)
}

func MovementSubject(entityID string) string {
	return natssource.SubjectFor(entityID)
}
