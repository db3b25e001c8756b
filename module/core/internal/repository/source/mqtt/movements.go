package mqtt

import (
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/metrics"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
)

var _ source.PositionSource = (*MovementSource)(nil)

const qos = 1

// TopicFor is the topic carrying retained full snapshots of an entity.
func TopicFor(entityID string) string {
	return fmt.Sprintf("wildlife/%s/movements", entityID)
}

// MovementSource reads snapshots published as retained MQTT messages, so a
// new subscriber gets the current snapshot right away.
type MovementSource struct {
	client mqtt.Client
}

func NewMovementSource(client mqtt.Client) *MovementSource {
	return &MovementSource{client: client}
}

func (s *MovementSource) Subscribe(entityID string, onSnapshot source.SnapshotHandler, _ source.ErrorHandler) (source.Subscription, error) {
	topic := TopicFor(entityID)
	token := s.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		snap, err := source.DecodeSnapshot(entityID, msg.Payload())
		if err != nil {
			metrics.PayloadsDropped.WithLabelValues("mqtt").Inc()
			slog.Warn("invalid snapshot payload", "entity_id", entityID, "topic", msg.Topic(), "error", err)
			return
		}
		onSnapshot(snap)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return &subscription{client: s.client, topic: topic}, nil
}

type subscription struct {
	client mqtt.Client
	topic  string
}

func (s *subscription) Unsubscribe() error {
	token := s.client.Unsubscribe(s.topic)
	token.Wait()
	return token.Error()
}
