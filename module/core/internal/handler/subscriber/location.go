package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

const (
	collarTopic = "wildlife/collar/+/location"
	viewerTopic = "wildlife/viewer/+/location"
)

type positionService interface {
	RecordPosition(ctx context.Context, entityID string, p domain.Position) error
}

type viewerService interface {
	UpdateLocation(vl domain.ViewerLocation)
}

type locationMessage struct {
	EntityID  string  `json:"entity_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type viewerMessage struct {
	ViewerID  string  `json:"viewer_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// LocationSubscriber ingests collar fixes into the movement store and
// viewer fixes into the display-only viewer store.
type LocationSubscriber struct {
	client      mqtt.Client
	positionSvc positionService
	viewerSvc   viewerService
}

func NewLocationSubscriber(client mqtt.Client, positionSvc positionService, viewerSvc viewerService) *LocationSubscriber {
	return &LocationSubscriber{
		client:      client,
		positionSvc: positionSvc,
		viewerSvc:   viewerSvc,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.SubscribeMultiple(map[string]byte{
		collarTopic: 1,
		viewerTopic: 0,
	}, s.route)
	token.Wait()
	return token.Error()
}

// Stop releases both subscriptions.
func (s *LocationSubscriber) Stop() error {
	token := s.client.Unsubscribe(collarTopic, viewerTopic)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) route(c mqtt.Client, msg mqtt.Message) {
	if isViewerTopic(msg.Topic()) {
		s.handleViewerMessage(c, msg)
		return
	}
	s.handleMessage(c, msg)
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		slog.Warn("invalid location message", "topic", msg.Topic(), "error", err)
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		slog.Warn("validation error", "topic", msg.Topic(), "error", err)
		return
	}

	p := domain.Position{
		Lat:       raw.Latitude,
		Lon:       raw.Longitude,
		Timestamp: raw.Timestamp,
	}

	if err := s.positionSvc.RecordPosition(context.Background(), raw.EntityID, p); err != nil {
		slog.Error("record position error", "entity_id", raw.EntityID, "error", err)
	}
}

func (s *LocationSubscriber) handleViewerMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw viewerMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		slog.Warn("invalid viewer message", "topic", msg.Topic(), "error", err)
		return
	}

	if raw.ViewerID == "" {
		slog.Warn("validation error", "topic", msg.Topic(), "error", "viewer_id: required")
		return
	}
	if !domain.ValidCoordinate(raw.Latitude, raw.Longitude) {
		slog.Warn("validation error", "topic", msg.Topic(), "error", "coordinates out of range")
		return
	}

	s.viewerSvc.UpdateLocation(domain.ViewerLocation{
		ViewerID: raw.ViewerID,
		Location: domain.Position{
			Lat:       raw.Latitude,
			Lon:       raw.Longitude,
			Timestamp: raw.Timestamp,
		},
	})
}

func isViewerTopic(topic string) bool {
	return strings.HasPrefix(topic, "wildlife/viewer/")
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.EntityID == "" {
		return fmt.Errorf("entity_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
