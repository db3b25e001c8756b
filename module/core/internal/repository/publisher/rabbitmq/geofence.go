package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/metrics"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher"
)

var _ publisher.AlertSink = (*AlertPublisher)(nil)

const (
	ExchangeName = "wildlife.events"
	QueueName    = "geofence_alerts"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertPublisher fans geofence alerts out on a RabbitMQ exchange.
type AlertPublisher struct {
	ch amqpChannel
}

func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AlertPublisher{ch: ch}, nil
}

type alertMessage struct {
	EntityID  string                   `json:"entity_id"`
	Event     domain.GeofenceEventType `json:"event"`
	Title     string                   `json:"title"`
	Body      string                   `json:"body"`
	Location  alertLocation            `json:"location"`
	Timestamp int64                    `json:"timestamp"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *AlertPublisher) Notify(ctx context.Context, alert domain.Alert) {
	if err := p.publish(ctx, alert); err != nil {
		metrics.SinkFailures.WithLabelValues("rabbitmq").Inc()
		slog.Error("publish geofence alert failed",
			"entity_id", alert.EntityID,
			"error", err,
		)
	}
}

func (p *AlertPublisher) publish(ctx context.Context, alert domain.Alert) error {
	msg := alertMessage{
		EntityID: alert.EntityID,
		Event:    alert.Event,
		Title:    alert.Title,
		Body:     alert.Body,
		Location: alertLocation{
			Latitude:  alert.Position.Lat,
			Longitude: alert.Position.Lon,
		},
		Timestamp: alert.Position.Timestamp,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
