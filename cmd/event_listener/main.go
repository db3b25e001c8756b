package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasunhdu/elephant-tracker-wildlife/config"
)

const (
	exchangeName = "wildlife.events"
	queueName    = "geofence_alerts"
)

type alert struct {
	EntityID  string `json:"entity_id"`
	Event     string `json:"event"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	Location  struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel, "text")

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		slog.Error("rabbitmq", "error", err)
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Error("rabbitmq channel", "error", err)
		os.Exit(1)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		slog.Error("declare exchange", "error", err)
		os.Exit(1)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		slog.Error("declare queue", "error", err)
		os.Exit(1)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		slog.Error("bind queue", "error", err)
		os.Exit(1)
	}

	msgs, err := ch.Consume(queueName, "", true, false, false, false, nil)
	if err != nil {
		slog.Error("consume", "error", err)
		os.Exit(1)
	}

	slog.Info("waiting for geofence alerts", "queue", queueName)

	go func() {
		for msg := range msgs {
			var a alert
			if err := json.Unmarshal(msg.Body, &a); err != nil {
				slog.Warn("invalid alert", "error", err)
				continue
			}
			fmt.Printf("[%s] %s: %s (%s) at %.5f, %.5f ts=%d\n",
				a.Event, a.EntityID, a.Title, a.Body,
				a.Location.Latitude, a.Location.Longitude, a.Timestamp)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
}
