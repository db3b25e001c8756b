package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"

	"github.com/kasunhdu/elephant-tracker-wildlife/config"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

type locationMessage struct {
	EntityID  string  `json:"entity_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// amplitude of the simulated walk in degrees of latitude, ~13 km, so the
// collar leaves and re-enters the default 9 km fence.
const amplitude = 0.12

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [entity_id]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	entityID := "elephantId6"
	if len(os.Args) > 2 {
		entityID = os.Args[2]
	}

	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel, "text")
	cfg.MQTTClientID = "wildlife-collar-simulator"

	// snapshot and nats modes feed a position source directly, collar mode
	// goes through ingest and the position store
	mode := os.Getenv("PUBLISH_MODE")
	if mode == "" {
		mode = "collar"
	}

	var natsConn *nats.Conn
	if mode == "nats" {
		natsConn, err = config.NewNATS(cfg)
		if err != nil {
			slog.Error("nats", "error", err)
			os.Exit(1)
		}
		defer natsConn.Close()
	}

	client, err := config.NewMQTT(cfg)
	if err != nil {
		slog.Error("mqtt", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(250)

	slog.Info("publishing",
		"broker", cfg.MQTTBroker,
		"entity_id", entityID,
		"interval_seconds", intervalSec,
		"mode", mode,
	)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	var track []domain.Position
	step := 0
	for range ticker.C {
		p := walk(cfg, step)
		step++
		track = append(track, p)

		switch mode {
		case "snapshot":
			publishSnapshot(client, entityID, track)
		case "nats":
			publishNATS(natsConn, entityID, track)
		default:
			publishFix(client, entityID, p)
		}
	}
}

func walk(cfg *config.Config, step int) domain.Position {
	jitter := (rand.Float64() - 0.5) * 0.0005 // ~50m
	return domain.Position{
		Lat:       cfg.GeofenceCenterLat + amplitude*math.Sin(float64(step)/6) + jitter,
		Lon:       cfg.GeofenceCenterLon + jitter,
		Timestamp: time.Now().UnixMilli(),
	}
}

func publishFix(client mqtt.Client, entityID string, p domain.Position) {
	payload, _ := json.Marshal(locationMessage{
		EntityID:  entityID,
		Latitude:  p.Lat,
		Longitude: p.Lon,
		Timestamp: p.Timestamp,
	})
	topic := fmt.Sprintf("wildlife/collar/%s/location", entityID)

	token := client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		slog.Error("publish failed", "topic", topic, "error", err)
		return
	}
	slog.Info("published fix", "topic", topic, "latitude", p.Lat, "longitude", p.Lon)
}

func publishSnapshot(client mqtt.Client, entityID string, track []domain.Position) {
	payload, err := core.EncodeSnapshot(track)
	if err != nil {
		slog.Error("encode snapshot", "error", err)
		return
	}
	topic := core.MovementTopic(entityID)

	token := client.Publish(topic, 1, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		slog.Error("publish failed", "topic", topic, "error", err)
		return
	}
	slog.Info("published snapshot", "topic", topic, "records", len(track))
}

func publishNATS(conn *nats.Conn, entityID string, track []domain.Position) {
	payload, err := core.EncodeSnapshot(track)
	if err != nil {
		slog.Error("encode snapshot", "error", err)
		return
	}
	subject := core.MovementSubject(entityID)
	if err := conn.Publish(subject, payload); err != nil {
		slog.Error("publish failed", "subject", subject, "error", err)
		return
	}
	slog.Info("published snapshot", "subject", subject, "records", len(track))
}
