package config

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

func NewNATS(cfg *Config) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name(cfg.MQTTClientID),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
