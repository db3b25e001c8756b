package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/nikoksr/notify"
	amqp "github.com/rabbitmq/amqp091-go"

	handler "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/handler/http"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/handler/subscriber"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/database/postgres"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher"
	alertnotify "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher/notify"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher/rabbitmq"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
	mqttsource "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source/mqtt"
	natssource "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source/nats"
	pgsource "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source/postgres"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/service"
)

type SourceKind string

const (
	SourcePostgres SourceKind = "postgres"
	SourceMQTT     SourceKind = "mqtt"
	SourceNATS     SourceKind = "nats"
)

type MailConfig = alertnotify.MailConfig

type Options struct {
	DB          *sql.DB
	PostgresDSN string
	AMQP        *amqp.Connection
	MQTT        mqtt.Client
	// NATS is only needed when Source is SourceNATS.
	NATS    *nats.Conn
	Source  SourceKind
	Monitor service.MonitorConfig
	Mail    MailConfig
}

type Module struct {
	PositionSvc *service.PositionService
	MonitorSvc  *service.MonitorService
	ViewerSvc   *service.ViewerService
	handler     *handler.EntityHandler
	subscriber  *subscriber.LocationSubscriber
}

func Build(opts Options) (*Module, error) {
	if err := opts.Monitor.Fence.Validate(); err != nil {
		return nil, err
	}

	positionRepo := postgres.NewPositionRepo(opts.DB)

	src, err := buildSource(opts, positionRepo)
	if err != nil {
		return nil, err
	}

	alertPub, err := rabbitmq.NewAlertPublisher(opts.AMQP)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	var mailServices []notify.Notifier
	if svc := alertnotify.NewMailService(opts.Mail); svc != nil {
		mailServices = append(mailServices, svc)
	}
	sink := publisher.Fanout{alertPub, alertnotify.NewAlertNotifier(mailServices...)}

	positionSvc := service.NewPositionService(positionRepo)
	monitorSvc := service.NewMonitorService(src, sink, opts.Monitor)
	viewerSvc := service.NewViewerService()

	h := handler.NewEntityHandler(monitorSvc, positionSvc, viewerSvc)
	sub := subscriber.NewLocationSubscriber(opts.MQTT, positionSvc, viewerSvc)

	return &Module{
		PositionSvc: positionSvc,
		MonitorSvc:  monitorSvc,
		ViewerSvc:   viewerSvc,
		handler:     h,
		subscriber:  sub,
	}, nil
}

func buildSource(opts Options, repo *postgres.PositionRepo) (source.PositionSource, error) {
	switch opts.Source {
	case SourcePostgres, "":
		return pgsource.NewMovementSource(opts.PostgresDSN, repo), nil
	case SourceMQTT:
		return mqttsource.NewMovementSource(opts.MQTT), nil
	case SourceNATS:
		if opts.NATS == nil {
			return nil, errors.New("nats source selected without a nats connection")
		}
		return natssource.NewMovementSource(opts.NATS), nil
	}
	return nil, fmt.Errorf("unknown position source %q", opts.Source)
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// StartMonitors starts one monitor per entity. A failing entity does not
// keep the others from starting.
func (m *Module) StartMonitors(ctx context.Context, entityIDs []string) error {
	var errs []error
	for _, id := range entityIDs {
		if err := m.MonitorSvc.Start(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Info("monitoring entity", "entity_id", id)
	}
	return errors.Join(errs...)
}

func (m *Module) Shutdown() {
	m.MonitorSvc.StopAll()
	if err := m.subscriber.Stop(); err != nil {
		slog.Warn("stop subscribers", "error", err)
	}
}
