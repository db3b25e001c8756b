package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kasunhdu/elephant-tracker-wildlife/config"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	fence, err := cfg.Geofence()
	if err != nil {
		return err
	}

	db, err := config.NewPostgres(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect(250)

	var natsConn *nats.Conn
	if core.SourceKind(cfg.PositionSource) == core.SourceNATS {
		natsConn, err = config.NewNATS(cfg)
		if err != nil {
			return err
		}
		defer natsConn.Close()
	}

	policy := service.InitialAssumeInside
	if cfg.GeofenceSilentFirst {
		policy = service.InitialSilent
	}

	coreModule, err := core.Build(core.Options{
		DB:          db,
		PostgresDSN: cfg.PostgresDSN,
		AMQP:        amqpConn,
		MQTT:        mqttClient,
		NATS:        natsConn,
		Source:      core.SourceKind(cfg.PositionSource),
		Monitor: service.MonitorConfig{
			Fence:      fence,
			Policy:     policy,
			AlertTitle: cfg.AlertTitle,
			AlertBody:  cfg.AlertBody,
		},
		Mail: core.MailConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			User:       cfg.SMTPUser,
			Password:   cfg.SMTPPassword,
			Recipients: cfg.AlertEmails,
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := coreModule.StartSubscribers(); err != nil {
		return err
	}
	if err := coreModule.StartMonitors(ctx, cfg.EntityIDs); err != nil {
		// failed entities stay visible in the error state
		slog.Error("start monitors", "error", err)
	}
	defer coreModule.Shutdown()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(db, amqpConn, mqttClient, natsConn)
	health.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", srv.Addr, "geofence", fence, "source", cfg.PositionSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
