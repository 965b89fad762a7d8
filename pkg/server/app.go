package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TradePulse/internal/domain/repository"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/service/events"
	"TradePulse/internal/usecase"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	applogger "TradePulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the telemetry core,
// the optional archive and event forwarders, and the HTTP surface.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	telemetry  *usecase.Telemetry
	bus        *events.Bus
	forwarder  *internalrepo.EventForwarder
	archiver   repository.Archiver
	chClient   *pkgch.Client
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	tel *usecase.Telemetry,
	bus *events.Bus,
	forwarder *internalrepo.EventForwarder,
	archiver repository.Archiver,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		telemetry: tel,
		bus:       bus,
		forwarder: forwarder,
		archiver:  archiver,
		chClient:  chClient,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	// Forwarders subscribe before the first event so "started" reaches
	// external consumers too.
	if a.forwarder != nil {
		a.forwarder.Attach(a.bus)
		if a.cfg.Events.Kafka.Enabled {
			a.log.Info("event forwarder attached",
				applogger.Strings("kafka_brokers", a.cfg.Events.Kafka.Brokers))
		} else {
			a.log.Info("event forwarder attached")
		}
	}

	a.telemetry.Start()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services: timers first, then sinks and
// forwarders, HTTP last.
func (a *App) shutdown() error {
	start := time.Now()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.telemetry.Close(); err != nil {
		a.log.Warn("telemetry close error", applogger.Error(err))
	}

	if a.archiver != nil {
		if err := a.archiver.Flush(shutdownCtx); err != nil {
			a.log.Warn("archive flush error", applogger.Error(err))
		}
		if err := a.archiver.Close(); err != nil {
			a.log.Warn("archive close error", applogger.Error(err))
		}
	}

	if a.forwarder != nil {
		if err := a.forwarder.Close(); err != nil {
			a.log.Warn("forwarder close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.log.Info("shutdown complete", applogger.Duration("took", time.Since(start)))
	return nil
}
