package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"MCMTracker/pkg/config"
	xhttp "MCMTracker/pkg/http"
	pkgkafka "MCMTracker/pkg/kafka"
	applogger "MCMTracker/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	events     pkgkafka.MessageHandler
	publisher  io.Closer
	store      io.Closer
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. consumer may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	events pkgkafka.MessageHandler,
	publisher io.Closer,
	store io.Closer,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{
		cfg:       cfg,
		log:       l,
		handler:   handler,
		consumer:  consumer,
		events:    events,
		publisher: publisher,
		store:     store,
	}
	a.httpServer = xhttp.NewServer(handler, l,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetricsPath(metricsPath(cfg)),
		xhttp.WithCORS(cfg.Server.CORS),
	)
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(ctx)
}

// Start launches the consumer, when configured, and the HTTP server.
func (a *App) Start() error {
	if a.consumer != nil && a.events != nil {
		a.consumer.RegisterHandler(a.events)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.events.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// Shutdown stops the HTTP server first so no request observes a closed store.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("store close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

func metricsPath(cfg *config.Config) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	return cfg.Metrics.Path
}
