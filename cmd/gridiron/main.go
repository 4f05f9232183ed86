package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/gridiron/internal/api/rest"
	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/app"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	serviceName    = "gridiron"
	serviceVersion = rest.Version
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(logrus.Fields{
		"service": serviceName,
		"version": serviceVersion,
		"season":  cfg.Season,
	}).Info("Starting roster service")

	var opts []service.RosterOption

	// Redis roster event stream (optional)
	var redisPublisher *publisher.RedisPublisher
	if cfg.RedisURL != "" {
		redisPublisher, err = publisher.NewRedisPublisher(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, roster events will not be streamed")
		} else {
			defer redisPublisher.Close()
			opts = append(opts, service.WithNotifiers(redisPublisher))
			log.Info("Connected to Redis")
		}
	}

	// Lookup audit table (optional)
	var db *store.Database
	if cfg.AtlasDSN != "" {
		db, err = store.NewDatabase(cfg.AtlasDSN, log)
		if err != nil {
			log.WithError(err).Warn("Atlas unavailable, lookup outcomes will not be recorded")
		} else if err := db.EnsureSchema(context.Background()); err != nil {
			log.WithError(err).Warn("Atlas schema setup failed, lookup outcomes will not be recorded")
			db.Close()
			db = nil
		} else {
			defer db.Close()
			opts = append(opts, service.WithOutcomeRecorder(repository.NewLookupRepository(db)))
			log.Info("Connected to Atlas database")
		}
	}

	// Live roster feed (optional)
	var wsServer *websocket.Server
	if cfg.WSPort != "" {
		hub := websocket.NewHub(log)
		wsServer = websocket.NewServer(cfg.WSPort, hub, cfg.CORSOrigins, log)
		opts = append(opts, service.WithNotifiers(hub))
	}

	pipeline := app.NewPipeline(cfg, log, opts...)

	var warmer *scheduler.Warmer
	if cfg.WarmSchedule != "" {
		warmer = scheduler.NewWarmer(pipeline.Rosters, log)
		if err := warmer.Start(cfg.WarmSchedule); err != nil {
			log.WithError(err).Fatal("Failed to start roster warmer")
		}
	}

	status := func() map[string]interface{} {
		s := pipeline.Status()
		if warmer != nil {
			s["warmer"] = warmer.Status()
		}
		if redisPublisher != nil {
			s["redis"] = healthString(redisPublisher.HealthCheck(context.Background()))
		}
		if db != nil {
			s["atlas"] = healthString(db.HealthCheck(context.Background()))
		}
		return s
	}

	restServer := rest.NewServer(cfg.Port, rest.NewHandler(pipeline.Rosters, status, log), cfg.CORSOrigins, log)
	go func() {
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("REST server error")
		}
	}()

	if wsServer != nil {
		go func() {
			if err := wsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("WebSocket server error")
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if warmer != nil {
		warmer.Stop(shutdownCtx)
	}
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("REST server shutdown error")
	}
	if wsServer != nil {
		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("WebSocket server shutdown error")
		}
	}

	log.Info("Stopped")
}

func healthString(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
