// Package server implements the Openclawd HTTP API on top of a SQLite
// activity tracker.
package server

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/honganh1206/openclawd/server/data"
	"github.com/honganh1206/openclawd/server/db"
)

const (
	DefaultSimulateInterval = 15 * time.Second
	shutdownTimeout         = 10 * time.Second
)

type Config struct {
	Version     string
	Environment string

	// Both must be set to require HTTP Basic authentication.
	Username string
	Password string

	// TrackRequests logs an http_request activity for every request.
	TrackRequests bool

	// SimulateInterval is the period of the simulated background jobs.
	// Zero disables them.
	SimulateInterval time.Duration

	// ProcessDelay returns how long /api/process pretends to work.
	// Nil means a random delay between one and three seconds.
	ProcessDelay func() time.Duration

	DB            db.Config
	MaxActivities int
}

type server struct {
	cfg     Config
	models  *data.Models
	metrics *metrics
	logger  *slog.Logger
	started time.Time
}

// New returns the API handler backed by models.
func New(cfg Config, models *data.Models, logger *slog.Logger) http.Handler {
	return newServer(cfg, models, logger).routes()
}

func newServer(cfg Config, models *data.Models, logger *slog.Logger) *server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ProcessDelay == nil {
		cfg.ProcessDelay = randomProcessDelay
	}

	return &server{
		cfg:     cfg,
		models:  models,
		metrics: newMetrics(models.Activities, logger),
		logger:  logger,
		started: time.Now(),
	}
}

// Serve opens the activity store and serves the API on ln until ctx is
// cancelled, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	database, err := db.OpenDB(cfg.DB, data.ActivitySchema)
	if err != nil {
		return err
	}
	defer database.Close()

	srv := newServer(cfg, data.NewModels(database, cfg.MaxActivities), logger)
	httpServer := &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	simCtx, stopSimulation := context.WithCancel(ctx)
	defer func() {
		stopSimulation()
		wg.Wait()
	}()

	if cfg.SimulateInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.simulate(simCtx, cfg.SimulateInterval)
		}()
	}

	addr := ln.Addr().String()
	logger.Info("openclawd server running", "addr", addr, "environment", srv.cfg.Environment)
	srv.logSystem("Openclawd server started", map[string]any{"addr": addr})

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, closing http server")
	srv.logSystem("Server shutting down", map[string]any{"reason": context.Cause(ctx).Error()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("http server closed")
	return nil
}

// logActivity stores a new running activity and counts it.
func (s *server) logActivity(ctx context.Context, activityType, description string, metadata map[string]any) (*data.Activity, error) {
	activity, err := s.models.Activities.Log(ctx, activityType, description, metadata)
	if err != nil {
		return nil, err
	}
	s.metrics.activitiesLogged.WithLabelValues(activityType).Inc()
	return activity, nil
}

func (s *server) logSystem(description string, metadata map[string]any) {
	if _, err := s.logActivity(context.Background(), "system", description, metadata); err != nil {
		s.logger.Error("failed to log system activity", "error", err)
	}
}

var simulatedTypes = []string{"background_task", "scheduled_job", "maintenance"}

// simulate logs a fake background activity every interval and completes it
// after a random delay below five seconds.
func (s *server) simulate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		activityType := simulatedTypes[rand.IntN(len(simulatedTypes))]
		activity, err := s.logActivity(ctx, activityType, "Executing "+activityType, map[string]any{"automatic": true})
		if err != nil {
			s.logger.Error("failed to log simulated activity", "error", err)
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case <-time.After(rand.N(5 * time.Second)):
			}

			if _, err := s.models.Activities.Update(ctx, id, data.StatusCompleted, map[string]any{"success": true}); err != nil {
				s.logger.Error("failed to complete simulated activity", "id", id, "error", err)
			}
		}(activity.ID)
	}
}

func randomProcessDelay() time.Duration {
	return time.Second + rand.N(2*time.Second)
}
