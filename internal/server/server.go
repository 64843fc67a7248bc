// Package server holds the application container and its lifecycle.
//
// Server owns the configuration, loggers, the database store, the Redis
// client and session store, the background job service and the HTTP
// server. New wires them together; Shutdown tears them down in reverse.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/config"
	"github.com/quantumrocket/quantumrocket/internal/database"
	"github.com/quantumrocket/quantumrocket/internal/lib/job"
	loggerPkg "github.com/quantumrocket/quantumrocket/internal/logger"
	"github.com/quantumrocket/quantumrocket/internal/session"
)

type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is the Postgres pool or, with database.driver=sqlite, a local file.
	DB database.Store

	// Redis backs sessions and the job queue. It is nil only in tests.
	Redis *redis.Client

	Sessions session.Store

	// Job is nil when background jobs are not running.
	Job *job.JobService

	httpServer *http.Server
}

// New opens every dependency. Redis being unreachable is fatal outside the
// local environment; locally sessions fall back to process memory and no
// job workers are started.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.Open(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})
	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Sessions:      session.NewRedisStore(redisClient, cfg.Auth.SessionTTL),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		if cfg.Primary.Env != "local" {
			_ = db.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Warn().Err(err).Msg("Redis unreachable, using in-memory sessions and no background jobs")
		s.Sessions = session.NewMemoryStore(cfg.Auth.SessionTTL)
		return s, nil
	}

	s.Job = job.NewJobService(logger, cfg)
	if err := s.Job.Start(); err != nil {
		_ = db.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to start job server: %w", err)
	}

	return s, nil
}

// SetupHTTPServer configures the listener around handler. Timeouts in the
// config are seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("database", s.Config.Database.Driver).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes jobs, Redis and the
// database. Every step runs; the errors are joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	return errors.Join(errs...)
}
