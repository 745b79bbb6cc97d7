// Package server defines the Server struct that composes the app's
// main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger
//   - database pool
//   - object store client
//   - http.Server
//
// and provides constructors plus start/shutdown logic so the serve
// entry point stays small.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arvield/cloudnotes/internal/config"
	"github.com/arvield/cloudnotes/internal/database"
	"github.com/arvield/cloudnotes/internal/storage"
	"github.com/rs/zerolog"
)

// Server is the application container that holds shared resources.
// It is not the HTTP server itself; it carries one in httpServer.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// DB holds the PostgreSQL pool wrapper.
	DB *database.Database

	// Store is the object-storage client for attachments and static
	// assets. It is an in-memory store when no bucket is configured,
	// so handlers never need a nil check.
	Store storage.ObjectStore

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// The database must be reachable or construction fails; the bucket is
// optional (local development runs without one, on the in-memory
// store).
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Server, error) {
	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var store storage.ObjectStore
	if cfg.Bucket.Name != "" {
		store, err = storage.NewGCS(ctx, cfg.Bucket.Name)
		if err != nil {
			db.Pool.Close()
			return nil, fmt.Errorf("failed to initialize object store: %w", err)
		}
	} else {
		logger.Warn().Msg("no bucket configured, attachments are stored in memory")
		store = storage.NewMemory()
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Store:  store,
	}, nil
}

// SetupHTTPServer configures the internal net/http server. The handler
// is the Echo router built in internal/router.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// These timeouts protect against slow clients. Config stores
		// whole seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops or
// errors; SetupHTTPServer must have been called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Strs("allowed_hosts", s.Config.Deployment.AllowedHosts).
		Str("region", s.Config.Deployment.Region).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and its dependencies:
// stop accepting connections, drain inflight requests until the ctx
// deadline, then close the pool and the store client.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if err := s.Store.Close(); err != nil {
		return fmt.Errorf("failed to close object store: %w", err)
	}

	return nil
}
