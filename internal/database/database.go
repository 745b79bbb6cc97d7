// Package database establishes connections to the PostgreSQL database.
//
// It handles:
//   - creating a pgx connection pool from the configured URL
//   - wiring SQL query tracing (pgx tracelog + zerolog) in debug mode
//   - running schema migrations (see migrator.go)
//
// The configured URL passes through pgxpool.ParseConfig untouched, so
// both ordinary host:port URLs and the managed database's unix-socket
// form ("...@/dbname?host=/cloudsql/<project>:<region>:<instance>")
// work without special cases here.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/arvield/cloudnotes/internal/config"
	loggerPkg "github.com/arvield/cloudnotes/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pingTimeout bounds the startup connectivity check, in seconds.
const pingTimeout = 10

// Database wraps the pgx connection pool and a logger, giving the rest
// of the app one object to pass around.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// New creates a PostgreSQL connection pool and verifies connectivity.
//
// In debug mode every query is logged through pgx's tracelog adapter;
// that is far too noisy for a deployed instance, so the tracer is only
// attached when cfg.Debug is set.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	if cfg.Debug {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerPkg.NewPgxLogger(globalLevel)

		pgxPoolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerPkg.GetPgxTraceLogLevel(globalLevel)),
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Pool: pool,
		log:  logger,
	}

	// Ping with a timeout so startup fails fast when the database is
	// down instead of hanging on the first request.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("connected to the database")

	return database, nil
}

// Close closes the database connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
