// Package app defines the App container that composes the application's
// main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool (when the command reads from PostgreSQL)
//   - redis client and the asynq job service (when the command needs them)
//
// Commands ask only for what they use: a report read from a snapshot file
// never opens a database connection.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/deppfellow/storefront-analytics/internal/database"
	"github.com/deppfellow/storefront-analytics/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/storefront-analytics/internal/logger"
)

// RedisPingTimeout bounds the connectivity check in New.
const RedisPingTimeout = 5 * time.Second

// Options selects which connections New opens.
type Options struct {
	Database bool
	Redis    bool
}

// App is the application container that holds shared resources.
type App struct {
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, which may be nil.
	LoggerService *loggerPkg.LoggerService

	// DB is nil unless Options.Database was set.
	DB *database.Database

	// Redis and Job are nil unless Options.Redis was set.
	Redis *redis.Client
	Job   *job.JobService
}

// New constructs an App and opens the connections opts asks for.
//
// A database failure is fatal. A Redis ping failure is only logged: the
// client reconnects lazily and the status command reports it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, opts Options) (*App, error) {
	a := &App{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	if opts.Database {
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
	}

	if opts.Redis {
		a.Redis = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Address,
		})

		if loggerService.GetApplication() != nil {
			a.Redis.AddHook(nrredis.NewHook(a.Redis.Options()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), RedisPingTimeout)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			logger.Error().Err(err).Str("address", cfg.Redis.Address).Msg("failed to connect to Redis")
		}

		jobService, err := job.NewJobService(logger, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize job service: %w", err)
		}
		a.Job = jobService
	}

	return a, nil
}

// Close releases every connection the App opened. It is safe to call on a
// partially constructed App.
func (a *App) Close() error {
	var errs []error

	if a.Job != nil {
		a.Job.Stop()
	}

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	return errors.Join(errs...)
}
