// Package database owns the PostgreSQL connection pool the snapshot
// repository reads from, and the tern migrations that create its schema.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/config"
	loggerConfig "github.com/deppfellow/storefront-analytics/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database wraps the pgx pool.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// multiTracer fans pgx query events out to several tracers, so New Relic
// and the local SQL log can both observe a query.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range mt.tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range mt.tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// DatabasePingTimeout bounds the connectivity check in New, in seconds.
const DatabasePingTimeout = 10

// DSN builds the connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

// tracers picks the query tracers for the environment: New Relic when the
// agent runs, and a zerolog SQL trace in local runs.
func tracers(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) []pgx.QueryTracer {
	var out []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		out = append(out, nrpgx5.NewTracer())
	}

	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		out = append(out, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		})
	}

	return out
}

// New opens the pool and pings it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	switch ts := tracers(cfg, logger, loggerService); len(ts) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = ts[0]
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: ts}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Pool: pool,
		log:  logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("database", cfg.Database.Name).Msg("connected to the database")

	return database, nil
}

// Close releases every pooled connection.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
