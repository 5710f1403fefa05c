package handler

import (
	"context"
	"slices"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/database"
	"github.com/deppfellow/storefront-analytics/internal/logger"
	"github.com/deppfellow/storefront-analytics/internal/service"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthHandler checks that the configured dependencies are reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(h Handler) *HealthHandler {
	return &HealthHandler{Handler: h}
}

// Check is the outcome of one dependency check.
type Check struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthReport is the result of the status command.
type HealthReport struct {
	Status      string           `json:"status"`
	Timestamp   time.Time        `json:"timestamp"`
	Environment string           `json:"environment"`
	Checks      map[string]Check `json:"checks"`
}

func (r *HealthReport) Healthy() bool {
	return r.Status == StatusHealthy
}

// CheckHealth pings every dependency named in the health check settings.
// The database is connected on demand so a failure is reported, not fatal.
func (h *HealthHandler) CheckHealth(ctx context.Context, _ service.NoParams) (*HealthReport, error) {
	start := time.Now()
	log := logger.FromContext(ctx, h.app.Logger).With().
		Str("operation", "health_check").
		Logger()

	cfg := h.app.Config.Observability.HealthChecks
	report := &HealthReport{
		Status:      StatusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.app.Config.Primary.Env,
		Checks:      make(map[string]Check),
	}

	probes := map[string]func(context.Context) error{
		"database": func(ctx context.Context) error {
			if h.app.DB != nil {
				return h.app.DB.Pool.Ping(ctx)
			}
			// database.New pings before returning.
			db, err := database.New(h.app.Config, h.app.Logger, h.app.LoggerService)
			if err != nil {
				return err
			}
			return db.Close()
		},
		"redis": func(ctx context.Context) error {
			if h.app.Redis == nil {
				return errNotConnected
			}
			return h.app.Redis.Ping(ctx).Err()
		},
	}

	names := slices.Clone(cfg.Checks)
	slices.Sort(names)

	for _, name := range names {
		probe, ok := probes[name]
		if !ok {
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		checkStart := time.Now()
		err := probe(checkCtx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			report.Checks[name] = Check{
				Status:       StatusUnhealthy,
				ResponseTime: elapsed.String(),
				Error:        err.Error(),
			}
			report.Status = StatusUnhealthy

			log.Error().
				Err(err).
				Str("check", name).
				Dur("response_time", elapsed).
				Msg("health check failed")

			if app := h.app.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]any{
					"check_type":       name,
					"operation":        "health_check",
					"error_type":       name + "_unhealthy",
					"response_time_ms": elapsed.Milliseconds(),
					"error_message":    err.Error(),
				})
			}
			continue
		}

		report.Checks[name] = Check{
			Status:       StatusHealthy,
			ResponseTime: elapsed.String(),
		}

		log.Info().
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check passed")
	}

	if !report.Healthy() {
		log.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
		return report, nil
	}

	log.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")
	return report, nil
}
