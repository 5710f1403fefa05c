package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// RunIDKey is the log field that correlates every line of one command run.
const RunIDKey = "run_id"

// NewRunID returns a fresh run id.
func NewRunID() string {
	return uuid.New().String()
}

// EnhanceContext derives the run-scoped logger from base, tagged with runID
// and the transaction's trace ids, and stores it in ctx.
func EnhanceContext(ctx context.Context, base *zerolog.Logger, runID string) (context.Context, *zerolog.Logger) {
	runLogger := base.With().Str(RunIDKey, runID).Logger()

	if txn := newrelic.FromContext(ctx); txn != nil {
		runLogger = WithTraceContext(runLogger, txn)
	}

	ctx = runLogger.WithContext(ctx)
	return ctx, zerolog.Ctx(ctx)
}

// FromContext returns the logger EnhanceContext stored in ctx, or fallback
// when there is none.
func FromContext(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	if fallback != nil {
		return fallback
	}
	nop := zerolog.Nop()
	return &nop
}
