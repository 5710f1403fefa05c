package handler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailHandler_Preview(t *testing.T) {
	h := NewEmailHandler(newTestHandler(&bytes.Buffer{}, ""))

	preview, err := h.Preview(context.Background(), &service.EmailPreviewRequest{Template: "daily_report"})

	require.NoError(t, err)
	assert.Equal(t, "daily_report", preview.Template)
	assert.Contains(t, preview.HTML, "Atlas")
}

func TestEmailHandler_PreviewUnknownTemplate(t *testing.T) {
	h := NewEmailHandler(newTestHandler(&bytes.Buffer{}, ""))

	_, err := h.Preview(context.Background(), &service.EmailPreviewRequest{Template: "weekly"})

	require.True(t, errors.Is(err, errs.ErrInvalidParameter))
	assert.Equal(t, "template", err.(*errs.Error).Errors[0].Field)
}

func TestJobHandler_WithoutRedis(t *testing.T) {
	h := NewJobHandler(newTestHandler(&bytes.Buffer{}, ""), nil)

	_, err := h.EnqueueDaily(context.Background(), &service.EnqueueDailyRequest{})

	require.Error(t, err)
	assert.Equal(t, "REDIS_NOT_CONFIGURED", err.(*errs.Error).Code)
}

func TestHealthHandler_ReportsMissingRedis(t *testing.T) {
	base := newTestHandler(&bytes.Buffer{}, "")
	base.app.Config.Observability = &config.ObservabilityConfig{
		HealthChecks: config.HealthChecksConfig{Timeout: time.Second, Checks: []string{"redis"}},
	}
	h := NewHealthHandler(base)

	report, err := h.CheckHealth(context.Background(), service.NoParams{})

	require.NoError(t, err)
	assert.False(t, report.Healthy())
	assert.Equal(t, "test", report.Environment)
	assert.Equal(t, StatusUnhealthy, report.Checks["redis"].Status)
	assert.Equal(t, "not connected", report.Checks["redis"].Error)
}
