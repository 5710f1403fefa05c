package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/app"
	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/service"
	"github.com/deppfellow/storefront-analytics/internal/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 12, 9, 30, 0, 0, time.UTC)

type limitRequest struct {
	Limit int `param:"limit" validate:"min=0"`
}

func (r *limitRequest) Validate() error { return validation.Struct(r) }

type decoded struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *errs.Error     `json:"error"`
	Timestamp string          `json:"timestamp"`
}

func newTestHandler(out *bytes.Buffer, exportDir string) Handler {
	log := zerolog.Nop()
	h := NewHandler(&app.App{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &log,
	}, Options{Out: out, ExportDir: exportDir})
	h.now = func() time.Time { return fixedNow }
	return h
}

func decode(t *testing.T, data []byte) decoded {
	t.Helper()
	var env decoded
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHandle_SuccessEnvelope(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(&out, "")

	err := Handle(context.Background(), h, "top_customers",
		func(_ context.Context, req *limitRequest) ([]int, error) {
			return []int{req.Limit, 2}, nil
		}, &limitRequest{Limit: 5}, nil)
	require.NoError(t, err)

	env := decode(t, out.Bytes())
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.JSONEq(t, `[5,2]`, string(env.Data))
	assert.Equal(t, "2024-06-12T09:30:00Z", env.Timestamp)
}

func TestHandle_ValidationFailureSkipsHandler(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(&out, "")
	called := false

	err := Handle(context.Background(), h, "top_customers",
		func(_ context.Context, _ *limitRequest) ([]int, error) {
			called = true
			return nil, nil
		}, &limitRequest{Limit: -1}, nil)

	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, errors.Is(err, errs.ErrInvalidParameter))

	env := decode(t, out.Bytes())
	assert.False(t, env.Success)
	assert.JSONEq(t, `null`, string(env.Data))
	require.NotNil(t, env.Error)
	assert.Equal(t, errs.KindInvalidParameter, env.Error.Kind)
	assert.Equal(t, []errs.FieldError{{Field: "limit", Error: "must be at least 0"}}, env.Error.Errors)
}

func TestHandle_BindErrorIsReported(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(&out, "")
	bindErr := errs.NewInvalidParameterError("Validation failed", []errs.FieldError{{Field: "date", Error: "must be a date in YYYY-MM-DD format"}})

	err := Handle(context.Background(), h, "daily_report",
		func(_ context.Context, _ *limitRequest) (int, error) { return 0, nil },
		&limitRequest{}, func() error { return bindErr })

	require.Error(t, err)
	env := decode(t, out.Bytes())
	assert.Equal(t, "date", env.Error.Errors[0].Field)
}

func TestHandle_DomainErrorKeepsCode(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(&out, "")
	code := "CUSTOMER_NOT_FOUND"

	err := Handle(context.Background(), h, "clv",
		func(_ context.Context, _ service.NoParams) (int, error) {
			return 0, errs.NewNotFoundError("customer 99 not found", &code)
		}, service.NoParams{}, nil)

	require.Error(t, err)
	env := decode(t, out.Bytes())
	assert.Equal(t, errs.KindNotFound, env.Error.Kind)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", env.Error.Code)
}

func TestHandle_UnknownErrorIsGeneric(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(&out, "")

	err := Handle(context.Background(), h, "abc_analysis",
		func(_ context.Context, _ service.NoParams) (int, error) {
			return 0, errors.New("dial tcp 10.0.0.1:5432: connection refused")
		}, service.NoParams{}, nil)

	require.Error(t, err)
	env := decode(t, out.Bytes())
	assert.Equal(t, errs.KindInternal, env.Error.Kind)
	assert.Equal(t, "Internal error", env.Error.Message)
	assert.NotContains(t, out.String(), "10.0.0.1")
}

func TestHandle_ExportsToFile(t *testing.T) {
	var out bytes.Buffer
	dir := t.TempDir()
	h := newTestHandler(&out, dir)

	err := Handle(context.Background(), h, "segments",
		func(_ context.Context, _ service.NoParams) (map[string]int, error) {
			return map[string]int{"vip": 1}, nil
		}, service.NoParams{}, nil)
	require.NoError(t, err)

	path := strings.TrimSpace(out.String())
	assert.True(t, strings.HasSuffix(path, "segments_20240612_093000.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	env := decode(t, data)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"vip":1}`, string(env.Data))
}

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(nil, fmtWrap(errs.NewInvalidParameterError("bad", nil)), fixedNow)

	assert.False(t, env.Success)
	assert.Equal(t, errs.KindInvalidParameter, env.Error.Kind)
	assert.Equal(t, "2024-06-12T09:30:00Z", env.Timestamp)
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("loading snapshot"), err)
}
