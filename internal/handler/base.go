package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/app"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/lib/utils"
	"github.com/deppfellow/storefront-analytics/internal/logger"
	"github.com/deppfellow/storefront-analytics/internal/validation"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler holds what every command shares: the app container and where
// results go.
type Handler struct {
	app       *app.App
	out       io.Writer
	exportDir string
	now       func() time.Time
}

// Options selects the output of a Handler. An empty ExportDir prints the
// envelope to Out.
type Options struct {
	Out       io.Writer
	ExportDir string
}

func NewHandler(a *app.App, opts Options) Handler {
	return Handler{
		app:       a,
		out:       opts.Out,
		exportDir: opts.ExportDir,
		now:       time.Now,
	}
}

// HandlerFunc is a typed command body. It receives a validated request.
type HandlerFunc[Req validation.Validatable, Res any] func(ctx context.Context, req Req) (Res, error)

// Envelope is the output of every command.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      any         `json:"data"`
	Error     *errs.Error `json:"error"`
	Timestamp string      `json:"timestamp"`
}

// NewEnvelope wraps a result, or the error that replaced it. Errors that are
// not *errs.Error are reported as a generic internal error: their detail
// belongs in the logs.
func NewEnvelope(data any, err error, at time.Time) Envelope {
	env := Envelope{Timestamp: at.Format(time.RFC3339)}
	if err == nil {
		env.Success = true
		env.Data = data
		return env
	}

	var appErr *errs.Error
	if !errors.As(err, &appErr) {
		appErr = errs.NewInternalError()
	}
	env.Error = appErr
	return env
}

// ResponseHandler writes a finished envelope.
type ResponseHandler interface {
	Handle(name string, env Envelope) error

	// GetOperation names the handler kind in logs.
	GetOperation() string

	AddAttributes(txn *newrelic.Transaction)
}

// JSONResponseHandler prints the envelope as JSON.
type JSONResponseHandler struct {
	out io.Writer
}

func (h JSONResponseHandler) Handle(_ string, env Envelope) error {
	return utils.PrintJSON(h.out, env)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction) {}

// FileResponseHandler exports the envelope to a timestamped file in dir and
// prints the file path.
type FileResponseHandler struct {
	out io.Writer
	dir string
	at  time.Time
}

func (h FileResponseHandler) Handle(name string, env Envelope) error {
	path, err := utils.ExportJSON(h.dir, name, h.at, env)
	if err != nil {
		return err
	}
	_, err = io.WriteString(h.out, path+"\n")
	return err
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction) {
	if txn != nil {
		txn.AddAttribute("export.dir", h.dir)
	}
}

func (h Handler) responseHandler(at time.Time) ResponseHandler {
	if h.exportDir != "" {
		return FileResponseHandler{out: h.out, dir: h.exportDir, at: at}
	}
	return JSONResponseHandler{out: h.out}
}

// handleRequest is the pipeline every command runs through:
//
// - a New Relic transaction and a run-scoped logger
// - request binding and validation
// - execution with timing
// - the envelope, written by the response handler
//
// The envelope is written on failure too. The returned error is the
// command's failure, for the exit status.
func handleRequest[Req validation.Validatable](
	ctx context.Context,
	h Handler,
	name string,
	req Req,
	bind func() error,
	handler func(ctx context.Context, req Req) (any, error),
) error {
	start := h.now()
	responseHandler := h.responseHandler(start)

	txn := h.app.LoggerService.GetApplication().StartTransaction("analytics " + name)
	defer txn.End()
	if txn != nil {
		ctx = newrelic.NewContext(ctx, txn)
		txn.AddAttribute("command.name", name)
		responseHandler.AddAttributes(txn)
	}

	runID := logger.NewRunID()
	ctx, log := logger.EnhanceContext(ctx, h.app.Logger, runID)
	runLogger := log.With().
		Str("operation", responseHandler.GetOperation()).
		Str("command", name).
		Logger()
	if txn != nil {
		txn.AddAttribute("run.id", runID)
	}

	runLogger.Info().Msg("handling command")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()
	if err := validation.BindAndValidate(req, bind); err != nil {
		validationDuration := time.Since(validationStart)

		runLogger.Error().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return h.respond(responseHandler, name, nil, err)
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	runLogger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := handler(ctx, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		runLogger.Error().
			Err(err).
			Str("kind", string(errs.KindOf(err))).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("command execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}

		return h.respond(responseHandler, name, nil, err)
	}

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	runLogger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("command completed successfully")

	return h.respond(responseHandler, name, result, nil)
}

func (h Handler) respond(rh ResponseHandler, name string, result any, cause error) error {
	if err := rh.Handle(name, NewEnvelope(result, cause, h.now())); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Handle runs a typed command body through the shared pipeline. bind, when
// not nil, fills req from parsed flags before validation.
//
// Usage pattern (typical):
//
//	handler.Handle(ctx, h, "dashboard", svc.Dashboard, &service.DashboardRequest{...}, nil)
func Handle[Req validation.Validatable, Res any](
	ctx context.Context,
	h Handler,
	name string,
	handler HandlerFunc[Req, Res],
	req Req,
	bind func() error,
) error {
	return handleRequest(ctx, h, name, req, bind, func(ctx context.Context, req Req) (any, error) {
		return handler(ctx, req)
	})
}
