package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/storefront-analytics/internal/database"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/lib/email"
	"github.com/deppfellow/storefront-analytics/internal/lib/job"
	"github.com/deppfellow/storefront-analytics/internal/logger"
	"github.com/deppfellow/storefront-analytics/internal/service"
)

var errNotConnected = errors.New("not connected")

// JobHandler submits background tasks.
type JobHandler struct {
	Handler
	jobs *job.JobService
}

func NewJobHandler(h Handler, jobs *job.JobService) *JobHandler {
	return &JobHandler{Handler: h, jobs: jobs}
}

// EnqueueResult identifies a submitted task.
type EnqueueResult struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
	Type   string `json:"type"`
	Date   string `json:"date,omitempty"`
}

func (h *JobHandler) EnqueueDaily(ctx context.Context, req *service.EnqueueDailyRequest) (*EnqueueResult, error) {
	if h.jobs == nil {
		return nil, errs.NewSourceError("redis not configured", "The job queue needs Redis")
	}

	info, err := h.jobs.Enqueue(ctx, job.DailyReportPayload{
		Date:       req.Date,
		Recipients: req.Recipients,
	})
	if err != nil {
		return nil, err
	}

	return &EnqueueResult{
		TaskID: info.ID,
		Queue:  info.Queue,
		Type:   info.Type,
		Date:   req.Date,
	}, nil
}

// SnapshotHandler moves snapshots between PostgreSQL and files.
type SnapshotHandler struct {
	Handler
	snapshots *service.SnapshotService
}

func NewSnapshotHandler(h Handler, snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{Handler: h, snapshots: snapshots}
}

func (h *SnapshotHandler) Seed(ctx context.Context, req *service.SnapshotFileRequest) (*service.SnapshotSummary, error) {
	return h.snapshots.Seed(ctx, req.Path)
}

func (h *SnapshotHandler) Export(ctx context.Context, req *service.SnapshotFileRequest) (*service.SnapshotSummary, error) {
	return h.snapshots.Export(ctx, req.Path)
}

// EmailHandler renders email templates for review.
type EmailHandler struct {
	Handler
}

func NewEmailHandler(h Handler) *EmailHandler {
	return &EmailHandler{Handler: h}
}

// EmailPreview is a rendered template.
type EmailPreview struct {
	Template string `json:"template"`
	HTML     string `json:"html"`
}

func (h *EmailHandler) Preview(_ context.Context, req *service.EmailPreviewRequest) (*EmailPreview, error) {
	name := email.Template(req.Template)
	data, ok := email.PreviewData[name]
	if !ok {
		known := make([]string, 0, len(email.PreviewData))
		for t := range email.PreviewData {
			known = append(known, string(t))
		}
		return nil, errs.NewInvalidParameterError("Validation failed", []errs.FieldError{{
			Field: "template",
			Error: fmt.Sprintf("must be one of: %s", strings.Join(known, " ")),
		}})
	}

	html, err := email.Render(name, data)
	if err != nil {
		return nil, err
	}
	return &EmailPreview{Template: req.Template, HTML: html}, nil
}

// MigrationHandler applies the embedded schema migrations.
type MigrationHandler struct {
	Handler
}

func NewMigrationHandler(h Handler) *MigrationHandler {
	return &MigrationHandler{Handler: h}
}

func (h *MigrationHandler) Migrate(ctx context.Context, _ service.NoParams) (*database.MigrationResult, error) {
	result, err := database.Migrate(ctx, logger.FromContext(ctx, h.app.Logger), h.app.Config)
	if err != nil {
		return nil, errs.NewSourceError("migration failed", err.Error())
	}
	return result, nil
}

// WorkerHandler runs the delivery worker until it is stopped.
type WorkerHandler struct {
	Handler
	jobs *job.JobService
}

func NewWorkerHandler(h Handler, jobs *job.JobService) *WorkerHandler {
	return &WorkerHandler{Handler: h, jobs: jobs}
}

// WorkerResult is printed when the worker exits cleanly.
type WorkerResult struct {
	Status string `json:"status"`
}

func (h *WorkerHandler) Run(_ context.Context, _ service.NoParams) (*WorkerResult, error) {
	if h.jobs == nil {
		return nil, errs.NewSourceError("redis not configured", "The worker needs Redis")
	}
	if !h.app.Config.DeliveryEnabled() {
		return nil, errs.NewSourceError("delivery not configured", "The worker needs a Resend API key and report recipients")
	}
	if err := h.jobs.Run(); err != nil {
		return nil, err
	}
	return &WorkerResult{Status: "stopped"}, nil
}
