// Package job runs the report delivery worker on asynq.
//
// The worker builds the daily sales report away from the CLI and emails
// it; a scheduler enqueues it every day on the configured cron spec.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/deppfellow/storefront-analytics/internal/report"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// DailyReportBuilder builds the report a task delivers.
type DailyReportBuilder interface {
	DailyReport(ctx context.Context, date time.Time) (*report.DailyReport, error)
}

// Mailer delivers a built report.
type Mailer interface {
	SendDailyReport(ctx context.Context, to []string, rep *report.DailyReport) error
}

type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler

	builder    DailyReportBuilder
	mailer     Mailer
	recipients []string
	location   *time.Location
	cronSpec   string
	now        func() time.Time

	logger *zerolog.Logger
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) (*JobService, error) {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   newAsynqLogger(logger),
	})

	var recipients []string
	if cfg.Integration != nil {
		recipients = cfg.Integration.ReportRecipients
	}

	return &JobService{
		Client:     asynq.NewClient(redisOpt),
		server:     server,
		scheduler:  scheduler,
		recipients: recipients,
		location:   loc,
		cronSpec:   cfg.Analytics.DailyReportCron,
		now:        time.Now,
		logger:     logger,
	}, nil
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDailyReport, j.handleDailyReportTask)
	return mux
}

// Run starts the scheduler and processes tasks until the process receives
// SIGTERM or SIGINT.
func (j *JobService) Run() error {
	if j.builder == nil || j.mailer == nil {
		return fmt.Errorf("job handlers not initialized")
	}

	task, err := NewDailyReportTask(DailyReportPayload{})
	if err != nil {
		return err
	}
	entryID, err := j.scheduler.Register(j.cronSpec, task)
	if err != nil {
		return fmt.Errorf("failed to schedule daily report: %w", err)
	}
	if err := j.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer j.scheduler.Shutdown()

	j.logger.Info().
		Str("entry_id", entryID).
		Str("cron", j.cronSpec).
		Str("location", j.location.String()).
		Msg("starting background job server")

	return j.server.Run(j.mux())
}

// Enqueue submits a daily report task for date.
func (j *JobService) Enqueue(ctx context.Context, p DailyReportPayload) (*asynq.TaskInfo, error) {
	task, err := NewDailyReportTask(p)
	if err != nil {
		return nil, err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", TaskDailyReport, err)
	}

	j.logger.Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("date", p.Date).
		Msg("daily report enqueued")
	return info, nil
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	j.Client.Close()
}

// asynqLogger routes asynq's own logging into zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) asynqLogger {
	return asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
