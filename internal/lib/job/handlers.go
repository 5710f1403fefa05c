package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/hibiken/asynq"
)

// InitHandlers wires the report builder and the mailer the task handler
// uses.
func (j *JobService) InitHandlers(builder DailyReportBuilder, mailer Mailer) {
	j.builder = builder
	j.mailer = mailer
}

func (j *JobService) handleDailyReportTask(ctx context.Context, t *asynq.Task) error {
	var p DailyReportPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal daily report payload: %w: %w", err, asynq.SkipRetry)
	}

	date, err := p.ReportDate(j.now(), j.location)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	to := p.Recipients
	if len(to) == 0 {
		to = j.recipients
	}
	if len(to) == 0 {
		return fmt.Errorf("daily report has no recipients: %w", asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskDailyReport).
		Str("date", date.Format(DateLayout)).
		Int("recipients", len(to)).
		Logger()

	logger.Info().Msg("processing daily report task")

	rep, err := j.builder.DailyReport(ctx, date)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build daily report")
		// A broken snapshot will not fix itself between retries.
		if errors.Is(err, errs.ErrIntegrity) || errors.Is(err, errs.ErrInvalidParameter) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if err := j.mailer.SendDailyReport(ctx, to, rep); err != nil {
		logger.Error().Err(err).Msg("failed to send daily report")
		return err
	}

	logger.Info().
		Int("orders", rep.Summary.TotalOrders).
		Float64("sales", rep.Summary.TotalSales).
		Msg("daily report sent")

	return nil
}
