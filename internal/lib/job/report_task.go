package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskDailyReport = "report:daily"

	// DateLayout is the format of DailyReportPayload.Date.
	DateLayout = "2006-01-02"
)

// DailyReportPayload names the day to report and who receives it.
//
// An empty Date means the day before the task runs, in the configured
// timezone. Empty Recipients means the configured recipients.
type DailyReportPayload struct {
	Date       string   `json:"date,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

// ReportDate resolves the day the payload asks for, relative to now.
func (p DailyReportPayload) ReportDate(now time.Time, loc *time.Location) (time.Time, error) {
	if p.Date == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d-1, 0, 0, 0, 0, loc), nil
	}

	date, err := time.ParseInLocation(DateLayout, p.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid report date %q: %w", p.Date, err)
	}
	return date, nil
}

// NewDailyReportTask builds the task. Delivery is retried at most three
// times.
func NewDailyReportTask(p DailyReportPayload) (*asynq.Task, error) {
	if p.Date != "" {
		if _, err := time.Parse(DateLayout, p.Date); err != nil {
			return nil, fmt.Errorf("invalid report date %q: %w", p.Date, err)
		}
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskDailyReport,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(2*time.Minute),
	), nil
}
