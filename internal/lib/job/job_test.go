package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/report"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct {
	dates []time.Time
	err   error
}

func (f *fakeBuilder) DailyReport(_ context.Context, date time.Time) (*report.DailyReport, error) {
	f.dates = append(f.dates, date)
	if f.err != nil {
		return nil, f.err
	}
	return &report.DailyReport{Date: date.Format(DateLayout)}, nil
}

type fakeMailer struct {
	to   [][]string
	sent []*report.DailyReport
	err  error
}

func (f *fakeMailer) SendDailyReport(_ context.Context, to []string, rep *report.DailyReport) error {
	f.to = append(f.to, to)
	f.sent = append(f.sent, rep)
	return f.err
}

func newTestService(builder DailyReportBuilder, mailer Mailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{
		builder:    builder,
		mailer:     mailer,
		recipients: []string{"ops@example.com"},
		location:   time.UTC,
		now:        func() time.Time { return time.Date(2024, time.June, 15, 6, 0, 0, 0, time.UTC) },
		logger:     &logger,
	}
}

func TestNewDailyReportTask_Payload(t *testing.T) {
	task, err := NewDailyReportTask(DailyReportPayload{Date: "2024-06-12", Recipients: []string{"a@example.com"}})
	require.NoError(t, err)

	assert.Equal(t, TaskDailyReport, task.Type())
	assert.JSONEq(t, `{"date":"2024-06-12","recipients":["a@example.com"]}`, string(task.Payload()))

	_, err = NewDailyReportTask(DailyReportPayload{Date: "12/06/2024"})
	assert.Error(t, err)
}

func TestDailyReportPayload_ReportDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2024, time.June, 14, 23, 30, 0, 0, time.UTC)

	got, err := DailyReportPayload{}.ReportDate(now, berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 14, 0, 0, 0, 0, berlin), got, "yesterday in Berlin, where it is already the 15th")

	got, err = DailyReportPayload{Date: "2024-03-01"}.ReportDate(now, berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, berlin), got)
}

func TestHandleDailyReportTask_DefaultsToYesterdayAndConfiguredRecipients(t *testing.T) {
	builder, mailer := &fakeBuilder{}, &fakeMailer{}
	task, err := NewDailyReportTask(DailyReportPayload{})
	require.NoError(t, err)

	require.NoError(t, newTestService(builder, mailer).handleDailyReportTask(context.Background(), task))

	require.Len(t, builder.dates, 1)
	assert.Equal(t, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), builder.dates[0])
	assert.Equal(t, [][]string{{"ops@example.com"}}, mailer.to)
	assert.Equal(t, "2024-06-14", mailer.sent[0].Date)
}

func TestHandleDailyReportTask_MailFailureIsRetried(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("resend down")}
	task, err := NewDailyReportTask(DailyReportPayload{Date: "2024-06-12"})
	require.NoError(t, err)

	err = newTestService(&fakeBuilder{}, mailer).handleDailyReportTask(context.Background(), task)

	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleDailyReportTask_SkipsRetryOnBrokenSnapshot(t *testing.T) {
	builder := &fakeBuilder{err: errs.NewDuplicateKeyError("orders", 3)}
	task, err := NewDailyReportTask(DailyReportPayload{Date: "2024-06-12"})
	require.NoError(t, err)

	err = newTestService(builder, &fakeMailer{}).handleDailyReportTask(context.Background(), task)

	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.True(t, errors.Is(err, errs.ErrIntegrity))
}

func TestHandleDailyReportTask_RejectsBadPayload(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"date": 12})
	require.NoError(t, err)

	err = newTestService(&fakeBuilder{}, &fakeMailer{}).handleDailyReportTask(context.Background(), asynq.NewTask(TaskDailyReport, payload))

	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
