package email

import (
	"context"

	"github.com/deppfellow/storefront-analytics/internal/report"
)

// DailyReportSubject is the subject line of the daily sales email.
func DailyReportSubject(rep *report.DailyReport) string {
	return "Daily sales report for " + rep.Date
}

func (c *Client) SendDailyReport(ctx context.Context, to []string, rep *report.DailyReport) error {
	return c.SendEmail(ctx, to, DailyReportSubject(rep), TemplateDailyReport, rep)
}
