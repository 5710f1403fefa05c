package service

import (
	"time"

	"github.com/deppfellow/storefront-analytics/internal/validation"
)

// Defaults applied by the CLI flags.
const (
	DefaultDashboardRange = "last_30_days"
	DefaultMonthsBack     = 6
	DefaultCLVLimit       = 100
	DefaultSalesReport    = "summary"
)

// NoParams is the request of reports that take no parameters.
type NoParams struct{}

func (NoParams) Validate() error { return nil }

type DashboardRequest struct {
	DateRange string `param:"date_range" validate:"required,oneof=last_7_days last_30_days last_90_days last_365_days"`
}

func (r *DashboardRequest) Validate() error { return validation.Struct(r) }

type CLVRequest struct {
	CustomerID *int64 `param:"customer_id" validate:"omitempty,gt=0"`
	Limit      int    `param:"limit" validate:"min=0"`
}

func (r *CLVRequest) Validate() error { return validation.Struct(r) }

type DailyReportRequest struct {
	Date time.Time `param:"date" validate:"required"`
}

func (r *DailyReportRequest) Validate() error { return validation.Struct(r) }

type RetentionRequest struct {
	MonthsBack int `param:"months_back" validate:"min=0"`
}

func (r *RetentionRequest) Validate() error { return validation.Struct(r) }

type TrendsRequest struct {
	Year         int    `param:"year" validate:"required,min=1970,max=9999"`
	GrowthPolicy string `param:"growth_policy" validate:"omitempty,oneof=calendar_adjacent previous_present"`
}

func (r *TrendsRequest) Validate() error { return validation.Struct(r) }

type TopCustomersRequest struct {
	Limit int `param:"limit" validate:"min=0"`
}

func (r *TopCustomersRequest) Validate() error { return validation.Struct(r) }

type SalesReportRequest struct {
	ReportType string    `param:"report_type" validate:"required,oneof=summary detailed"`
	StartDate  time.Time `param:"start_date" validate:"required"`
	EndDate    time.Time `param:"end_date" validate:"required,gtefield=StartDate"`
}

func (r *SalesReportRequest) Validate() error { return validation.Struct(r) }

type OrdersRequest struct {
	StartDate time.Time `param:"start_date" validate:"required"`
	EndDate   time.Time `param:"end_date" validate:"required,gtefield=StartDate"`
	Status    string    `param:"status" validate:"omitempty,oneof=confirmed shipped delivered cancelled"`
}

func (r *OrdersRequest) Validate() error { return validation.Struct(r) }

type SlowMoversRequest struct {
	Days int `param:"days" validate:"min=0"`
}

func (r *SlowMoversRequest) Validate() error { return validation.Struct(r) }

type EnqueueDailyRequest struct {
	Date       string   `param:"date" validate:"omitempty,datetime=2006-01-02"`
	Recipients []string `param:"to" validate:"dive,email"`
}

func (r *EnqueueDailyRequest) Validate() error { return validation.Struct(r) }

type SnapshotFileRequest struct {
	Path string `param:"file" validate:"required"`
}

func (r *SnapshotFileRequest) Validate() error { return validation.Struct(r) }

type EmailPreviewRequest struct {
	Template string `param:"template" validate:"required"`
}

func (r *EmailPreviewRequest) Validate() error { return validation.Struct(r) }
