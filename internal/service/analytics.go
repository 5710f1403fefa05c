package service

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/logger"
	"github.com/deppfellow/storefront-analytics/internal/model"
	"github.com/deppfellow/storefront-analytics/internal/report"
	"github.com/deppfellow/storefront-analytics/internal/repository"
	"github.com/deppfellow/storefront-analytics/internal/window"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Clock returns the current time. Reports that look back from "today" read
// it once per call.
type Clock func() time.Time

// AnalyticsService runs the reports. Each call loads a fresh snapshot, so
// calls share no mutable state.
type AnalyticsService struct {
	source      repository.SnapshotSource
	clock       Clock
	location    *time.Location
	loadTimeout time.Duration
	slowLoad    time.Duration
	policy      window.GrowthPolicy
	logger      *zerolog.Logger
}

// AnalyticsOptions are the report defaults taken from configuration.
type AnalyticsOptions struct {
	Location     *time.Location
	LoadTimeout  time.Duration
	GrowthPolicy window.GrowthPolicy

	// SlowLoad is the load duration above which a warning is logged. Zero
	// disables it.
	SlowLoad time.Duration
}

func NewAnalyticsService(source repository.SnapshotSource, clock Clock, opts AnalyticsOptions, logger *zerolog.Logger) *AnalyticsService {
	if clock == nil {
		clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}
	return &AnalyticsService{
		source:      source,
		clock:       clock,
		location:    opts.Location,
		loadTimeout: opts.LoadTimeout,
		slowLoad:    opts.SlowLoad,
		policy:      opts.GrowthPolicy,
		logger:      logger,
	}
}

// Now is the reference time of a report, in the configured timezone.
func (s *AnalyticsService) Now() time.Time {
	return s.clock().In(s.location)
}

// Location is the timezone dates are interpreted in.
func (s *AnalyticsService) Location() *time.Location {
	return s.location
}

func (s *AnalyticsService) snapshot(ctx context.Context) (dataset.Snapshot, error) {
	defer newrelic.FromContext(ctx).StartSegment("snapshot.load").End()

	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return dataset.Snapshot{}, fmt.Errorf("loading snapshot: %w", err)
	}

	elapsed := time.Since(start)
	log := logger.FromContext(ctx, s.logger)
	if s.slowLoad > 0 && elapsed > s.slowLoad {
		log.Warn().
			Dur("load_duration", elapsed).
			Dur("threshold", s.slowLoad).
			Msg("slow snapshot load")
	} else {
		log.Debug().Dur("load_duration", elapsed).Msg("snapshot read")
	}
	return snap.In(s.location), nil
}

// Dataset loads and indexes a fresh snapshot.
func (s *AnalyticsService) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer newrelic.FromContext(ctx).StartSegment("snapshot.index").End()
	ds, err := dataset.Load(snap)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return ds, nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context, req *DashboardRequest) (*report.Dashboard, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildDashboard(ds, report.DateRange(req.DateRange), s.Now())
}

func (s *AnalyticsService) CustomerLifetimeValue(ctx context.Context, req *CLVRequest) ([]report.CLVRow, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildCLVTable(ds, window.CLVQuery{CustomerID: req.CustomerID, Limit: req.Limit})
}

func (s *AnalyticsService) DailyReport(ctx context.Context, date time.Time) (*report.DailyReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildDailyReport(ds, date.In(s.location)), nil
}

func (s *AnalyticsService) Daily(ctx context.Context, req *DailyReportRequest) (*report.DailyReport, error) {
	return s.DailyReport(ctx, req.Date)
}

func (s *AnalyticsService) Retention(ctx context.Context, req *RetentionRequest) (*report.RetentionReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildRetention(ds, req.MonthsBack, s.Now())
}

func (s *AnalyticsService) Segments(ctx context.Context, _ NoParams) (report.SegmentReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildSegments(ds, s.Now()), nil
}

func (s *AnalyticsService) MonthlyTrends(ctx context.Context, req *TrendsRequest) (*report.TrendReport, error) {
	policy := s.policy
	if req.GrowthPolicy != "" {
		p, err := window.ParseGrowthPolicy(req.GrowthPolicy)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildMonthlyTrends(ds, req.Year, policy, s.location)
}

func (s *AnalyticsService) Anomalies(ctx context.Context, _ NoParams) ([]report.AnomalyRow, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildAnomalies(ds, s.Now()), nil
}

func (s *AnalyticsService) ABC(ctx context.Context, _ NoParams) (report.ABCReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildABCReport(ds), nil
}

func (s *AnalyticsService) ProductPerformance(ctx context.Context, _ NoParams) ([]report.ProductPerformance, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildProductPerformance(ds), nil
}

func (s *AnalyticsService) TopCustomers(ctx context.Context, req *TopCustomersRequest) ([]report.CustomerSpend, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.TopCustomers(ds, req.Limit)
}

func (s *AnalyticsService) SalesReport(ctx context.Context, req *SalesReportRequest) (*report.SalesReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildSalesReport(ds, report.SalesReportType(req.ReportType), req.StartDate, req.EndDate)
}

func (s *AnalyticsService) Orders(ctx context.Context, req *OrdersRequest) ([]report.OrderListing, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	var status *model.OrderStatus
	if req.Status != "" {
		st := model.OrderStatus(req.Status)
		status = &st
	}
	return report.OrdersByDateRange(ds, req.StartDate, req.EndDate, status)
}

func (s *AnalyticsService) Reorder(ctx context.Context, _ NoParams) ([]report.ReorderRecommendation, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildReorderRecommendations(ds, s.Now()), nil
}

func (s *AnalyticsService) SlowMovers(ctx context.Context, req *SlowMoversRequest) ([]report.SlowMover, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildSlowMovers(ds, req.Days, s.Now())
}

// Quality inspects the raw snapshot. It never fails on integrity problems:
// reporting them is its purpose.
func (s *AnalyticsService) Quality(ctx context.Context, _ NoParams) (dataset.QualityReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return dataset.QualityReport{}, err
	}
	return dataset.Inspect(snap), nil
}
