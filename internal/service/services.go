package service

import (
	"github.com/deppfellow/storefront-analytics/internal/app"
	"github.com/deppfellow/storefront-analytics/internal/lib/email"
	"github.com/deppfellow/storefront-analytics/internal/lib/job"
	"github.com/deppfellow/storefront-analytics/internal/repository"
	"github.com/deppfellow/storefront-analytics/internal/window"
)

type Services struct {
	Analytics *AnalyticsService
	Snapshot  *SnapshotService
	Job       *job.JobService
}

// NewService builds the services. clock is the reference time of every
// report; nil means the wall clock.
func NewService(a *app.App, repos *repository.Repositories, clock Clock) (*Services, error) {
	loc, err := a.Config.Analytics.Location()
	if err != nil {
		return nil, err
	}
	policy, err := window.ParseGrowthPolicy(a.Config.Analytics.GrowthPolicy)
	if err != nil {
		return nil, err
	}

	analytics := NewAnalyticsService(repos.Snapshot, clock, AnalyticsOptions{
		Location:     loc,
		LoadTimeout:  a.Config.Analytics.LoadTimeout,
		GrowthPolicy: policy,
		SlowLoad:     a.Config.Observability.Logging.SlowQueryThreshold,
	}, a.Logger)

	if a.Job != nil && a.Config.DeliveryEnabled() {
		a.Job.InitHandlers(analytics, email.NewClient(a.Config.Integration, a.Logger))
	}

	return &Services{
		Analytics: analytics,
		Snapshot:  NewSnapshotService(repos.Database, a.Logger),
		Job:       a.Job,
	}, nil
}
