package handler

import (
	"github.com/deppfellow/storefront-analytics/internal/app"
	"github.com/deppfellow/storefront-analytics/internal/service"
)

// Handlers groups the command handlers. Report commands call the services
// directly through Handle with Base.
type Handlers struct {
	Base     Handler
	Services *service.Services
	Health   *HealthHandler
	Job      *JobHandler
	Snapshot *SnapshotHandler
	Email    *EmailHandler
	Migrate  *MigrationHandler
	Worker   *WorkerHandler
}

func NewHandlers(a *app.App, services *service.Services, opts Options) *Handlers {
	base := NewHandler(a, opts)

	return &Handlers{
		Base:     base,
		Services: services,
		Health:   NewHealthHandler(base),
		Job:      NewJobHandler(base, services.Job),
		Snapshot: NewSnapshotHandler(base, services.Snapshot),
		Email:    NewEmailHandler(base),
		Migrate:  NewMigrationHandler(base),
		Worker:   NewWorkerHandler(base, services.Job),
	}
}
