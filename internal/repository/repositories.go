package repository

import (
	"github.com/deppfellow/storefront-analytics/internal/app"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	// Snapshot is the source reports read from: the snapshot file when one
	// is configured, PostgreSQL otherwise.
	Snapshot SnapshotSource

	// Database is nil when no database is connected.
	Database *SnapshotRepository
}

// NewRepositories picks the snapshot source for a.
func NewRepositories(a *app.App) *Repositories {
	repos := &Repositories{}

	if a.DB != nil {
		repos.Database = NewSnapshotRepository(a.DB.Pool, a.Logger)
		repos.Snapshot = repos.Database
	}

	if path := a.Config.Analytics.SnapshotFile; path != "" {
		repos.Snapshot = NewFileSnapshotRepository(path, a.Logger)
	}

	return repos
}
