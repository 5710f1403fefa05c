// Package repository reads snapshots from their sources.
//
// It holds the SQL that materializes the five storefront tables and the
// decoder for snapshot files, so services only ever see a dataset.Snapshot.
package repository

import (
	"context"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
)

// SnapshotSource produces a complete snapshot of the storefront tables.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (dataset.Snapshot, error)
}
