package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/repository"
	"github.com/rs/zerolog"
)

// SnapshotService moves snapshots between the database and files.
type SnapshotService struct {
	db     *repository.SnapshotRepository
	logger *zerolog.Logger
}

func NewSnapshotService(db *repository.SnapshotRepository, logger *zerolog.Logger) *SnapshotService {
	return &SnapshotService{db: db, logger: logger}
}

// SnapshotSummary counts the rows a snapshot operation moved.
type SnapshotSummary struct {
	Path       string `json:"path"`
	Customers  int    `json:"customers"`
	Categories int    `json:"categories"`
	Products   int    `json:"products"`
	Orders     int    `json:"orders"`
	OrderItems int    `json:"order_items"`
}

func summarize(path string, snap dataset.Snapshot) *SnapshotSummary {
	return &SnapshotSummary{
		Path:       path,
		Customers:  len(snap.Customers),
		Categories: len(snap.Categories),
		Products:   len(snap.Products),
		Orders:     len(snap.Orders),
		OrderItems: len(snap.OrderItems),
	}
}

func (s *SnapshotService) requireDB() error {
	if s.db == nil {
		return errs.NewSourceError("database not configured", "This command needs the PostgreSQL snapshot source")
	}
	return nil
}

// Seed replaces the database contents with the snapshot file at path. The
// file must load cleanly first, so an inconsistent file never reaches the
// database.
func (s *SnapshotService) Seed(ctx context.Context, path string) (*SnapshotSummary, error) {
	if err := s.requireDB(); err != nil {
		return nil, err
	}

	snap, err := repository.NewFileSnapshotRepository(path, s.logger).LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := dataset.Load(snap); err != nil {
		return nil, fmt.Errorf("checking snapshot file: %w", err)
	}

	if err := s.db.ReplaceSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return summarize(path, snap), nil
}

// Export writes the database contents to a snapshot file at path.
func (s *SnapshotService) Export(ctx context.Context, path string) (*SnapshotSummary, error) {
	if err := s.requireDB(); err != nil {
		return nil, err
	}

	snap, err := s.db.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := repository.NewFileSnapshotRepository(path, s.logger).SaveSnapshot(snap); err != nil {
		return nil, err
	}
	return summarize(path, snap), nil
}
