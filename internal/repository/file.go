package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deppfellow/storefront-analytics/internal/dataset"
	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileSnapshotRepository reads a snapshot from a YAML or JSON file. The
// format follows the extension; anything but .json is read as YAML.
type FileSnapshotRepository struct {
	path   string
	logger *zerolog.Logger
}

func NewFileSnapshotRepository(path string, logger *zerolog.Logger) *FileSnapshotRepository {
	return &FileSnapshotRepository{path: path, logger: logger}
}

func (r *FileSnapshotRepository) isJSON() bool {
	return strings.EqualFold(filepath.Ext(r.path), ".json")
}

// LoadSnapshot decodes the whole file. Unknown keys are rejected so a typo
// in a column name does not silently zero a field.
func (r *FileSnapshotRepository) LoadSnapshot(ctx context.Context) (dataset.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Snapshot{}, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataset.Snapshot{}, errs.NewSourceError("snapshot file missing", fmt.Sprintf("snapshot file %s does not exist", r.path))
		}
		return dataset.Snapshot{}, fmt.Errorf("reading snapshot file %s: %w", r.path, err)
	}

	var snap dataset.Snapshot
	if r.isJSON() {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&snap)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&snap)
	}
	if err != nil {
		return dataset.Snapshot{}, errs.NewSourceError("snapshot file invalid", fmt.Sprintf("snapshot file %s is invalid: %v", r.path, err))
	}

	r.logger.Debug().
		Str("source", r.path).
		Int("customers", len(snap.Customers)).
		Int("products", len(snap.Products)).
		Int("orders", len(snap.Orders)).
		Int("order_items", len(snap.OrderItems)).
		Msg("snapshot loaded")

	return snap, nil
}

// SaveSnapshot writes snap to the file, replacing it.
func (r *FileSnapshotRepository) SaveSnapshot(snap dataset.Snapshot) error {
	var data []byte
	var err error
	if r.isJSON() {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(snap); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot file %s: %w", r.path, err)
	}
	return nil
}
