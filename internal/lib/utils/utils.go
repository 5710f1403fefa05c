package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ExportTimeLayout is the timestamp suffix of exported report files.
const ExportTimeLayout = "20060102_150405"

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling JSON: %w", err)
	}
	data = append(data, '\n')

	_, err = w.Write(data)
	return err
}

// TimestampedFilename returns "<name>_<YYYYMMDD_HHMMSS>.json".
func TimestampedFilename(name string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", name, at.Format(ExportTimeLayout))
}

// ExportJSON writes v to dir/<name>_<timestamp>.json, creating dir when
// needed, and returns the file path.
func ExportJSON(dir, name string, at time.Time, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, TimestampedFilename(name, at))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := PrintJSON(f, v); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
