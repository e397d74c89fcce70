// Package csvexport writes the enriched projection of disaster records to CSV.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
)

// Writer exports records to a single CSV file, replacing it on every load.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer for path. Parent directories are created on demand.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// LoadBatch writes a header row followed by one row per record, in
// domain.ExportColumns order. Source columns outside the projection are not
// written. The file is written to a temporary sibling and renamed into place
// so readers never see a partial export.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.Record) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := writeRecords(ctx, tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replace %s: %w", w.path, err)
	}

	w.logger.Info("csv export written", "path", w.path, "rows", len(records))
	return nil
}

func writeRecords(ctx context.Context, f *os.File, records []domain.Record) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(domain.ExportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(rec.Project().Fields()); err != nil {
			return fmt.Errorf("write row %d: %w", rec.Row, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
