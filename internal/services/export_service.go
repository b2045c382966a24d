package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/core"
	"budgetbook/internal/export"
	"budgetbook/internal/sheets"
)

// ExportService renders a month to rows and hands them to every configured
// destination.
type ExportService struct {
	exporters []sheets.RowExporter
}

func NewExportService(exporters ...sheets.RowExporter) *ExportService {
	var out []sheets.RowExporter
	for _, e := range exporters {
		if e != nil {
			out = append(out, e)
		}
	}
	return &ExportService{exporters: out}
}

// Enabled reports whether at least one destination is configured.
func (s *ExportService) Enabled() bool {
	return len(s.exporters) > 0
}

// Export runs all destinations concurrently and returns the first error.
func (s *ExportService) Export(ctx context.Context, doc core.Document) error {
	if !s.Enabled() {
		return nil
	}
	rows := export.Rows(doc.Snapshot())

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range s.exporters {
		e := e
		g.Go(func() error {
			if err := e.ExportRows(gctx, doc.MonthKey, rows); err != nil {
				return fmt.Errorf("export %s: %w", doc.MonthKey, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Month exported", "month", doc.MonthKey, "rows", len(rows)-1, "destinations", len(s.exporters))
	return nil
}
