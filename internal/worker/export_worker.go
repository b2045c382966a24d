package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/services"
	"budgetbook/internal/sheets"
)

// ExportWorker turns month-saved messages into exports.
type ExportWorker struct {
	loader   sheets.SnapshotLoader
	exporter *services.ExportService
	// tracker is optional; only the SQLite backend keeps export state.
	tracker services.PendingExportStore
}

func NewExportWorker(loader sheets.SnapshotLoader, exporter *services.ExportService, tracker services.PendingExportStore) *ExportWorker {
	return &ExportWorker{loader: loader, exporter: exporter, tracker: tracker}
}

// HandleMonthSaved reloads the announced month and exports it. A month that
// no longer exists is acknowledged without exporting.
func (w *ExportWorker) HandleMonthSaved(ctx context.Context, msg *amqp.MonthSavedMessage) error {
	slog.InfoContext(ctx, "Processing month saved message",
		"user", msg.UserID,
		"month", msg.MonthKey,
		"version", msg.Version)

	doc, err := w.loader.Load(ctx, msg.UserID, msg.MonthKey)
	if errors.Is(err, sheets.ErrNotFound) {
		slog.WarnContext(ctx, "Month vanished before export", "user", msg.UserID, "month", msg.MonthKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load month: %w", err)
	}

	if err := w.exporter.Export(ctx, doc); err != nil {
		w.mark(ctx, msg.UserID, msg.MonthKey, msg.Version, false)
		return err
	}
	w.mark(ctx, msg.UserID, msg.MonthKey, msg.Version, true)
	return nil
}

func (w *ExportWorker) mark(ctx context.Context, user string, month core.MonthKey, version int64, ok bool) {
	if w.tracker == nil || version == 0 {
		return
	}
	var err error
	if ok {
		err = w.tracker.MarkExported(ctx, user, month, version)
	} else {
		err = w.tracker.MarkExportError(ctx, user, month, version)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record export state", "user", user, "month", month, "error", err)
	}
}
