package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"

	_ "modernc.org/sqlite"
)

// PendingExport is a saved month whose latest version has not been exported.
type PendingExport struct {
	UserID   string
	Month    core.MonthKey
	Version  int64
	Document core.Document
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ sheets.DocumentStore  = (*SQLiteRepository)(nil)
	_ sheets.VersionedSaver = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements sheets.SnapshotSaver
func (r *SQLiteRepository) Save(ctx context.Context, user string, doc core.Document) error {
	_, err := r.SaveVersioned(ctx, user, doc)
	return err
}

// SaveVersioned upserts the document and returns its new version. Every
// save marks the month for export again.
func (r *SQLiteRepository) SaveVersioned(ctx context.Context, user string, doc core.Document) (int64, error) {
	if !doc.MonthKey.Valid() {
		return 0, core.ErrInvalidMonthKey
	}
	data, err := doc.Encode()
	if err != nil {
		return 0, fmt.Errorf("encode document: %w", err)
	}
	version, err := r.queries.UpsertSnapshot(ctx, UpsertSnapshotParams{
		UserID:   user,
		MonthKey: doc.MonthKey.String(),
		Document: string(data),
	})
	if err != nil {
		return 0, fmt.Errorf("upsert snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"user", user,
		"month", doc.MonthKey,
		"version", version,
		"bytes", len(data))
	return version, nil
}

// Load implements sheets.SnapshotLoader
func (r *SQLiteRepository) Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error) {
	row, err := r.queries.GetSnapshot(ctx, user, month.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, sheets.ErrNotFound
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("get snapshot: %w", err)
	}
	return core.DecodeDocument([]byte(row.Document))
}

// Months implements sheets.MonthLister
func (r *SQLiteRepository) Months(ctx context.Context, user string) ([]core.MonthKey, error) {
	keys, err := r.queries.ListMonthKeys(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	out := make([]core.MonthKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, core.MonthKey(k))
	}
	return out, nil
}

// PendingExports returns up to limit months waiting for export, oldest change first.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.queries.ListPendingExports(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	out := make([]PendingExport, 0, len(rows))
	for _, row := range rows {
		doc, err := core.DecodeDocument([]byte(row.Document))
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable snapshot",
				"user", row.UserID,
				"month", row.MonthKey,
				"error", err)
			continue
		}
		out = append(out, PendingExport{
			UserID:   row.UserID,
			Month:    core.MonthKey(row.MonthKey),
			Version:  row.Version,
			Document: doc,
		})
	}
	return out, nil
}

// MarkExported records a successful export of version. A newer save in the
// meantime keeps the month pending.
func (r *SQLiteRepository) MarkExported(ctx context.Context, user string, month core.MonthKey, version int64) error {
	if err := r.queries.MarkExported(ctx, user, month.String(), version); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, user string, month core.MonthKey, version int64) error {
	if err := r.queries.MarkExportError(ctx, user, month.String(), version); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}
