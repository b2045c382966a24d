package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type MonthSnapshot struct {
	UserID       string
	MonthKey     string
	Document     string
	Version      int64
	ExportStatus string
}

const upsertSnapshot = `
INSERT INTO month_snapshots (user_id, month_key, document)
VALUES (?, ?, ?)
ON CONFLICT (user_id, month_key) DO UPDATE SET
    document = excluded.document,
    version = month_snapshots.version + 1,
    export_status = 'pending',
    updated_at = CURRENT_TIMESTAMP
RETURNING version`

type UpsertSnapshotParams struct {
	UserID   string
	MonthKey string
	Document string
}

func (q *Queries) UpsertSnapshot(ctx context.Context, arg UpsertSnapshotParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertSnapshot, arg.UserID, arg.MonthKey, arg.Document)
	var version int64
	err := row.Scan(&version)
	return version, err
}

const getSnapshot = `
SELECT user_id, month_key, document, version, export_status
FROM month_snapshots
WHERE user_id = ? AND month_key = ?`

func (q *Queries) GetSnapshot(ctx context.Context, userID, monthKey string) (MonthSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, userID, monthKey)
	var i MonthSnapshot
	err := row.Scan(&i.UserID, &i.MonthKey, &i.Document, &i.Version, &i.ExportStatus)
	return i, err
}

const listMonthKeys = `
SELECT month_key FROM month_snapshots
WHERE user_id = ?
ORDER BY month_key`

func (q *Queries) ListMonthKeys(ctx context.Context, userID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listMonthKeys, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPendingExports = `
SELECT user_id, month_key, document, version, export_status
FROM month_snapshots
WHERE export_status IN ('pending', 'error')
ORDER BY updated_at
LIMIT ?`

func (q *Queries) ListPendingExports(ctx context.Context, limit int64) ([]MonthSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listPendingExports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthSnapshot
	for rows.Next() {
		var i MonthSnapshot
		if err := rows.Scan(&i.UserID, &i.MonthKey, &i.Document, &i.Version, &i.ExportStatus); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markExported = `
UPDATE month_snapshots
SET export_status = 'exported', exported_at = CURRENT_TIMESTAMP
WHERE user_id = ? AND month_key = ? AND version = ?`

func (q *Queries) MarkExported(ctx context.Context, userID, monthKey string, version int64) error {
	_, err := q.db.ExecContext(ctx, markExported, userID, monthKey, version)
	return err
}

const markExportError = `
UPDATE month_snapshots
SET export_status = 'error'
WHERE user_id = ? AND month_key = ? AND version = ?`

func (q *Queries) MarkExportError(ctx context.Context, userID, monthKey string, version int64) error {
	_, err := q.db.ExecContext(ctx, markExportError, userID, monthKey, version)
	return err
}
