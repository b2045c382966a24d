package sheets

import (
	"context"
	"errors"

	"budgetbook/internal/core"
)

// ErrNotFound is returned by loaders when no document exists for the
// requested (user, month).
var ErrNotFound = errors.New("document not found")

// Ports for outbound adapters.
type (
	// SnapshotSaver persists one month document, keyed by (user, month).
	SnapshotSaver interface {
		Save(ctx context.Context, user string, doc core.Document) error
	}

	// SnapshotLoader fetches a month document; absent documents return ErrNotFound.
	SnapshotLoader interface {
		Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error)
	}

	// MonthLister returns the months a user has documents for, oldest first.
	MonthLister interface {
		Months(ctx context.Context, user string) ([]core.MonthKey, error)
	}

	// VersionedSaver is implemented by stores that count revisions of a month.
	VersionedSaver interface {
		SaveVersioned(ctx context.Context, user string, doc core.Document) (version int64, err error)
	}

	// DocumentStore is the full persistence contract implemented by every backend.
	DocumentStore interface {
		SnapshotSaver
		SnapshotLoader
		MonthLister
	}

	// RowExporter writes a month's export table (header row first) to an
	// external destination.
	RowExporter interface {
		ExportRows(ctx context.Context, month core.MonthKey, rows [][]string) error
	}
)
