package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/sheets"
)

// Loader hydrates the ledger store from persisted documents.
type Loader struct {
	store  *ledger.Store
	source sheets.SnapshotLoader
	user   string
	saver  *Saver
}

// NewLoader builds a loader. saver may be nil; when set, loaded documents are
// recorded as already saved.
func NewLoader(store *ledger.Store, source sheets.SnapshotLoader, user string, saver *Saver) *Loader {
	return &Loader{store: store, source: source, user: user, saver: saver}
}

// Load fetches month into the store. found is false when no document exists,
// leaving the month in the "needs setup" state. A month that already has
// local data is not overwritten.
func (l *Loader) Load(ctx context.Context, month core.MonthKey) (found bool, err error) {
	if l.store.HasData(month) {
		return true, nil
	}
	doc, err := l.source.Load(ctx, l.user, month)
	if errors.Is(err, sheets.ErrNotFound) {
		slog.DebugContext(ctx, "No remote snapshot", "month", month)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", month, err)
	}

	snap := doc.Snapshot()
	l.store.Load(month, snap)
	if l.saver != nil {
		if data, err := core.NewDocument(month, snap).Encode(); err == nil {
			l.saver.MarkSaved(month, data)
		}
	}
	slog.InfoContext(ctx, "Snapshot loaded", "month", month, "categories", snap.CategoryCount())
	return true, nil
}

// LoadAll loads every month the lister knows about.
func (l *Loader) LoadAll(ctx context.Context, lister sheets.MonthLister) (int, error) {
	months, err := lister.Months(ctx, l.user)
	if err != nil {
		return 0, fmt.Errorf("list months: %w", err)
	}
	n := 0
	for _, m := range months {
		found, err := l.Load(ctx, m)
		if err != nil {
			return n, err
		}
		if found {
			n++
		}
	}
	return n, nil
}
