package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "budget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteSaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Load(ctx, "u1", "2024-03"); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc := core.NewDocument("2024-03", core.Snapshot{
		Expenses: []core.Category{{Name: "Rent", Budgeted: core.AmountFromInt(1800), Transactions: []core.Transaction{
			{ID: "1", Date: core.NewDate(2024, 3, 1), Amount: core.MustAmount("900"), Merchant: "Landlord"},
		}}},
	})
	v1, err := repo.SaveVersioned(ctx, "u1", doc)
	if err != nil || v1 != 1 {
		t.Fatalf("first save: version=%d err=%v", v1, err)
	}
	v2, err := repo.SaveVersioned(ctx, "u1", doc)
	if err != nil || v2 != 2 {
		t.Fatalf("second save: version=%d err=%v", v2, err)
	}

	got, err := repo.Load(ctx, "u1", "2024-03")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.MonthKey != "2024-03" || len(got.Expenses) != 1 || got.Expenses[0].Transactions[0].Merchant != "Landlord" {
		t.Fatalf("unexpected document: %+v", got)
	}
	if got.Expenses[0].Spent.Valid {
		t.Fatalf("unset spent must stay unset, got %v", got.Expenses[0].Spent)
	}

	if _, err := repo.Load(ctx, "u2", "2024-03"); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("documents are scoped per user, got %v", err)
	}
}

func TestSQLiteMonthsAndExportStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, m := range []core.MonthKey{"2024-03", "2023-11", "2024-01"} {
		if err := repo.Save(ctx, "u1", core.NewDocument(m, core.EmptySnapshot())); err != nil {
			t.Fatalf("save %s: %v", m, err)
		}
	}
	months, err := repo.Months(ctx, "u1")
	if err != nil || len(months) != 3 || months[0] != "2023-11" || months[2] != "2024-03" {
		t.Fatalf("unexpected months %v err=%v", months, err)
	}

	pending, err := repo.PendingExports(ctx, 10)
	if err != nil || len(pending) != 3 {
		t.Fatalf("expected 3 pending, got %d err=%v", len(pending), err)
	}

	if err := repo.MarkExported(ctx, "u1", "2024-03", 1); err != nil {
		t.Fatalf("mark exported: %v", err)
	}
	// a stale version does not clear a newer save
	if _, err := repo.SaveVersioned(ctx, "u1", core.NewDocument("2024-01", core.EmptySnapshot())); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if err := repo.MarkExported(ctx, "u1", "2024-01", 1); err != nil {
		t.Fatalf("mark exported: %v", err)
	}

	pending, _ = repo.PendingExports(ctx, 10)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %+v", pending)
	}
	for _, p := range pending {
		if p.Month == "2024-03" {
			t.Fatalf("exported month still pending")
		}
	}

	if err := repo.Save(ctx, "u1", core.Document{MonthKey: "March"}); !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Fatalf("expected invalid month key, got %v", err)
	}
}
