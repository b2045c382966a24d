// Package app assembles one user's ledger session: the in-memory store, the
// month selection, debounced persistence and the net worth book.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/autosave"
	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/reorder"
	"budgetbook/internal/sheets"
)

type Options struct {
	User          string
	AutosaveDelay time.Duration
	// NetWorthSeedFile is an optional YAML file with assets and liabilities.
	NetWorthSeedFile string
	Now              func() time.Time
	Clock            autosave.Clock
}

type App struct {
	User     string
	Store    *ledger.Store
	Session  *ledger.Session
	Saver    *autosave.Saver
	Loader   *autosave.Loader
	NetWorth *ledger.NetWorthBook

	docs sheets.DocumentStore
}

// New wires a fresh ledger to docs. Nothing is loaded until Open or
// LoadHistory is called.
func New(docs sheets.DocumentStore, opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	nw := ledger.NewNetWorthBook(core.NetWorth{})
	if opts.NetWorthSeedFile != "" {
		var err error
		if nw, err = ledger.LoadNetWorthSeed(opts.NetWorthSeedFile); err != nil {
			return nil, fmt.Errorf("net worth seed: %w", err)
		}
	}

	store := ledger.NewStore()
	saver := autosave.New(store, docs, autosave.Options{
		User:  opts.User,
		Delay: opts.AutosaveDelay,
		Clock: opts.Clock,
	})
	saver.Attach()
	saver.OnError(func(month core.MonthKey, err error) {
		slog.Warn("Month not saved; will retry on next change", "month", month, "error", err)
	})

	return &App{
		User:     opts.User,
		Store:    store,
		Session:  ledger.NewSession(store, opts.Now()),
		Saver:    saver,
		Loader:   autosave.NewLoader(store, docs, opts.User, saver),
		NetWorth: nw,
		docs:     docs,
	}, nil
}

// LoadHistory hydrates every persisted month, so imports can find the latest
// month with data.
func (a *App) LoadHistory(ctx context.Context) (int, error) {
	return a.Loader.LoadAll(ctx, a.docs)
}

// Open selects month and loads it. found is false when the month needs setup.
func (a *App) Open(ctx context.Context, month core.MonthKey) (bool, error) {
	if err := a.Session.Select(month); err != nil {
		return false, err
	}
	return a.Loader.Load(ctx, month)
}

// Setup initializes the selected month; see ledger.Session.Setup.
func (a *App) Setup(mode ledger.SetupMode, confirmed bool) (core.MonthKey, error) {
	return a.Session.Setup(mode, confirmed)
}

// Move relocates a category within the selected month.
func (a *App) Move(from reorder.Key, to reorder.Target) (bool, error) {
	return reorder.Move[core.Category](reorder.NewLedgerBoard(a.Store, a.Session.Selected()), from, to)
}

// Summary aggregates the selected month.
func (a *App) Summary() (core.MonthSummary, error) {
	snap, ok := a.Session.Current()
	if !ok {
		return core.MonthSummary{}, fmt.Errorf("%s: %w", a.Session.Selected(), ledger.ErrNeedsSetup)
	}
	return core.Summarize(snap), nil
}

// Close writes any pending change.
func (a *App) Close(ctx context.Context) error {
	return a.Saver.Flush(ctx)
}
