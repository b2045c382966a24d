package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/sheets"
	"budgetbook/internal/sheets/memory"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type recordingSaver struct {
	mu    sync.Mutex
	docs  []core.Document
	errFn func() error
}

func (r *recordingSaver) Save(_ context.Context, _ string, doc core.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errFn != nil {
		if err := r.errFn(); err != nil {
			return err
		}
	}
	r.docs = append(r.docs, doc)
	return nil
}

func (r *recordingSaver) calls() []core.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Document(nil), r.docs...)
}

const month core.MonthKey = "2024-03"

func setup(t *testing.T, backend sheets.SnapshotSaver) (*ledger.Store, *Saver, *fakeClock) {
	t.Helper()
	store := ledger.NewStore()
	store.CreateEmpty(month)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	saver := New(store, backend, Options{User: "u1", Delay: time.Second, Clock: clock})
	saver.Attach()
	return store, saver, clock
}

func TestRapidEditsProduceOneSave(t *testing.T) {
	rec := &recordingSaver{}
	store, _, clock := setup(t, rec)

	require.NoError(t, store.AddCategory(month, core.ExpensesContainer, core.Category{Name: "Rent", Budgeted: core.AmountFromInt(1800)}))
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, store.AddCategory(month, core.ExpensesContainer, core.Category{Name: "Food", Budgeted: core.AmountFromInt(600)}))
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, store.UpdateCategory(month, core.ExpensesContainer, 1, core.Category{Name: "Groceries", Budgeted: core.AmountFromInt(650)}))

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, rec.calls(), "quiet period not over yet")

	clock.Advance(time.Millisecond)
	calls := rec.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, month, calls[0].MonthKey)
	require.Len(t, calls[0].Expenses, 2)
	assert.Equal(t, "Groceries", calls[0].Expenses[1].Name)

	clock.Advance(10 * time.Second)
	assert.Len(t, rec.calls(), 1)
}

func TestUnchangedSnapshotIsNotSaved(t *testing.T) {
	rec := &recordingSaver{}
	store, _, clock := setup(t, rec)

	require.NoError(t, store.AddCategory(month, core.IncomeContainer, core.Category{Name: "Salary"}))
	clock.Advance(time.Second)
	require.Len(t, rec.calls(), 1)

	// rename and rename back within one quiet window
	require.NoError(t, store.UpdateCategory(month, core.IncomeContainer, 0, core.Category{Name: "Pay"}))
	require.NoError(t, store.UpdateCategory(month, core.IncomeContainer, 0, core.Category{Name: "Salary"}))
	clock.Advance(time.Second)
	assert.Len(t, rec.calls(), 1)
}

func TestFailedSaveRetriesOnNextMutation(t *testing.T) {
	fail := true
	rec := &recordingSaver{errFn: func() error {
		if fail {
			return errors.New("network down")
		}
		return nil
	}}
	store, saver, clock := setup(t, rec)

	var reported []core.MonthKey
	saver.OnError(func(m core.MonthKey, err error) {
		reported = append(reported, m)
		assert.ErrorContains(t, err, "network down")
	})

	require.NoError(t, store.AddCategory(month, core.IncomeContainer, core.Category{Name: "Salary"}))
	clock.Advance(time.Second)
	assert.Equal(t, []core.MonthKey{month}, reported)

	// no retry loop
	fail = false
	clock.Advance(time.Minute)
	assert.Empty(t, rec.calls())

	require.NoError(t, store.AddCategory(month, core.IncomeContainer, core.Category{Name: "Bonus"}))
	clock.Advance(time.Second)
	calls := rec.calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Income, 2)
	snap, _ := store.Get(month)
	assert.Len(t, snap.Income, 2, "local state survives the failed save")
}

func TestFlushSavesImmediately(t *testing.T) {
	rec := &recordingSaver{}
	store, saver, _ := setup(t, rec)
	store.CreateEmpty("2024-04")

	require.NoError(t, store.AddCategory(month, core.IncomeContainer, core.Category{Name: "Salary"}))
	assert.True(t, saver.Pending())
	require.NoError(t, saver.Flush(context.Background()))
	assert.False(t, saver.Pending())

	calls := rec.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, month, calls[0].MonthKey)
	assert.Equal(t, core.MonthKey("2024-04"), calls[1].MonthKey)
}

func TestLoaderRoundTrip(t *testing.T) {
	remote := memory.New()
	ctx := context.Background()
	doc := core.NewDocument(month, core.Snapshot{
		Expenses: []core.Category{{Name: "Rent", Budgeted: core.AmountFromInt(1800), Spent: core.AmountFromInt(1800)}},
	})
	require.NoError(t, remote.Save(ctx, "u1", doc))

	store := ledger.NewStore()
	clock := &fakeClock{}
	saver := New(store, remote, Options{User: "u1", Clock: clock})
	saver.Attach()
	loader := NewLoader(store, remote, "u1", saver)

	found, err := loader.Load(ctx, month)
	require.NoError(t, err)
	assert.True(t, found)
	snap, _ := store.Get(month)
	assert.Equal(t, "Rent", snap.Expenses[0].Name)
	assert.False(t, saver.Pending(), "hydrating does not schedule a save")

	found, err = loader.Load(ctx, "2024-04")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, store.HasData("2024-04"))

	n, err := loader.LoadAll(ctx, remote)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
