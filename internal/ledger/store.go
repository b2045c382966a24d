// Package ledger owns the per-month budget snapshots and every mutation
// applied to them.
//
// A month either has no snapshot ("needs setup") or a fully formed one.
// Snapshots are created by an explicit setup action (ImportFrom or
// CreateEmpty) or hydrated from persistence with Load. Setup is
// irreversible: once committed, the previous absent state cannot be restored.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"budgetbook/internal/core"
)

var (
	// ErrNeedsSetup is returned when mutating a month that has no snapshot.
	ErrNeedsSetup = errors.New("month needs setup")
	// ErrNotFound is returned when a container, category, section or transaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConfirmationRequired guards destructive setup over existing data.
	ErrConfirmationRequired = errors.New("month already has data; confirmation required")
)

// Listener is notified after a month's snapshot changed.
type Listener func(key core.MonthKey)

// Store is the keyed collection of month snapshots.
type Store struct {
	mu        sync.Mutex
	months    map[core.MonthKey]core.Snapshot
	listeners []Listener
}

func NewStore() *Store {
	return &Store{months: make(map[core.MonthKey]core.Snapshot)}
}

// OnChange registers l. Listeners run after the store lock is released, so
// they may read the store and always see the latest snapshot.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Get returns a copy of the month's snapshot. ok is false when the month
// needs setup; that is not the same as an empty snapshot.
func (s *Store) Get(key core.MonthKey) (core.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.months[key]
	if !ok {
		return core.Snapshot{}, false
	}
	return snap.Clone(), true
}

// HasData reports whether the month has a snapshot.
func (s *Store) HasData(key core.MonthKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.months[key]
	return ok
}

// MonthKeys returns every month with data, oldest first.
func (s *Store) MonthKeys() []core.MonthKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]core.MonthKey, 0, len(s.months))
	for k := range s.months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// LatestMonthKey returns the newest month with data strictly before target.
func (s *Store) LatestMonthKey(target core.MonthKey) (core.MonthKey, bool) {
	var latest core.MonthKey
	for _, k := range s.MonthKeys() {
		if k.Before(target) {
			latest = k
		}
	}
	return latest, latest != ""
}

func (s *Store) SetIncome(key core.MonthKey, items []core.Category) error {
	return s.SetItems(key, core.IncomeContainer, items)
}

func (s *Store) SetExpenses(key core.MonthKey, items []core.Category) error {
	return s.SetItems(key, core.ExpensesContainer, items)
}

// SetCustomSections replaces the month's custom sections.
func (s *Store) SetCustomSections(key core.MonthKey, sections []core.CustomSection) error {
	return s.Update(key, func(snap *core.Snapshot) error {
		snap.CustomSections = core.CloneSections(sections)
		return nil
	})
}

// SetItems replaces one container's list.
func (s *Store) SetItems(key core.MonthKey, c core.ContainerID, items []core.Category) error {
	return s.SetContainers(key, map[core.ContainerID][]core.Category{c: items})
}

// SetContainers replaces several container lists in one commit. Either every
// change applies or none does.
func (s *Store) SetContainers(key core.MonthKey, changes map[core.ContainerID][]core.Category) error {
	return s.Update(key, func(snap *core.Snapshot) error {
		for c, items := range changes {
			if !snap.SetItems(c, core.CloneCategories(items)) {
				return fmt.Errorf("container %s: %w", c, ErrNotFound)
			}
		}
		return nil
	})
}

// Update applies fn to a copy of the month's snapshot and commits the copy
// only when fn succeeds.
func (s *Store) Update(key core.MonthKey, fn func(snap *core.Snapshot) error) error {
	s.mu.Lock()
	current, ok := s.months[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", key, ErrNeedsSetup)
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.months[key] = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, key)
	return nil
}

// ImportFrom starts target with source's plan: categories, order and
// budgets are carried; spent resets to zero and transaction logs to empty.
// A missing source yields an empty month. Existing data in target is
// replaced unconditionally; callers gate that with a confirmation.
func (s *Store) ImportFrom(target, source core.MonthKey) {
	s.mu.Lock()
	next := core.EmptySnapshot()
	src, ok := s.months[source]
	if ok {
		next = src.CarryForward()
	}
	s.months[target] = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	slog.Info("Month imported", "month", target, "source", source, "source_found", ok, "categories", next.CategoryCount())
	notify(listeners, target)
}

// ImportFromLatest imports target from the newest earlier month with data.
// It returns the source used; with no earlier month the result is blank.
func (s *Store) ImportFromLatest(target core.MonthKey) (core.MonthKey, bool) {
	source, ok := s.LatestMonthKey(target)
	if !ok {
		s.CreateEmpty(target)
		return "", false
	}
	s.ImportFrom(target, source)
	return source, true
}

// CreateEmpty sets the month to an empty, fully formed snapshot.
func (s *Store) CreateEmpty(key core.MonthKey) {
	s.mu.Lock()
	s.months[key] = core.EmptySnapshot()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	slog.Info("Month created empty", "month", key)
	notify(listeners, key)
}

// Load installs a snapshot read from persistence. Listeners are not
// notified: the data already matches the remote copy.
func (s *Store) Load(key core.MonthKey, snap core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months[key] = snap.Clone()
}

func (s *Store) snapshotListeners() []Listener {
	return append([]Listener(nil), s.listeners...)
}

func notify(listeners []Listener, key core.MonthKey) {
	for _, l := range listeners {
		l(key)
	}
}
