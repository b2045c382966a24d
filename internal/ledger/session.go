package ledger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetbook/internal/core"
)

// SetupMode selects how a month without data is materialized.
type SetupMode int

const (
	// SetupImport carries the plan of the newest earlier month forward.
	SetupImport SetupMode = iota
	// SetupBlank starts with empty lists.
	SetupBlank
)

func (m SetupMode) String() string {
	switch m {
	case SetupImport:
		return "import"
	case SetupBlank:
		return "blank"
	default:
		return fmt.Sprintf("SetupMode(%d)", int(m))
	}
}

// SelectHook is told about every change of the selected month.
type SelectHook func(key core.MonthKey)

// Session tracks the currently selected month and scopes setup to it.
// Every month is gated independently: navigating across several months
// without data requires a setup action for each one.
type Session struct {
	store *Store

	mu       sync.Mutex
	selected core.MonthKey
	onSelect []SelectHook
}

// NewSession selects the month containing now.
func NewSession(store *Store, now time.Time) *Session {
	return &Session{store: store, selected: core.MonthKeyOf(now)}
}

func (s *Session) Store() *Store {
	return s.store
}

// Selected returns the current month key.
func (s *Session) Selected() core.MonthKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// OnSelect registers fn to run whenever the selected month changes.
func (s *Session) OnSelect(fn SelectHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSelect = append(s.onSelect, fn)
}

// Select moves the pointer to key.
func (s *Session) Select(key core.MonthKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidMonthKey, key)
	}
	s.mu.Lock()
	if s.selected == key {
		s.mu.Unlock()
		return nil
	}
	s.selected = key
	hooks := append([]SelectHook(nil), s.onSelect...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(key)
	}
	return nil
}

// SelectDate selects the month the calendar date falls in.
func (s *Session) SelectDate(t time.Time) {
	_ = s.Select(core.MonthKeyOf(t))
}

func (s *Session) Next() core.MonthKey {
	next := s.Selected().Next()
	_ = s.Select(next)
	return next
}

func (s *Session) Prev() core.MonthKey {
	prev := s.Selected().Prev()
	_ = s.Select(prev)
	return prev
}

// NeedsSetup reports whether the selected month has no snapshot yet.
func (s *Session) NeedsSetup() bool {
	return !s.store.HasData(s.Selected())
}

// Current returns the selected month's snapshot.
func (s *Session) Current() (core.Snapshot, bool) {
	return s.store.Get(s.Selected())
}

// ImportSource returns the month an import would copy from.
func (s *Session) ImportSource() (core.MonthKey, bool) {
	return s.store.LatestMonthKey(s.Selected())
}

// Setup materializes the selected month. When the month already has data the
// call is a destructive replacement and fails with ErrConfirmationRequired
// unless confirmed is set. The returned key is the import source, empty for
// a blank month.
func (s *Session) Setup(mode SetupMode, confirmed bool) (core.MonthKey, error) {
	key := s.Selected()
	if s.store.HasData(key) && !confirmed {
		return "", fmt.Errorf("%s: %w", key, ErrConfirmationRequired)
	}

	switch mode {
	case SetupImport:
		source, ok := s.store.ImportFromLatest(key)
		if !ok {
			slog.Info("No earlier month to import, created blank month", "month", key)
		}
		return source, nil
	case SetupBlank:
		s.store.CreateEmpty(key)
		return "", nil
	default:
		return "", fmt.Errorf("unknown setup mode %s", mode)
	}
}
