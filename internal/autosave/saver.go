// Package autosave syncs ledger months to a document store after a quiet
// period, skipping writes whose serialization did not change.
package autosave

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/sheets"
)

const (
	DefaultDelay   = time.Second
	DefaultTimeout = 15 * time.Second
)

// ErrorHandler is told about a failed save. Local state is unaffected; the
// next mutation of the month schedules another attempt.
type ErrorHandler func(month core.MonthKey, err error)

type Options struct {
	User    string
	Delay   time.Duration
	Timeout time.Duration
	Clock   Clock
}

// Saver debounces ledger mutations into document saves. Every mutation
// resets one timer; when it fires, each month changed since the last fire is
// serialized from the store's latest snapshot and written if it differs from
// the last successful write.
type Saver struct {
	store   *ledger.Store
	backend sheets.SnapshotSaver
	user    string
	delay   time.Duration
	timeout time.Duration
	clock   Clock

	mu        sync.Mutex
	timer     Timer
	dirty     map[core.MonthKey]struct{}
	lastSaved map[core.MonthKey][]byte
	onError   []ErrorHandler

	saveMu sync.Mutex
}

func New(store *ledger.Store, backend sheets.SnapshotSaver, opts Options) *Saver {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	return &Saver{
		store:     store,
		backend:   backend,
		user:      opts.User,
		delay:     opts.Delay,
		timeout:   opts.Timeout,
		clock:     opts.Clock,
		dirty:     make(map[core.MonthKey]struct{}),
		lastSaved: make(map[core.MonthKey][]byte),
	}
}

// Attach subscribes the saver to every change of the store.
func (s *Saver) Attach() {
	s.store.OnChange(s.Notify)
}

// OnError registers h for failed saves.
func (s *Saver) OnError(h ErrorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, h)
}

// Notify marks month as changed and restarts the quiet period.
func (s *Saver) Notify(month core.MonthKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[month] = struct{}{}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.delay, s.fire)
}

// Pending reports whether changes are waiting for the timer.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0
}

// MarkSaved records data as the remote copy of month, so loading a document
// does not trigger a redundant write of identical content.
func (s *Saver) MarkSaved(month core.MonthKey, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSaved[month] = append([]byte(nil), data...)
}

// Flush stops the timer and saves pending months immediately.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	months := s.takeDirty()
	s.mu.Unlock()

	var firstErr error
	for _, m := range months {
		if err := s.save(ctx, m); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Saver) fire() {
	s.mu.Lock()
	s.timer = nil
	months := s.takeDirty()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for _, m := range months {
		_ = s.save(ctx, m)
	}
}

func (s *Saver) takeDirty() []core.MonthKey {
	months := make([]core.MonthKey, 0, len(s.dirty))
	for m := range s.dirty {
		months = append(months, m)
	}
	s.dirty = make(map[core.MonthKey]struct{})
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}

func (s *Saver) save(ctx context.Context, month core.MonthKey) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap, ok := s.store.Get(month)
	if !ok {
		return nil
	}
	doc := core.NewDocument(month, snap)
	data, err := doc.Encode()
	if err != nil {
		return s.fail(ctx, month, fmt.Errorf("encode %s: %w", month, err))
	}

	s.mu.Lock()
	unchanged := bytes.Equal(data, s.lastSaved[month])
	s.mu.Unlock()
	if unchanged {
		slog.DebugContext(ctx, "Snapshot unchanged, skipping save", "month", month)
		return nil
	}

	start := time.Now()
	if err := s.backend.Save(ctx, s.user, doc); err != nil {
		return s.fail(ctx, month, fmt.Errorf("save %s: %w", month, err))
	}
	s.MarkSaved(month, data)
	slog.InfoContext(ctx, "Snapshot saved",
		"month", month,
		"bytes", len(data),
		"duration", time.Since(start))
	return nil
}

func (s *Saver) fail(ctx context.Context, month core.MonthKey, err error) error {
	slog.ErrorContext(ctx, "Snapshot save failed", "month", month, "error", err)
	s.mu.Lock()
	handlers := append([]ErrorHandler(nil), s.onError...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(month, err)
	}
	return err
}
