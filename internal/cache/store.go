package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

const (
	DefaultSize = 64
	DefaultTTL  = 10 * time.Minute
)

// Store is a read-through, write-through cache over a sheets.DocumentStore.
// Concurrent loads of the same month share one backend call.
type Store struct {
	backend sheets.DocumentStore
	docs    *LRU[core.Document]
	group   singleflight.Group
}

var (
	_ sheets.DocumentStore  = (*Store)(nil)
	_ sheets.VersionedSaver = (*Store)(nil)
)

func NewStore(backend sheets.DocumentStore, size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{backend: backend, docs: NewLRU[core.Document](size, ttl)}
}

func cacheKey(user string, month core.MonthKey) string {
	return user + "|" + month.String()
}

// Save writes to the backend first; the cache is only refreshed on success.
func (s *Store) Save(ctx context.Context, user string, doc core.Document) error {
	if err := s.backend.Save(ctx, user, doc); err != nil {
		s.docs.Delete(cacheKey(user, doc.MonthKey))
		return err
	}
	s.docs.Set(cacheKey(user, doc.MonthKey), cloneDocument(doc))
	return nil
}

// SaveVersioned forwards to a versioned backend and refreshes the cache like
// Save. Backends without revisions report version 0.
func (s *Store) SaveVersioned(ctx context.Context, user string, doc core.Document) (int64, error) {
	vs, ok := s.backend.(sheets.VersionedSaver)
	if !ok {
		return 0, s.Save(ctx, user, doc)
	}
	version, err := vs.SaveVersioned(ctx, user, doc)
	if err != nil {
		s.docs.Delete(cacheKey(user, doc.MonthKey))
		return 0, err
	}
	s.docs.Set(cacheKey(user, doc.MonthKey), cloneDocument(doc))
	return version, nil
}

func (s *Store) Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error) {
	key := cacheKey(user, month)
	if doc, ok := s.docs.Get(key); ok {
		return cloneDocument(doc), nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		doc, err := s.backend.Load(ctx, user, month)
		if err != nil {
			return core.Document{}, err
		}
		s.docs.Set(key, doc)
		return doc, nil
	})
	if err != nil {
		return core.Document{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Shared document load", "user", user, "month", month)
	}
	return cloneDocument(v.(core.Document)), nil
}

// Months always asks the backend; the month list is cheap and changes on
// every first save of a month.
func (s *Store) Months(ctx context.Context, user string) ([]core.MonthKey, error) {
	months, err := s.backend.Months(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	return months, nil
}

// Janitor drops expired entries every interval until ctx is done.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.docs.CleanExpired(); n > 0 {
				slog.DebugContext(ctx, "Expired cached documents", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func cloneDocument(d core.Document) core.Document {
	return core.NewDocument(d.MonthKey, d.Snapshot())
}
