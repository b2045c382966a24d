package memory

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

type docKey struct {
	user  string
	month core.MonthKey
}

// Store keeps serialized month documents in memory.
type Store struct {
	mu   sync.Mutex
	docs map[docKey][]byte
}

func New() *Store {
	return &Store{docs: make(map[docKey][]byte)}
}

// NewFromFiles seeds documents for user from base/*.json. Each file holds one
// month document; unreadable or malformed files are skipped.
func NewFromFiles(base, user string) *Store {
	s := New()
	paths, _ := filepath.Glob(filepath.Join(base, "*.json"))
	sort.Strings(paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		doc, err := core.DecodeDocument(data)
		if err != nil {
			continue
		}
		_ = s.Save(context.Background(), user, doc)
	}
	return s
}

// Save stores the document, replacing any previous version.
func (s *Store) Save(_ context.Context, user string, doc core.Document) error {
	if !doc.MonthKey.Valid() {
		return core.ErrInvalidMonthKey
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docKey{user: user, month: doc.MonthKey}] = data
	return nil
}

func (s *Store) Load(_ context.Context, user string, month core.MonthKey) (core.Document, error) {
	s.mu.Lock()
	data, ok := s.docs[docKey{user: user, month: month}]
	s.mu.Unlock()
	if !ok {
		return core.Document{}, sheets.ErrNotFound
	}
	return core.DecodeDocument(data)
}

// Months returns the user's months, oldest first.
func (s *Store) Months(_ context.Context, user string) ([]core.MonthKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MonthKey
	for k := range s.docs {
		if k.user == user {
			out = append(out, k.month)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(string(out[i]), string(out[j])) < 0 })
	return out, nil
}
