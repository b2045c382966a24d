// Package bolt stores month documents in a single bbolt file: one bucket per
// user, keyed by month.
package bolt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

// Store implements sheets.DocumentStore on a bbolt database.
type Store struct {
	db *bolt.DB
}

var _ sheets.DocumentStore = (*Store)(nil)

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	slog.Info("Bolt store opened", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func bucketName(user string) []byte {
	return []byte("user:" + user)
}

func (s *Store) Save(ctx context.Context, user string, doc core.Document) error {
	if !doc.MonthKey.Valid() {
		return core.ErrInvalidMonthKey
	}
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(user))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return b.Put([]byte(doc.MonthKey.String()), data)
	})
}

func (s *Store) Load(ctx context.Context, user string, month core.MonthKey) (core.Document, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(user))
		if b == nil {
			return sheets.ErrNotFound
		}
		v := b.Get([]byte(month.String()))
		if v == nil {
			return sheets.ErrNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return core.Document{}, err
	}
	return core.DecodeDocument(data)
}

// Months lists the user's months. bbolt keeps keys byte-sorted, which for
// YYYY-MM is chronological.
func (s *Store) Months(ctx context.Context, user string) ([]core.MonthKey, error) {
	var out []core.MonthKey
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(user))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, core.MonthKey(string(k)))
			return nil
		})
	})
	return out, err
}
