package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"budgetbook/internal/core"
)

// TransactionEntry is a transaction together with the category that owns it.
type TransactionEntry struct {
	core.Transaction
	Container     core.ContainerID
	CategoryIndex int
	CategoryName  string
}

// DayGroup holds the entries of one calendar day.
type DayGroup struct {
	Date    core.Date
	Entries []TransactionEntry
	Total   decimal.Decimal
}

type txRef struct {
	container core.ContainerID
	category  int
	index     int
}

// AddTransaction appends tx to the log of the category at (c, index). An
// empty id is replaced with a fresh one; the stored transaction is returned.
// A category without a log gets one, and from then on the log is the source
// of its spend.
func (s *Store) AddTransaction(key core.MonthKey, c core.ContainerID, index int, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = core.NewTransactionID()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	err := s.Update(key, func(snap *core.Snapshot) error {
		if _, found := findTransaction(*snap, tx.ID); found {
			return fmt.Errorf("transaction %s already exists", tx.ID)
		}
		items, ok := snap.Items(c)
		if !ok || index < 0 || index >= len(items) {
			return fmt.Errorf("category %s[%d]: %w", c, index, ErrNotFound)
		}
		cat := &items[index]
		if cat.Transactions == nil {
			cat.Transactions = []core.Transaction{}
		}
		cat.Transactions = append(cat.Transactions, tx)
		syncSpent(cat)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// UpdateTransaction replaces the stored transaction with the same id.
func (s *Store) UpdateTransaction(key core.MonthKey, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	return s.Update(key, func(snap *core.Snapshot) error {
		ref, ok := findTransaction(*snap, tx.ID)
		if !ok {
			return fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
		}
		items, _ := snap.Items(ref.container)
		cat := &items[ref.category]
		cat.Transactions[ref.index] = tx
		syncSpent(cat)
		return nil
	})
}

// DeleteTransaction removes the transaction with the given id. The emptied
// log stays in place, so the category's spend is zero rather than falling
// back to its raw value.
func (s *Store) DeleteTransaction(key core.MonthKey, id string) error {
	return s.Update(key, func(snap *core.Snapshot) error {
		ref, ok := findTransaction(*snap, id)
		if !ok {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		items, _ := snap.Items(ref.container)
		cat := &items[ref.category]
		cat.Transactions = append(cat.Transactions[:ref.index], cat.Transactions[ref.index+1:]...)
		syncSpent(cat)
		return nil
	})
}

// MoveTransaction moves a transaction to the category at (c, index). The
// removal and the insertion commit together.
func (s *Store) MoveTransaction(key core.MonthKey, id string, c core.ContainerID, index int) error {
	return s.Update(key, func(snap *core.Snapshot) error {
		ref, ok := findTransaction(*snap, id)
		if !ok {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		dst, ok := snap.Items(c)
		if !ok || index < 0 || index >= len(dst) {
			return fmt.Errorf("category %s[%d]: %w", c, index, ErrNotFound)
		}
		if ref.container == c && ref.category == index {
			return nil
		}

		src, _ := snap.Items(ref.container)
		from := &src[ref.category]
		tx := from.Transactions[ref.index]
		from.Transactions = append(from.Transactions[:ref.index], from.Transactions[ref.index+1:]...)
		syncSpent(from)

		to := &dst[index]
		if to.Transactions == nil {
			to.Transactions = []core.Transaction{}
		}
		to.Transactions = append(to.Transactions, tx)
		syncSpent(to)
		return nil
	})
}

// Transactions lists every transaction of the month, newest date first.
// Entries on the same date keep their container and log order.
func (s *Store) Transactions(key core.MonthKey) ([]TransactionEntry, error) {
	snap, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNeedsSetup)
	}
	var out []TransactionEntry
	for _, c := range snap.Containers() {
		items, _ := snap.Items(c)
		for i, cat := range items {
			for _, tx := range cat.Transactions {
				out = append(out, TransactionEntry{
					Transaction:   tx,
					Container:     c,
					CategoryIndex: i,
					CategoryName:  cat.Name,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

// TransactionsByDate groups the month's transactions per day, newest first.
func (s *Store) TransactionsByDate(key core.MonthKey) ([]DayGroup, error) {
	entries, err := s.Transactions(key)
	if err != nil {
		return nil, err
	}
	var groups []DayGroup
	for _, e := range entries {
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(e.Date.Time) {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			groups[n-1].Total = groups[n-1].Total.Add(e.Amount.Decimal())
			continue
		}
		groups = append(groups, DayGroup{
			Date:    e.Date,
			Entries: []TransactionEntry{e},
			Total:   e.Amount.Decimal(),
		})
	}
	return groups, nil
}

func findTransaction(snap core.Snapshot, id string) (txRef, bool) {
	for _, c := range snap.Containers() {
		items, _ := snap.Items(c)
		for i, cat := range items {
			for j, tx := range cat.Transactions {
				if tx.ID == id {
					return txRef{container: c, category: i, index: j}, true
				}
			}
		}
	}
	return txRef{}, false
}

// syncSpent keeps the stored spend equal to the log total so readers of the
// raw field never see a stale value.
func syncSpent(cat *core.Category) {
	cat.Spent = core.NewAmount(core.EffectiveSpent(*cat))
}
