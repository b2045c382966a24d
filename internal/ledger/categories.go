package ledger

import (
	"fmt"

	"budgetbook/internal/core"
)

// AddCategory appends cat to container c. A category added without a
// transaction log keeps Spent authoritative.
func (s *Store) AddCategory(key core.MonthKey, c core.ContainerID, cat core.Category) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	return s.Update(key, func(snap *core.Snapshot) error {
		items, ok := snap.Items(c)
		if !ok {
			return fmt.Errorf("container %s: %w", c, ErrNotFound)
		}
		snap.SetItems(c, append(items, cat.Clone()))
		return nil
	})
}

// UpdateCategory replaces the category at (c, index). The transaction log is
// kept from the stored category when cat carries none, so editing a name or
// budget never drops transactions.
func (s *Store) UpdateCategory(key core.MonthKey, c core.ContainerID, index int, cat core.Category) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	return s.Update(key, func(snap *core.Snapshot) error {
		items, ok := snap.Items(c)
		if !ok || index < 0 || index >= len(items) {
			return fmt.Errorf("category %s[%d]: %w", c, index, ErrNotFound)
		}
		next := cat.Clone()
		if next.Transactions == nil && items[index].Transactions != nil {
			next.Transactions = items[index].Clone().Transactions
		}
		items[index] = next
		return nil
	})
}

// DeleteCategory removes the category at (c, index). Removing the last item of
// a custom section leaves the section in place with no items.
func (s *Store) DeleteCategory(key core.MonthKey, c core.ContainerID, index int) error {
	return s.Update(key, func(snap *core.Snapshot) error {
		items, ok := snap.Items(c)
		if !ok || index < 0 || index >= len(items) {
			return fmt.Errorf("category %s[%d]: %w", c, index, ErrNotFound)
		}
		next := make([]core.Category, 0, len(items)-1)
		next = append(next, items[:index]...)
		next = append(next, items[index+1:]...)
		snap.SetItems(c, next)
		return nil
	})
}
