package ledger

import (
	"fmt"
	"strings"

	"budgetbook/internal/core"
)

// AddSection appends a new, empty custom section and returns its id.
func (s *Store) AddSection(key core.MonthKey, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.ErrEmptyName
	}
	id := core.NewSectionID()
	err := s.Update(key, func(snap *core.Snapshot) error {
		snap.CustomSections = append(snap.CustomSections, core.CustomSection{
			ID:    id,
			Name:  name,
			Items: []core.Category{},
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RenameSection(key core.MonthKey, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	return s.Update(key, func(snap *core.Snapshot) error {
		_, i, ok := snap.Section(id)
		if !ok {
			return fmt.Errorf("section %s: %w", id, ErrNotFound)
		}
		snap.CustomSections[i].Name = name
		return nil
	})
}

// DeleteSection removes the section together with every item it holds.
func (s *Store) DeleteSection(key core.MonthKey, id string) error {
	return s.Update(key, func(snap *core.Snapshot) error {
		_, i, ok := snap.Section(id)
		if !ok {
			return fmt.Errorf("section %s: %w", id, ErrNotFound)
		}
		snap.CustomSections = append(snap.CustomSections[:i], snap.CustomSections[i+1:]...)
		return nil
	})
}
