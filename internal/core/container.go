package core

import "strings"

// ContainerID names one ordered list of categories inside a snapshot: the
// built-in income and expenses lists, or a custom section.
type ContainerID string

const (
	IncomeContainer   ContainerID = "income"
	ExpensesContainer ContainerID = "expenses"

	sectionPrefix = "section:"
)

// SectionContainer addresses the custom section with the given id.
func SectionContainer(sectionID string) ContainerID {
	return ContainerID(sectionPrefix + sectionID)
}

// SectionID returns the custom section id addressed by c.
func (c ContainerID) SectionID() (string, bool) {
	if !strings.HasPrefix(string(c), sectionPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(c), sectionPrefix), true
}

// Label is the display name used for exports and logs.
func (c ContainerID) Label(s Snapshot) string {
	switch c {
	case IncomeContainer:
		return "Income"
	case ExpensesContainer:
		return "Expenses"
	}
	if id, ok := c.SectionID(); ok {
		if sec, _, found := s.Section(id); found {
			return sec.Name
		}
	}
	return string(c)
}

// Containers lists every container of s in display order.
func (s Snapshot) Containers() []ContainerID {
	out := make([]ContainerID, 0, 2+len(s.CustomSections))
	out = append(out, IncomeContainer, ExpensesContainer)
	for _, sec := range s.CustomSections {
		out = append(out, SectionContainer(sec.ID))
	}
	return out
}

// Items returns the list held by container c. The slice aliases s.
func (s Snapshot) Items(c ContainerID) ([]Category, bool) {
	switch c {
	case IncomeContainer:
		return s.Income, true
	case ExpensesContainer:
		return s.Expenses, true
	}
	if id, ok := c.SectionID(); ok {
		if sec, _, found := s.Section(id); found {
			return sec.Items, true
		}
	}
	return nil, false
}

// SetItems replaces the list held by container c.
func (s *Snapshot) SetItems(c ContainerID, items []Category) bool {
	if items == nil {
		items = []Category{}
	}
	switch c {
	case IncomeContainer:
		s.Income = items
		return true
	case ExpensesContainer:
		s.Expenses = items
		return true
	}
	if id, ok := c.SectionID(); ok {
		if _, i, found := s.Section(id); found {
			s.CustomSections[i].Items = items
			return true
		}
	}
	return false
}
