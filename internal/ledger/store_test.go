package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
)

const (
	feb core.MonthKey = "2024-02"
	mar core.MonthKey = "2024-03"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Load(feb, core.Snapshot{
		Income:   []core.Category{{Name: "Salary", Budgeted: core.AmountFromInt(5000), Spent: core.AmountFromInt(5000)}},
		Expenses: []core.Category{{Name: "Rent", Budgeted: core.AmountFromInt(1800), Spent: core.AmountFromInt(1800)}},
		CustomSections: []core.CustomSection{{ID: "sav", Name: "Savings", Items: []core.Category{
			{Name: "Trip", Budgeted: core.AmountFromInt(300), Transactions: []core.Transaction{
				{ID: "1", Date: core.NewDate(2024, 2, 3), Amount: core.AmountFromInt(50), Merchant: "Airline"},
			}},
		}}},
	})
	return s
}

func TestGetAbsentIsNotEmpty(t *testing.T) {
	s := NewStore()
	_, ok := s.Get(mar)
	assert.False(t, ok)
	assert.False(t, s.HasData(mar))

	s.CreateEmpty(mar)
	snap, ok := s.Get(mar)
	require.True(t, ok)
	assert.NotNil(t, snap.Income)
	assert.NotNil(t, snap.Expenses)
	assert.NotNil(t, snap.CustomSections)
	assert.Empty(t, snap.Income)
}

func TestMutatingAbsentMonthFails(t *testing.T) {
	s := NewStore()
	err := s.SetIncome(mar, []core.Category{{Name: "Salary"}})
	assert.True(t, errors.Is(err, ErrNeedsSetup))
	assert.False(t, s.HasData(mar), "a failed mutation must not create the month")

	_, err = s.AddSection(mar, "Savings")
	assert.ErrorIs(t, err, ErrNeedsSetup)
}

func TestImportFromCarriesPlanForward(t *testing.T) {
	s := seeded(t)
	s.ImportFrom(mar, feb)

	snap, ok := s.Get(mar)
	require.True(t, ok)
	require.Len(t, snap.Expenses, 1)
	rent := snap.Expenses[0]
	assert.Equal(t, "Rent", rent.Name)
	assert.True(t, rent.Budgeted.Equal(core.AmountFromInt(1800)))
	assert.True(t, rent.Spent.Equal(core.AmountFromInt(0)))
	assert.NotNil(t, rent.Transactions)
	assert.Empty(t, rent.Transactions)

	require.Len(t, snap.CustomSections, 1)
	assert.Equal(t, "sav", snap.CustomSections[0].ID)
	assert.Empty(t, snap.CustomSections[0].Items[0].Transactions)

	src, _ := s.Get(feb)
	assert.Len(t, src.CustomSections[0].Items[0].Transactions, 1, "source month is untouched")
}

func TestImportFromMissingSourceIsBlank(t *testing.T) {
	s := NewStore()
	s.ImportFrom(mar, feb)
	snap, ok := s.Get(mar)
	require.True(t, ok)
	assert.Equal(t, core.EmptySnapshot(), snap)
}

func TestImportFromLatest(t *testing.T) {
	s := seeded(t)
	s.CreateEmpty("2023-11")

	source, ok := s.ImportFromLatest("2024-06")
	assert.True(t, ok)
	assert.Equal(t, feb, source)

	_, ok = s.ImportFromLatest("2023-01")
	assert.False(t, ok)
	snap, _ := s.Get("2023-01")
	assert.Equal(t, core.EmptySnapshot(), snap)

	assert.Equal(t, []core.MonthKey{"2023-01", "2023-11", feb, "2024-06"}, s.MonthKeys())
}

func TestSetContainersIsAtomic(t *testing.T) {
	s := seeded(t)
	err := s.SetContainers(feb, map[core.ContainerID][]core.Category{
		core.IncomeContainer:             {},
		core.SectionContainer("missing"): {{Name: "X"}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	snap, _ := s.Get(feb)
	assert.Len(t, snap.Income, 1, "no partial commit")
}

func TestGetReturnsCopy(t *testing.T) {
	s := seeded(t)
	snap, _ := s.Get(feb)
	snap.Expenses[0].Name = "changed"
	snap.CustomSections[0].Items[0].Transactions[0].Merchant = "changed"

	again, _ := s.Get(feb)
	assert.Equal(t, "Rent", again.Expenses[0].Name)
	assert.Equal(t, "Airline", again.CustomSections[0].Items[0].Transactions[0].Merchant)
}

func TestListenersSeeLatestSnapshot(t *testing.T) {
	s := seeded(t)
	var seen []string
	s.OnChange(func(key core.MonthKey) {
		snap, _ := s.Get(key)
		seen = append(seen, snap.Expenses[0].Name)
		if len(seen) == 1 {
			// re-entrant mutation from a completion callback
			_ = s.UpdateCategory(key, core.ExpensesContainer, 0, core.Category{Name: "Mortgage"})
		}
	})

	require.NoError(t, s.UpdateCategory(feb, core.ExpensesContainer, 0, core.Category{Name: "Rent 2"}))
	assert.Equal(t, []string{"Rent 2", "Mortgage"}, seen)
}

func TestLoadDoesNotNotify(t *testing.T) {
	s := NewStore()
	called := false
	s.OnChange(func(core.MonthKey) { called = true })
	s.Load(feb, core.EmptySnapshot())
	assert.False(t, called)
	assert.True(t, s.HasData(feb))
}
