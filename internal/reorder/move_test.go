package reorder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
)

const month core.MonthKey = "2024-03"

func newLedger(t *testing.T) (*ledger.Store, *LedgerBoard) {
	t.Helper()
	store := ledger.NewStore()
	store.Load(month, core.Snapshot{
		Income:   []core.Category{{Name: "Salary", Budgeted: core.AmountFromInt(5000), Spent: core.AmountFromInt(5000)}},
		Expenses: []core.Category{{Name: "Rent", Budgeted: core.AmountFromInt(1800), Spent: core.AmountFromInt(1800)}},
	})
	return store, NewLedgerBoard(store, month)
}

func names(items []core.Category) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Name)
	}
	return out
}

func TestMoveRentIntoIncome(t *testing.T) {
	store, board := newLedger(t)

	moved, err := Move[core.Category](board, Key{Container: core.ExpensesContainer, Index: 0}, Target{Container: core.IncomeContainer, Index: 1})
	require.NoError(t, err)
	assert.True(t, moved)

	snap, _ := store.Get(month)
	assert.Equal(t, []string{"Salary", "Rent"}, names(snap.Income))
	assert.Empty(t, snap.Expenses)
	assert.Equal(t, 2, Count[core.Category](board))
	assert.True(t, snap.Income[1].Budgeted.Equal(core.AmountFromInt(1800)), "moved item keeps its content")
}

func TestCrossContainerMoveCommitsOnce(t *testing.T) {
	store, board := newLedger(t)
	notified := 0
	store.OnChange(func(core.MonthKey) {
		notified++
		snap, _ := store.Get(month)
		assert.Equal(t, 2, snap.CategoryCount(), "listeners never observe a half-applied move")
	})

	_, err := Move[core.Category](board, Key{Container: core.IncomeContainer, Index: 0}, AtEnd(core.ExpensesContainer))
	require.NoError(t, err)
	assert.Equal(t, 1, notified)

	snap, _ := store.Get(month)
	assert.Equal(t, []string{"Rent", "Salary"}, names(snap.Expenses))
}

func TestMoveIntoCustomSection(t *testing.T) {
	store, board := newLedger(t)
	id, err := store.AddSection(month, "Savings")
	require.NoError(t, err)

	moved, err := Move[core.Category](board, Key{Container: core.IncomeContainer, Index: 0}, AtEnd(core.SectionContainer(id)))
	require.NoError(t, err)
	assert.True(t, moved)

	snap, _ := store.Get(month)
	assert.Empty(t, snap.Income)
	assert.Equal(t, []string{"Salary"}, names(snap.CustomSections[0].Items))

	keys := Keys[core.Category](board)
	assert.Equal(t, []Key{{core.ExpensesContainer, 0}, {core.SectionContainer(id), 0}}, keys)
	assert.Equal(t, "section:"+id+"-0", keys[1].String())
}

func TestSameContainerIsPermutation(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	var applied [][]string
	board := NewListBoard[string]("list", func() []string { return items }, func(next []string) {
		applied = append(applied, next)
		items = next
	})

	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"b", "c", "a", "d"}},
		{3, 0, []string{"d", "b", "c", "a"}},
		{1, 3, []string{"d", "c", "a", "b"}},
	}
	for _, tt := range tests {
		_, err := Move[string](board, Key{"list", tt.from}, AtItem(Key{"list", tt.to}))
		require.NoError(t, err)
		assert.Equal(t, tt.want, items)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, items)
	}

	before := len(applied)
	moved, err := Move[string](board, Key{"list", 2}, AtItem(Key{"list", 2}))
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Len(t, applied, before, "same position emits no mutation")

	moved, err = Move[string](board, Key{"list", 3}, AtEnd("list"))
	require.NoError(t, err)
	assert.False(t, moved, "appending the last item to its own list is a no-op")
}

func TestMoveUnresolved(t *testing.T) {
	_, board := newLedger(t)
	tests := []struct {
		name string
		from Key
		to   Target
	}{
		{"unknown source container", Key{"section:nope", 0}, AtEnd(core.IncomeContainer)},
		{"source index out of range", Key{core.IncomeContainer, 4}, AtEnd(core.ExpensesContainer)},
		{"unknown target", Key{core.IncomeContainer, 0}, AtEnd("section:nope")},
		{"target index out of range", Key{core.IncomeContainer, 0}, Target{Container: core.ExpensesContainer, Index: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved, err := Move[core.Category](board, tt.from, tt.to)
			assert.False(t, moved)
			assert.True(t, errors.Is(err, ErrUnresolved))
		})
	}
}

func TestNetWorthListBoard(t *testing.T) {
	book := ledger.NewNetWorthBook(core.NetWorth{Assets: []core.Asset{{Name: "Checking"}, {Name: "Brokerage"}}})
	board := NewListBoard[core.Asset]("assets", book.Assets, book.SetAssets)

	_, err := Move[core.Asset](board, Key{"assets", 1}, AtItem(Key{"assets", 0}))
	require.NoError(t, err)
	assert.Equal(t, "Brokerage", book.Assets()[0].Name)

	_, err = Move[core.Asset](board, Key{"assets", 0}, AtEnd("liabilities"))
	assert.ErrorIs(t, err, ErrUnresolved)
}
