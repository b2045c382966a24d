package core

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectiveSpent(t *testing.T) {
	tests := []struct {
		name string
		cat  Category
		want string
	}{
		{
			name: "raw spent without a transaction log",
			cat:  Category{Name: "Rent", Budgeted: AmountFromInt(1800), Spent: AmountFromInt(1750)},
			want: "1750",
		},
		{
			name: "transaction log overrides raw spent",
			cat: Category{Name: "Food", Spent: AmountFromInt(999), Transactions: []Transaction{
				{ID: "1", Amount: MustAmount("12.50")},
				{ID: "2", Amount: MustAmount("7.25")},
			}},
			want: "19.75",
		},
		{
			name: "empty log means zero",
			cat:  Category{Name: "Fun", Spent: AmountFromInt(40), Transactions: []Transaction{}},
			want: "0",
		},
		{
			name: "unset amounts count as zero",
			cat:  Category{Name: "Misc", Transactions: []Transaction{{ID: "1"}, {ID: "2", Amount: AmountFromInt(3)}}},
			want: "3",
		},
		{
			name: "unset raw spent",
			cat:  Category{Name: "Misc"},
			want: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, EffectiveSpent(tt.cat).Equal(dec(tt.want)), "got %s", EffectiveSpent(tt.cat))
		})
	}
}

func TestPercentAndOverBudget(t *testing.T) {
	over := Category{Name: "Entertainment", Budgeted: AmountFromInt(200), Spent: AmountFromInt(275)}
	assert.True(t, PercentSpent(over).Equal(dec("137.5")))
	assert.True(t, ProgressPercent(over).Equal(dec("100")))
	assert.True(t, IsOverBudget(over))
	assert.True(t, Remaining(over).Equal(dec("-75")))

	under := Category{Name: "Healthcare", Budgeted: AmountFromInt(150), Spent: AmountFromInt(90)}
	assert.True(t, PercentSpent(under).Equal(dec("60")))
	assert.True(t, ProgressPercent(under).Equal(dec("60")))
	assert.False(t, IsOverBudget(under))

	noBudget := Category{Name: "New", Spent: AmountFromInt(10)}
	assert.True(t, PercentSpent(noBudget).IsZero())
	assert.True(t, IsOverBudget(noBudget), "spending against an unset budget is over budget")

	refund := Category{Name: "Refund", Budgeted: AmountFromInt(10), Spent: AmountFromInt(-5)}
	assert.True(t, ProgressPercent(refund).IsZero())
}

func TestSummarize(t *testing.T) {
	s := Snapshot{
		Income: []Category{
			{Name: "Salary", Budgeted: AmountFromInt(5000), Spent: AmountFromInt(5000)},
			{Name: "Broken", Spent: AmountFromInt(100)}, // unset budget
		},
		Expenses: []Category{
			{Name: "Rent", Budgeted: AmountFromInt(1800), Spent: AmountFromInt(1800)},
			{Name: "Food", Budgeted: AmountFromInt(600), Transactions: []Transaction{{ID: "1", Amount: AmountFromInt(20)}}},
		},
		CustomSections: []CustomSection{{ID: "s", Name: "Savings", Items: []Category{{Name: "Trip", Budgeted: AmountFromInt(300), Spent: AmountFromInt(50)}}}},
	}

	sum := Summarize(s)

	assert.True(t, sum.Income.Budgeted.Equal(dec("5000")))
	assert.True(t, sum.Income.Actual.Equal(dec("5100")))
	assert.True(t, sum.Expenses.Budgeted.Equal(dec("2400")))
	assert.True(t, sum.Expenses.Actual.Equal(dec("1820")))
	assert.True(t, sum.Remaining.Equal(dec("3280")))
	if assert.Len(t, sum.Custom, 1) {
		assert.Equal(t, "Savings", sum.Custom[0].Name)
		assert.True(t, sum.Custom[0].Actual.Equal(dec("50")))
	}
}

func TestNetWorthTotals(t *testing.T) {
	nw := NetWorth{
		Assets:      []Asset{{Name: "Checking", Value: AmountFromInt(8500)}, {Name: "Bad"}},
		Liabilities: []Liability{{Name: "Card", Value: AmountFromInt(3200)}},
	}
	got := nw.Totals()
	assert.True(t, got.Assets.Equal(dec("8500")))
	assert.True(t, got.Liabilities.Equal(dec("3200")))
	assert.True(t, got.Net.Equal(dec("5300")))
}

func TestNewTransactionIDIsStrictlyIncreasing(t *testing.T) {
	var prev int64
	for i := 0; i < 1000; i++ {
		id, err := strconv.ParseInt(NewTransactionID(), 10, 64)
		assert.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}
