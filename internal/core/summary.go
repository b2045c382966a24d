package core

import "github.com/shopspring/decimal"

// Totals aggregates a list of categories.
type Totals struct {
	Budgeted decimal.Decimal
	Actual   decimal.Decimal
}

// SectionTotal is the aggregate of one custom section.
type SectionTotal struct {
	ID   string
	Name string
	Totals
}

// MonthSummary is a compact summary for a month snapshot.
type MonthSummary struct {
	Income    Totals
	Expenses  Totals
	Custom    []SectionTotal
	Remaining decimal.Decimal // income actual - expenses actual
}

// CashFlowPoint is one month of income against expenses.
type CashFlowPoint struct {
	Month    MonthKey
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// NetWorth holds the global asset and liability lists.
type NetWorth struct {
	Assets      []Asset     `json:"assets" yaml:"assets"`
	Liabilities []Liability `json:"liabilities" yaml:"liabilities"`
}

// NetWorthTotals is the result of NetWorth.Totals.
type NetWorthTotals struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Net         decimal.Decimal
}

// Sum adds budgeted and effective spent across items.
func Sum(items []Category) Totals {
	t := Totals{Budgeted: decimal.Zero, Actual: decimal.Zero}
	for _, c := range items {
		t.Budgeted = t.Budgeted.Add(NormalizedBudgeted(c))
		t.Actual = t.Actual.Add(EffectiveSpent(c))
	}
	return t
}

// Summarize computes the per-section totals of a snapshot.
func Summarize(s Snapshot) MonthSummary {
	sum := MonthSummary{
		Income:   Sum(s.Income),
		Expenses: Sum(s.Expenses),
		Custom:   make([]SectionTotal, 0, len(s.CustomSections)),
	}
	for _, sec := range s.CustomSections {
		sum.Custom = append(sum.Custom, SectionTotal{ID: sec.ID, Name: sec.Name, Totals: Sum(sec.Items)})
	}
	sum.Remaining = sum.Income.Actual.Sub(sum.Expenses.Actual)
	return sum
}

// Net returns income minus expenses.
func (p CashFlowPoint) Net() decimal.Decimal {
	return p.Income.Sub(p.Expenses)
}

// Totals sums assets and liabilities.
func (n NetWorth) Totals() NetWorthTotals {
	t := NetWorthTotals{Assets: decimal.Zero, Liabilities: decimal.Zero}
	for _, a := range n.Assets {
		t.Assets = t.Assets.Add(a.Value.Decimal())
	}
	for _, l := range n.Liabilities {
		t.Liabilities = t.Liabilities.Add(l.Value.Decimal())
	}
	t.Net = t.Assets.Sub(t.Liabilities)
	return t
}
