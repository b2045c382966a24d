package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// EffectiveSpent is the actual spend used for display and aggregation. When
// the category keeps a transaction log it is the sum of the log; otherwise it
// is the raw Spent field. Unset values count as zero.
func EffectiveSpent(c Category) decimal.Decimal {
	if c.Transactions == nil {
		return c.Spent.Decimal()
	}
	sum := decimal.Zero
	for _, tx := range c.Transactions {
		sum = sum.Add(tx.Amount.Decimal())
	}
	return sum
}

// NormalizedBudgeted returns the budgeted amount with unset values as zero.
func NormalizedBudgeted(c Category) decimal.Decimal {
	return c.Budgeted.Decimal()
}

// Remaining is budgeted minus effective spent.
func Remaining(c Category) decimal.Decimal {
	return NormalizedBudgeted(c).Sub(EffectiveSpent(c))
}

// PercentSpent returns spent as a percentage of budget, unclamped. A
// category without a positive budget reports 0.
func PercentSpent(c Category) decimal.Decimal {
	budgeted := NormalizedBudgeted(c)
	if !budgeted.IsPositive() {
		return decimal.Zero
	}
	return EffectiveSpent(c).Div(budgeted).Mul(hundred)
}

// ProgressPercent is PercentSpent clamped to [0,100] for progress bars.
func ProgressPercent(c Category) decimal.Decimal {
	p := PercentSpent(c)
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// IsOverBudget reports whether effective spent exceeds the budget.
func IsOverBudget(c Category) bool {
	return EffectiveSpent(c).GreaterThan(NormalizedBudgeted(c))
}
