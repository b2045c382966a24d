package ledger

import "budgetbook/internal/core"

// CashFlow returns income against expenses actuals for each key that has
// data, in the order given. Months needing setup are skipped.
func (s *Store) CashFlow(keys []core.MonthKey) []core.CashFlowPoint {
	out := make([]core.CashFlowPoint, 0, len(keys))
	for _, k := range keys {
		snap, ok := s.Get(k)
		if !ok {
			continue
		}
		sum := core.Summarize(snap)
		out = append(out, core.CashFlowPoint{
			Month:    k,
			Income:   sum.Income.Actual,
			Expenses: sum.Expenses.Actual,
		})
	}
	return out
}

// CashFlowRange covers count months ending at last.
func (s *Store) CashFlowRange(last core.MonthKey, count int) []core.CashFlowPoint {
	if count <= 0 {
		return nil
	}
	keys := make([]core.MonthKey, count)
	k := last
	for i := count - 1; i >= 0; i-- {
		keys[i] = k
		k = k.Prev()
	}
	return s.CashFlow(keys)
}
