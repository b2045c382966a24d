// Package export renders a month as a flat table: one header row followed by
// one row per category across every section.
package export

import (
	"io"
	"strings"

	"budgetbook/internal/core"
)

var Header = []string{"Section", "Name", "Budgeted", "Actual", "Difference"}

// Rows builds the export table for a snapshot: income first, then expenses,
// then each custom section in order. Actual is the effective spend and
// Difference is actual minus budgeted.
func Rows(s core.Snapshot) [][]string {
	rows := [][]string{append([]string(nil), Header...)}
	add := func(section string, items []core.Category) {
		for _, c := range items {
			budgeted := core.NormalizedBudgeted(c)
			actual := core.EffectiveSpent(c)
			rows = append(rows, []string{
				section,
				c.Name,
				budgeted.StringFixed(2),
				actual.StringFixed(2),
				actual.Sub(budgeted).StringFixed(2),
			})
		}
	}
	add("Income", s.Income)
	add("Expenses", s.Expenses)
	for _, sec := range s.CustomSections {
		add(sec.Name, sec.Items)
	}
	return rows
}

// FileName is the download name of a month's export.
func FileName(month core.MonthKey) string {
	return "budget-" + month.String() + ".csv"
}

// WriteCSV writes rows with every field quoted and rows separated by "\n".
func WriteCSV(w io.Writer, rows [][]string) error {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CSV renders the month's export as bytes.
func CSV(s core.Snapshot) ([]byte, error) {
	var b strings.Builder
	if err := WriteCSV(&b, Rows(s)); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
