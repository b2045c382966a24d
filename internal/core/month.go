package core

import (
	"fmt"
	"strings"
	"time"
)

const monthKeyLayout = "2006-01"

// MonthKey is the canonical YYYY-MM identifier of a ledger month.
type MonthKey string

// MonthKeyOf derives the month key of a calendar date.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return MonthKeyOf(t), nil
}

func (k MonthKey) String() string {
	return string(k)
}

// Valid reports whether k is a well formed YYYY-MM key.
func (k MonthKey) Valid() bool {
	_, err := time.Parse(monthKeyLayout, string(k))
	return err == nil
}

// Time returns the first day of the month in UTC.
func (k MonthKey) Time() time.Time {
	t, err := time.Parse(monthKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Next returns the following month.
func (k MonthKey) Next() MonthKey {
	return MonthKeyOf(k.Time().AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (k MonthKey) Prev() MonthKey {
	return MonthKeyOf(k.Time().AddDate(0, -1, 0))
}

// Before reports whether k sorts before other. Keys compare lexically.
func (k MonthKey) Before(other MonthKey) bool {
	return k < other
}

// Label is the human form, e.g. "March 2025".
func (k MonthKey) Label() string {
	return k.Time().Format("January 2006")
}
