package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for transactions (no time component).
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Transaction struct {
		ID       string `json:"id"`
		Date     Date   `json:"date"`
		Amount   Amount `json:"amount"`
		Merchant string `json:"merchant"`
	}

	// Category is a named budget line. A nil Transactions slice means the
	// category has no transaction log and Spent is authoritative.
	Category struct {
		Name         string        `json:"name"`
		Budgeted     Amount        `json:"budgeted"`
		Spent        Amount        `json:"spent"`
		Icon         string        `json:"icon"`
		Transactions []Transaction `json:"transactions"`
	}

	CustomSection struct {
		ID    string     `json:"id"`
		Name  string     `json:"name"`
		Items []Category `json:"items"`
	}

	// Snapshot is one month of budget data.
	Snapshot struct {
		Income         []Category      `json:"income"`
		Expenses       []Category      `json:"expenses"`
		CustomSections []CustomSection `json:"custom_sections"`
	}

	Asset struct {
		Name  string `json:"name" yaml:"name"`
		Value Amount `json:"value" yaml:"value"`
	}

	Liability struct {
		Name  string `json:"name" yaml:"name"`
		Value Amount `json:"value" yaml:"value"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyMerchant    = errors.New("empty merchant")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingID        = errors.New("missing id")
	ErrInvalidMonthKey  = errors.New("invalid month key")
	ErrDescriptionLimit = errors.New("name too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf drops the time component of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the month the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKeyOf(d.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Amount.Valid {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if len(t.Merchant) > 200 {
		return ErrDescriptionLimit
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return ErrDescriptionLimit
	}
	for _, tx := range c.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasLog reports whether the category keeps a transaction log.
func (c Category) HasLog() bool {
	return c.Transactions != nil
}

// Clone returns a deep copy; a nil transaction log stays nil.
func (c Category) Clone() Category {
	out := c
	if c.Transactions != nil {
		out.Transactions = append(make([]Transaction, 0, len(c.Transactions)), c.Transactions...)
	}
	return out
}

// Clone returns a deep copy of the section and its items.
func (s CustomSection) Clone() CustomSection {
	out := s
	out.Items = CloneCategories(s.Items)
	return out
}

// EmptySnapshot returns a fully formed snapshot with no categories.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Income:         []Category{},
		Expenses:       []Category{},
		CustomSections: []CustomSection{},
	}
}

// Clone returns a deep copy of the snapshot. Nil lists come back empty.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Income:         CloneCategories(s.Income),
		Expenses:       CloneCategories(s.Expenses),
		CustomSections: CloneSections(s.CustomSections),
	}
	return out
}

// CloneSections deep copies a section list. Nil comes back empty.
func CloneSections(in []CustomSection) []CustomSection {
	out := make([]CustomSection, 0, len(in))
	for _, sec := range in {
		out = append(out, sec.Clone())
	}
	return out
}

// CarryForward copies the plan of s into a fresh month: names, icons, budgets
// and order are kept; spent is reset to zero and every transaction log is
// reset to an empty list.
func (s Snapshot) CarryForward() Snapshot {
	out := s.Clone()
	reset := func(items []Category) {
		for i := range items {
			items[i].Spent = AmountFromInt(0)
			items[i].Transactions = []Transaction{}
		}
	}
	reset(out.Income)
	reset(out.Expenses)
	for i := range out.CustomSections {
		reset(out.CustomSections[i].Items)
	}
	return out
}

// Section returns the custom section with the given id.
func (s Snapshot) Section(id string) (CustomSection, int, bool) {
	for i, sec := range s.CustomSections {
		if sec.ID == id {
			return sec, i, true
		}
	}
	return CustomSection{}, -1, false
}

// CategoryCount counts categories across every container.
func (s Snapshot) CategoryCount() int {
	n := len(s.Income) + len(s.Expenses)
	for _, sec := range s.CustomSections {
		n += len(sec.Items)
	}
	return n
}

// CloneCategories deep copies a category list. Nil comes back empty.
func CloneCategories(in []Category) []Category {
	out := make([]Category, 0, len(in))
	for _, c := range in {
		out = append(out, c.Clone())
	}
	return out
}
