package core

import "encoding/json"

// Document is the persisted shape of one user's month.
type Document struct {
	MonthKey       MonthKey        `json:"month_key"`
	Income         []Category      `json:"income"`
	Expenses       []Category      `json:"expenses"`
	CustomSections []CustomSection `json:"custom_sections"`
}

// NewDocument builds the persisted form of a snapshot.
func NewDocument(key MonthKey, s Snapshot) Document {
	c := s.Clone()
	return Document{
		MonthKey:       key,
		Income:         c.Income,
		Expenses:       c.Expenses,
		CustomSections: c.CustomSections,
	}
}

// Snapshot returns the fully formed snapshot held by the document.
func (d Document) Snapshot() Snapshot {
	return Snapshot{
		Income:         d.Income,
		Expenses:       d.Expenses,
		CustomSections: d.CustomSections,
	}.Clone()
}

// Encode serializes the document. Equal snapshots encode to equal bytes.
func (d Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// DecodeDocument parses a serialized document.
func DecodeDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, err
	}
	if _, err := ParseMonthKey(string(d.MonthKey)); err != nil {
		return Document{}, err
	}
	return d, nil
}
