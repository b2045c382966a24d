package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.50", true},
		{"-12.5", "-12.50", true},
		{"0", "0.00", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestAmountUnmarshalNormalizesGarbage(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		out   string
	}{
		{`1800`, true, "1800.00"},
		{`"1800.5"`, true, "1800.50"},
		{`null`, false, "0.00"},
		{`""`, false, "0.00"},
		{`"NaN"`, false, "0.00"},
		{`"twelve"`, false, "0.00"},
		{`1.5e3`, true, "1500.00"},
		{`-2E+1`, true, "-20.00"},
		{`1e-7`, true, "0.00"},
	}
	for _, tc := range cases {
		var a Amount
		if err := json.Unmarshal([]byte(tc.in), &a); err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if a.Valid != tc.valid || a.String() != tc.out {
			t.Fatalf("%s: got valid=%v value=%s", tc.in, a.Valid, a)
		}
	}
}

func TestAmountUnmarshalExponentKeepsExactValue(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`1e-7`), &a); err != nil {
		t.Fatal(err)
	}
	if !a.Valid || !a.Value.Equal(decimal.New(1, -7)) {
		t.Fatalf("got valid=%v value=%s", a.Valid, a.Value)
	}
}

func TestAmountMarshal(t *testing.T) {
	b, _ := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: MustAmount("12.30"), B: Amount{}})
	if string(b) != `{"a":12.3,"b":null}` {
		t.Fatalf("unexpected json %s", b)
	}
}
