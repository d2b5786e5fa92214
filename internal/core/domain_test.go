package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-05", NewDate(2024, 3, 5), true},
		{"05/03/2024", NewDate(2024, 3, 5), true},
		{" 2024-03-05 00:00:00 ", NewDate(2024, 3, 5), true},
		{"2024-03-05T10:00:00Z", NewDate(2024, 3, 5), true},
		{"", Date{}, false},
		{"31/02/2024", Date{}, false},
		{"yesterday", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateFormats(t *testing.T) {
	d := NewDate(2024, 3, 5)
	if d.Format() != "05/03/2024" {
		t.Fatalf("Format() = %q", d.Format())
	}
	if d.ISO() != "2024-03-05" {
		t.Fatalf("ISO() = %q", d.ISO())
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"Entrada": Income,
		"entrada": Income,
		"Income":  Income,
		"Saída":   Expense,
		"SAIDA":   Expense,
		"expense": Expense,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %v, got %v (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseKind("Transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if Income.String() != "Entrada" || Expense.String() != "Saída" {
		t.Fatalf("unexpected labels %q %q", Income, Expense)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		Date:        NewDate(2025, 1, 1),
		Kind:        Income,
		Description: "ok",
		Amount:      Money{Cents: 100},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    Entry
		want error
	}{
		{Entry{Date: NewDate(2025, 1, 1), Kind: Income, Description: "  ", Amount: Money{Cents: 1}}, ErrEmptyDescription},
		{Entry{Date: NewDate(2025, 1, 1), Kind: Income, Description: "a", Amount: Money{Cents: 0}}, ErrInvalidAmount},
		{Entry{Date: NewDate(2025, 1, 1), Kind: 0, Description: "a", Amount: Money{Cents: 1}}, ErrInvalidKind},
		{Entry{Date: NewDate(2025, 1, 1), Kind: Expense, Description: strings.Repeat("x", 201), Amount: Money{Cents: 1}}, ErrLongDescription},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
	zeroDate := Entry{Kind: Income, Description: "a", Amount: Money{Cents: 1}}
	if err := zeroDate.Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestPeriod(t *testing.T) {
	march := Period{Year: 2024, Month: 3}
	if !march.Contains(NewDate(2024, 3, 31)) {
		t.Fatalf("march should contain 31/03/2024")
	}
	if march.Contains(NewDate(2023, 3, 1)) || march.Contains(NewDate(2024, 4, 1)) {
		t.Fatalf("march should not contain other months")
	}
	year := Period{Year: 2024}
	if !year.WholeYear() || !year.Contains(NewDate(2024, 12, 1)) {
		t.Fatalf("whole-year period should contain december")
	}
	if march.String() != "03/2024" || year.String() != "2024" {
		t.Fatalf("unexpected labels %q %q", march, year)
	}
	if err := (Period{Year: 2024, Month: 13}).Validate(); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if err := (Period{Month: 1}).Validate(); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
	if !(Period{2023, 12}).Before(march) || march.Before(Period{2024, 3}) {
		t.Fatalf("unexpected ordering")
	}
}
