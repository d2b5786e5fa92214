package http

import (
	"errors"
	"net/url"
	"testing"

	"controle/internal/core"
	"controle/internal/locale"
)

func TestParsePeriodParams(t *testing.T) {
	today := core.NewDate(2024, 3, 15)
	tests := []struct {
		name  string
		query url.Values
		want  core.Period
	}{
		{"empty uses today", url.Values{}, core.Period{Year: 2024, Month: 3}},
		{"explicit", url.Values{"year": {"2023"}, "month": {"11"}}, core.Period{Year: 2023, Month: 11}},
		{"only year keeps current month", url.Values{"year": {"2022"}}, core.Period{Year: 2022, Month: 3}},
		{"zero month is whole year", url.Values{"year": {"2024"}, "month": {"0"}}, core.Period{Year: 2024}},
		{"all is whole year", url.Values{"month": {"all"}}, core.Period{Year: 2024}},
		{"invalid values are ignored", url.Values{"year": {"abc"}, "month": {"xyz"}}, core.Period{Year: 2024, Month: 3}},
		{"out of range is kept", url.Values{"month": {"13"}}, core.Period{Year: 2024, Month: 13}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePeriodParams(tt.query, today); got != tt.want {
				t.Errorf("ParsePeriodParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseEntryForm(t *testing.T) {
	today := core.NewDate(2024, 3, 15)
	tests := []struct {
		name    string
		form    url.Values
		loc     locale.Locale
		want    core.Entry
		wantErr error
	}{
		{
			name: "salary",
			form: url.Values{"date": {"2024-03-05"}, "kind": {"Entrada"}, "description": {" Salário "}, "amount": {"1500.00"}},
			loc:  locale.BrazilianPortuguese,
			want: core.Entry{Date: core.NewDate(2024, 3, 5), Kind: core.Income, Description: "Salário", Amount: core.Money{Cents: 150000}},
		},
		{
			name: "us grouping",
			form: url.Values{"kind": {"expense"}, "description": {"Rent"}, "amount": {"$ 1,234.50"}},
			loc:  locale.AmericanEnglish,
			want: core.Entry{Date: today, Kind: core.Expense, Description: "Rent", Amount: core.Money{Cents: 123450}},
		},
		{
			name: "control characters stripped",
			form: url.Values{"kind": {"saida"}, "description": {"Luz\x00\x07"}, "amount": {"10"}},
			loc:  locale.BrazilianPortuguese,
			want: core.Entry{Date: today, Kind: core.Expense, Description: "Luz", Amount: core.Money{Cents: 1000}},
		},
		{
			name:    "bad kind",
			form:    url.Values{"kind": {""}, "description": {"x"}, "amount": {"10"}},
			loc:     locale.BrazilianPortuguese,
			wantErr: core.ErrInvalidKind,
		},
		{
			name:    "bad amount",
			form:    url.Values{"kind": {"entrada"}, "description": {"x"}, "amount": {"dez"}},
			loc:     locale.BrazilianPortuguese,
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "bad date",
			form:    url.Values{"date": {"2024-13-01"}, "kind": {"entrada"}, "description": {"x"}, "amount": {"10"}},
			loc:     locale.BrazilianPortuguese,
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "empty description",
			form:    url.Values{"kind": {"entrada"}, "description": {"\x01"}, "amount": {"10"}},
			loc:     locale.BrazilianPortuguese,
			wantErr: core.ErrEmptyDescription,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntryForm(tt.form, tt.loc, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Date.Equal(tt.want.Date.Time) || got.Kind != tt.want.Kind ||
				got.Description != tt.want.Description || got.Amount != tt.want.Amount {
				t.Errorf("ParseEntryForm() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidationMessage(t *testing.T) {
	if msg, ok := validationMessage(core.ErrEmptyDescription); !ok || msg == "" {
		t.Errorf("empty description is not a validation error")
	}
	if _, ok := validationMessage(errors.New("boom")); ok {
		t.Errorf("arbitrary error treated as validation error")
	}
}

func TestYearOptions(t *testing.T) {
	opts := yearOptions([]int{2022, 2024}, 2023)
	want := []string{"2024", "2023", "2022"}
	if len(opts) != len(want) {
		t.Fatalf("got %d options, want %d", len(opts), len(want))
	}
	for i, o := range opts {
		if o.Value != want[i] {
			t.Errorf("option %d = %s, want %s", i, o.Value, want[i])
		}
		if o.Selected != (o.Value == "2023") {
			t.Errorf("option %s selected=%v", o.Value, o.Selected)
		}
	}
}
