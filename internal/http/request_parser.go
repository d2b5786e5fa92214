package http

// Request parsing: the period filter shared by the dashboard, chart and
// export routes, and the entry form.

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"controle/internal/core"
	"controle/internal/locale"
)

// ParsePeriodParams extracts year and month from query parameters, using
// today as the default. "all" or "0" as month selects the whole year.
// Unparseable values fall back to the default; out-of-range values are kept
// so the caller can reject them.
func ParsePeriodParams(query url.Values, today core.Date) core.Period {
	p := core.Period{Year: today.Year(), Month: today.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			p.Year = y
		}
	}
	switch v := strings.ToLower(strings.TrimSpace(query.Get("month"))); v {
	case "":
	case "all", "todos":
		p.Month = 0
	default:
		if m, err := strconv.Atoi(v); err == nil {
			p.Month = m
		}
	}
	return p
}

// ParseEntryForm builds an entry from the dashboard form. An empty date
// means today. Amounts are read as plain decimals first ("1500.00",
// "12,34") and then in the locale's grouped format ("1.234,50").
func ParseEntryForm(form url.Values, loc locale.Locale, today core.Date) (core.Entry, error) {
	e := core.Entry{
		Date:        today,
		Description: sanitizeInput(form.Get("description")),
	}

	if v := strings.TrimSpace(form.Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Entry{}, err
		}
		e.Date = d
	}

	kind, err := core.ParseKind(form.Get("kind"))
	if err != nil {
		return core.Entry{}, err
	}
	e.Kind = kind

	amount, err := parseFormAmount(form.Get("amount"), loc)
	if err != nil {
		return core.Entry{}, err
	}
	e.Amount = amount

	return e, e.Validate()
}

func parseFormAmount(s string, loc locale.Locale) (core.Money, error) {
	s = strings.TrimSpace(s)
	if cents, err := core.ParseDecimalToCents(s); err == nil {
		return core.Money{Cents: cents}, nil
	}
	m, err := loc.ParseAmount(s)
	if err != nil {
		return core.Money{}, err
	}
	if err := m.Validate(); err != nil {
		return core.Money{}, fmt.Errorf("%w: %q", err, s)
	}
	return m, nil
}
