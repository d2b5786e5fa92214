// Package report aggregates a ledger by period. Every function is pure:
// callers pass the ledger they loaded and get fresh values back.
package report

import (
	"sort"

	"controle/internal/core"
)

// Summary holds the totals of a set of entries.
type Summary struct {
	Income  core.Money
	Expense core.Money
}

// Balance is income minus expense; it may be negative.
func (s Summary) Balance() core.Money {
	return s.Income.Sub(s.Expense)
}

// MonthTotals is one bar group of the chart.
type MonthTotals struct {
	Period  core.Period
	Income  core.Money
	Expense core.Money
}

// Report is everything the renderers need for one selected period.
type Report struct {
	Period  core.Period
	Entries core.Ledger
	Summary Summary
	// Monthly covers the whole ledger, not only the selected period,
	// so the chart shows the trend over time.
	Monthly []MonthTotals
	// Years lists every year with entries, for period selectors.
	Years []int
}

// Filter returns the entries inside p, preserving insertion order.
func Filter(l core.Ledger, p core.Period) core.Ledger {
	out := core.Ledger{}
	for _, e := range l {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize sums amounts per kind.
func Summarize(l core.Ledger) Summary {
	var s Summary
	for _, e := range l {
		switch e.Kind {
		case core.Income:
			s.Income = s.Income.Add(e.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(e.Amount)
		}
	}
	return s
}

// Monthly groups the ledger by (year, month) and sums each kind,
// returning the buckets in chronological order.
func Monthly(l core.Ledger) []MonthTotals {
	idx := map[core.Period]int{}
	var out []MonthTotals
	for _, e := range l {
		p := core.PeriodOf(e.Date)
		i, ok := idx[p]
		if !ok {
			i = len(out)
			idx[p] = i
			out = append(out, MonthTotals{Period: p})
		}
		switch e.Kind {
		case core.Income:
			out[i].Income = out[i].Income.Add(e.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(e.Amount)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Period.Before(out[b].Period) })
	return out
}

// Years lists the distinct years present in the ledger, ascending.
func Years(l core.Ledger) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, e := range l {
		y := e.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Periods lists the distinct months present in the ledger, ascending.
func Periods(l core.Ledger) []core.Period {
	m := Monthly(l)
	out := make([]core.Period, len(m))
	for i, t := range m {
		out[i] = t.Period
	}
	return out
}

// Build filters l to p and computes its summary.
func Build(l core.Ledger, p core.Period) Report {
	entries := Filter(l, p)
	return Report{
		Period:  p,
		Entries: entries,
		Summary: Summarize(entries),
		Monthly: Monthly(l),
		Years:   Years(l),
	}
}
