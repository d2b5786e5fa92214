// Package locale formats amounts and month names for display.
package locale

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"controle/internal/core"
)

// Locale describes how money and months are shown to the user.
type Locale struct {
	Tag    language.Tag
	Symbol string

	group   string
	decimal string
	months  [12]string
}

var (
	BrazilianPortuguese = Locale{
		Tag:     language.BrazilianPortuguese,
		Symbol:  "R$",
		group:   ".",
		decimal: ",",
		months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	}
	AmericanEnglish = Locale{
		Tag:     language.AmericanEnglish,
		Symbol:  "$",
		group:   ",",
		decimal: ".",
		months: [12]string{"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december"},
	}
	Italian = Locale{
		Tag:     language.Italian,
		Symbol:  "€",
		group:   ".",
		decimal: ",",
		months: [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
			"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
	}
)

// Default is used when no locale is configured or the tag is unknown.
var Default = BrazilianPortuguese

var known = map[string]Locale{
	"pt-br": BrazilianPortuguese,
	"pt":    BrazilianPortuguese,
	"en-us": AmericanEnglish,
	"en":    AmericanEnglish,
	"it-it": Italian,
	"it":    Italian,
}

// Lookup returns the locale for a BCP 47 tag such as "pt-BR".
func Lookup(tag string) (Locale, bool) {
	l, ok := known[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))]
	if !ok {
		return Default, false
	}
	return l, true
}

// Supported lists the accepted tags.
func Supported() []string {
	return []string{"pt-BR", "en-US", "it-IT"}
}

// Amount formats m with grouping and two decimals, without symbol:
// 123450 cents -> "1.234,50" in pt-BR.
func (l Locale) Amount(m core.Money) string {
	neg := m.Cents < 0
	abs := uint64(m.Cents)
	if neg {
		abs = uint64(-(m.Cents + 1)) + 1
	}
	// humanize.Comma groups the integer exactly; only the separator is swapped.
	units := humanize.Comma(int64(abs / 100))
	if l.group != "," {
		units = strings.ReplaceAll(units, ",", l.group)
	}
	s := fmt.Sprintf("%s%s%02d", units, l.decimal, abs%100)
	if neg {
		return "-" + s
	}
	return s
}

// Currency formats m with the currency symbol: "R$ 1.234,50".
func (l Locale) Currency(m core.Money) string {
	if m.Cents < 0 {
		return "-" + l.Symbol + " " + l.Amount(core.Money{Cents: -m.Cents})
	}
	return l.Symbol + " " + l.Amount(m)
}

// maxCentsDigits keeps parsed cents inside int64.
const maxCentsDigits = 18

// ParseAmount reads back a string produced by Amount or Currency.
func (l Locale) ParseAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSpace(strings.TrimPrefix(s, l.Symbol))
	s = strings.ReplaceAll(s, l.group, "")
	s = strings.Replace(s, l.decimal, ".", 1)
	intPart, frac, _ := strings.Cut(s, ".")
	if intPart == "" || len(frac) > 2 || len(intPart)+2 > maxCentsDigits {
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	var cents int64
	for _, r := range intPart + frac {
		if r < '0' || r > '9' {
			return core.Money{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
		}
		cents = cents*10 + int64(r-'0')
	}
	if neg {
		cents = -cents
	}
	return core.Money{Cents: cents}, nil
}

// MonthName returns the capitalised month name, e.g. "Março".
func (l Locale) MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return cases.Title(l.Tag).String(l.months[month-1])
}

// PeriodLabel renders a period as "Março/2024", or just the year.
func (l Locale) PeriodLabel(p core.Period) string {
	if p.WholeYear() {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%s/%d", l.MonthName(p.Month), p.Year)
}

// ShortPeriodLabel renders "2024 / Mar", used on chart ticks.
func (l Locale) ShortPeriodLabel(p core.Period) string {
	name := []rune(l.MonthName(p.Month))
	if len(name) > 3 {
		name = name[:3]
	}
	return fmt.Sprintf("%d / %s", p.Year, string(name))
}

// Today returns the current date in the process time zone.
func Today() core.Date {
	now := time.Now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}
