package http

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"controle/internal/core"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

var validationMessages = []struct {
	err error
	msg string
}{
	{core.ErrEmptyDescription, "Descrição obrigatória"},
	{core.ErrLongDescription, "Descrição muito longa (máx. 200 caracteres)"},
	{core.ErrInvalidAmount, "Valor inválido: informe um número maior que zero"},
	{core.ErrInvalidKind, "Tipo inválido: escolha Entrada ou Saída"},
	{core.ErrInvalidDate, "Data inválida"},
	{core.ErrInvalidDay, "Data inválida"},
	{core.ErrInvalidMonth, "Mês inválido"},
	{core.ErrInvalidYear, "Ano inválido"},
}

// validationMessage returns the user-facing message for a validation error
// and whether err is one.
func validationMessage(err error) (string, bool) {
	for _, v := range validationMessages {
		if errors.Is(err, v.err) {
			return v.msg, true
		}
	}
	return "", false
}

// monthOptions lists the month filter choices, "Todos" first.
func monthOptions(selected int, monthName func(int) string) []option {
	opts := make([]option, 0, 13)
	opts = append(opts, option{Value: "0", Label: "Todos", Selected: selected == 0})
	for m := 1; m <= 12; m++ {
		opts = append(opts, option{Value: strconv.Itoa(m), Label: monthName(m), Selected: selected == m})
	}
	return opts
}

// yearOptions lists the years with entries plus the selected one, newest first.
func yearOptions(years []int, selected int) []option {
	years = slices.Clone(years)
	if !slices.Contains(years, selected) {
		years = append(years, selected)
	}
	slices.Sort(years)
	slices.Reverse(years)
	opts := make([]option, 0, len(years))
	for _, y := range years {
		opts = append(opts, option{Value: strconv.Itoa(y), Label: strconv.Itoa(y), Selected: y == selected})
	}
	return opts
}
