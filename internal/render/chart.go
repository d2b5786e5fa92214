package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"controle/internal/locale"
	"controle/internal/report"
)

var (
	incomeColor  = color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	expenseColor = color.RGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff}
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch
	barWidth    = vg.Length(12)
)

// Chart writes a PNG grouped bar chart with one income and one expense bar
// per month. An empty series produces an empty, labelled chart.
func Chart(w io.Writer, monthly []report.MonthTotals, loc locale.Locale) error {
	p := plot.New()
	p.Title.Text = ChartTitle
	p.X.Label.Text = ChartXLabel
	p.Y.Label.Text = fmt.Sprintf(ChartYLabelFm, loc.Symbol)
	p.Legend.Top = true

	if len(monthly) > 0 {
		income := make(plotter.Values, len(monthly))
		expense := make(plotter.Values, len(monthly))
		labels := make([]string, len(monthly))
		for i, m := range monthly {
			income[i] = m.Income.Units()
			expense[i] = m.Expense.Units()
			labels[i] = loc.ShortPeriodLabel(m.Period)
		}

		ib, err := plotter.NewBarChart(income, barWidth)
		if err != nil {
			return fmt.Errorf("income bars: %w", err)
		}
		ib.Color = incomeColor
		ib.LineStyle.Width = 0
		ib.Offset = -barWidth / 2

		eb, err := plotter.NewBarChart(expense, barWidth)
		if err != nil {
			return fmt.Errorf("expense bars: %w", err)
		}
		eb.Color = expenseColor
		eb.LineStyle.Width = 0
		eb.Offset = barWidth / 2

		p.Add(ib, eb)
		p.Legend.Add(IncomeLabel, ib)
		p.Legend.Add(ExpenseLabel, eb)
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}

	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("chart canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
