package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/model"
)

// Options controls text layout.
type Options struct {
	// Width is the total line width; 0 uses the terminal width.
	Width      int
	PlotHeight int
	Color      bool
}

func (o Options) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return TerminalWidth()
}

const (
	barFull     = "█"
	barNegative = "▒"
	minBarWidth = 10
)

// SummaryLines renders the headline metric cards.
func SummaryLines(s model.Summary) []string {
	return formatTable(
		[]string{"Total Profit", "Total Quantity", "Total Orders"},
		[][]string{{FormatAmount(s.Amount), FormatCount(s.Quantity), FormatCount(int64(s.Orders))}},
		map[int]bool{0: true, 1: true, 2: true},
	)
}

// ChartLines renders one chart body without its title.
func ChartLines(chart analytics.Chart, opts Options) []string {
	if len(chart.Groups) == 0 {
		return []string{"No data for the current filters."}
	}
	format := func(v decimal.Decimal) string {
		return FormatMeasure(chart.Measure, chart.Reduction, v)
	}
	if chart.Kind == analytics.ChartLine {
		values := make([]float64, len(chart.Groups))
		for i, g := range chart.Groups {
			values[i] = g.Value.InexactFloat64()
		}
		lines := plotLines([]Series{{Name: chart.Title, Values: values}},
			PlotWidthFor(opts.width()), opts.PlotHeight, opts.Color,
			func(f float64) string { return format(decimal.NewFromFloat(f)) })
		return append(lines, barLines(chart, opts, format)...)
	}
	return barLines(chart, opts, format)
}

func barLines(chart analytics.Chart, opts Options, format func(decimal.Decimal) string) []string {
	hi, lo, _ := analytics.Extremes(chart.Groups)
	maxAbs := hi.Abs()
	if lo.Abs().GreaterThan(maxAbs) {
		maxAbs = lo.Abs()
	}
	total := decimal.Zero
	for _, g := range chart.Groups {
		if g.Value.IsPositive() {
			total = total.Add(g.Value)
		}
	}

	labelWidth, valueWidth := 0, 0
	values := make([]string, len(chart.Groups))
	for i, g := range chart.Groups {
		values[i] = format(g.Value)
		if chart.Kind == analytics.ChartPie && total.IsPositive() && g.Value.IsPositive() {
			values[i] += fmt.Sprintf(" (%s%%)", g.Value.Div(total).Shift(2).StringFixed(1))
		}
		labelWidth = max(labelWidth, min(runewidth.StringWidth(g.Label), maxCellWidth))
		valueWidth = max(valueWidth, runewidth.StringWidth(values[i]))
	}
	barWidth := max(opts.width()-labelWidth-valueWidth-4, minBarWidth)

	lines := make([]string, 0, len(chart.Groups))
	for i, g := range chart.Groups {
		n := 0
		if maxAbs.IsPositive() {
			n = int(g.Value.Abs().Div(maxAbs).Mul(decimal.NewFromInt(int64(barWidth))).Round(0).IntPart())
		}
		glyph := barFull
		if g.Value.IsNegative() {
			glyph = barNegative
		}
		bar := runewidth.FillRight(strings.Repeat(glyph, n), barWidth)
		marker := ""
		if chart.Highlight && len(chart.Groups) > 1 {
			switch {
			case g.Value.Equal(hi):
				bar, marker = paint(bar, colorGreen, opts.Color), " max"
			case g.Value.Equal(lo):
				bar, marker = paint(bar, colorRed, opts.Color), " min"
			}
		}
		if opts.Color {
			marker = ""
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s%s",
			fitCell(g.Label, labelWidth, false), bar, runewidth.FillLeft(values[i], valueWidth), marker))
	}
	return lines
}

func paint(s, code string, enabled bool) string {
	if !enabled {
		return s
	}
	return code + s + colorReset
}

// BreakdownLines renders the quantity-vs-amount breakdown as a dual plot and a table.
func BreakdownLines(points []model.Point, opts Options) []string {
	if len(points) == 0 {
		return []string{"No data for the current filters."}
	}
	quantities := make([]float64, len(points))
	amounts := make([]float64, len(points))
	rows := make([][]string, len(points))
	for i, p := range points {
		quantities[i] = float64(p.Quantity)
		amounts[i] = p.Amount.InexactFloat64()
		rows[i] = []string{
			fmt.Sprintf("%d", p.Year), p.Month.String(), p.Day.String(),
			FormatCount(p.Quantity), FormatAmount(p.Amount),
		}
	}
	lines := plotLines([]Series{
		{Name: "Quantity", Values: quantities},
		{Name: "Amount", Values: amounts},
	}, PlotWidthFor(opts.width()), opts.PlotHeight, opts.Color, func(f float64) string {
		return decimal.NewFromFloat(f).StringFixed(0)
	})
	lines = append(lines, "")
	return append(lines, formatTable(
		[]string{"Year", "Month", "Day", "Quantity", "Amount"}, rows,
		map[int]bool{3: true, 4: true},
	)...)
}

// PageLines renders a computed page: title, metric cards, then every chart.
func PageLines(resp analytics.Response, opts Options) []string {
	lines := []string{resp.Page.Title(), strings.Repeat("=", runewidth.StringWidth(resp.Page.Title())), ""}
	lines = append(lines, SummaryLines(resp.Summary)...)
	for _, chart := range resp.Charts {
		lines = append(lines, "", chart.Title)
		lines = append(lines, ChartLines(chart, opts)...)
	}
	if resp.Page == analytics.PageMetrics {
		lines = append(lines, "", "Quantity vs Amount by Year, Month and Day")
		lines = append(lines, BreakdownLines(resp.Breakdown, opts)...)
	}
	return lines
}

// RenderPage writes a computed page to w.
func RenderPage(w io.Writer, resp analytics.Response, opts Options) error {
	return writeLines(w, PageLines(resp, opts))
}

// RenderChart writes a titled chart to w.
func RenderChart(w io.Writer, chart analytics.Chart, opts Options) error {
	return writeLines(w, append([]string{chart.Title}, ChartLines(chart, opts)...))
}

// RenderSummary writes the metric cards to w.
func RenderSummary(w io.Writer, s model.Summary) error {
	return writeLines(w, SummaryLines(s))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
