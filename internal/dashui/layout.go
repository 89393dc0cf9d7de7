package dashui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/salesdash/internal/model"
	"github.com/verte-zerg/salesdash/internal/report"
)

var orderColumns = []table.Column{
	{Title: "Year", Width: 4},
	{Title: "Month", Width: 9},
	{Title: "Day", Width: 9},
	{Title: "SKU", Width: 20},
	{Title: "Category", Width: 14},
	{Title: "Size", Width: 5},
	{Title: "State", Width: 16},
	{Title: "Qty", Width: 4},
	{Title: "Amount", Width: 12},
}

func newOrdersTable() table.Model {
	t := table.New(
		table.WithColumns(orderColumns),
		table.WithHeight(1),
	)
	t.SetStyles(ordersTableStyles())
	return t
}

func orderRows(records []model.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		amount := "-"
		if r.Amount.Valid {
			amount = report.FormatAmount(r.Amount.Decimal)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(r.Year),
			r.Month.String(),
			r.Day.String(),
			r.SKU,
			r.Category,
			r.Size,
			r.State,
			strconv.FormatInt(r.Quantity, 10),
			amount,
		})
	}
	return rows
}

func ordersTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	if lineWidth := lipgloss.Width(line); lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
