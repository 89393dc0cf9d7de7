// Package report renders dashboard pages as plain text and JSON documents.
package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/model"
)

// FormatAmount renders d as a dollar figure with thousands separators, e.g. "$1,234.56".
func FormatAmount(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole := r.Truncate(0)
	cents := r.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}

// FormatCount renders n with thousands separators, e.g. "1,234".
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatMeasure renders a reduced value in the unit of measure.
func FormatMeasure(measure model.Measure, op model.Reduction, v decimal.Decimal) string {
	if op == model.ReduceCount || measure == model.MeasureQuantity {
		return FormatCount(v.Round(0).IntPart())
	}
	return FormatAmount(v)
}
