package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dimension names a categorical field of a Record.
type Dimension string

// Supported dimensions.
const (
	DimYear     Dimension = "year"
	DimMonth    Dimension = "month"
	DimDay      Dimension = "day"
	DimQuarter  Dimension = "quarter"
	DimSeason   Dimension = "season"
	DimSKU      Dimension = "sku"
	DimCategory Dimension = "category"
	DimSize     Dimension = "size"
	DimStyle    Dimension = "style"
	DimState    Dimension = "state"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{
	DimYear, DimMonth, DimDay, DimQuarter, DimSeason,
	DimSKU, DimCategory, DimSize, DimStyle, DimState,
}

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownMeasure   = errors.New("unknown measure")
	ErrUnknownReduction = errors.New("unknown reduction")
)

// ParseDimension resolves a dimension name, case-insensitively.
func ParseDimension(name string) (Dimension, error) {
	n := Dimension(strings.ToLower(strings.TrimSpace(name)))
	for _, d := range Dimensions {
		if d == n {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

// Label returns a human-readable column title.
func (d Dimension) Label() string {
	switch d {
	case DimYear:
		return "Year"
	case DimMonth:
		return "Month"
	case DimDay:
		return "Day"
	case DimQuarter:
		return "Quarter"
	case DimSeason:
		return "Season"
	case DimSKU:
		return "SKU"
	case DimCategory:
		return "Category"
	case DimSize:
		return "Size"
	case DimStyle:
		return "Style"
	case DimState:
		return "State"
	default:
		return string(d)
	}
}

// Value returns the typed field of r for this dimension: int for year and quarter,
// time.Month, time.Weekday, or string.
func (d Dimension) Value(r Record) any {
	switch d {
	case DimYear:
		return r.Year
	case DimMonth:
		return r.Month
	case DimDay:
		return r.Day
	case DimQuarter:
		return r.Quarter
	case DimSeason:
		return r.Season
	case DimSKU:
		return r.SKU
	case DimCategory:
		return r.Category
	case DimSize:
		return r.Size
	case DimStyle:
		return r.Style
	case DimState:
		return r.State
	default:
		return nil
	}
}

// Parse converts user input into a value of the dimension's type.
func (d Dimension) Parse(input string) (any, error) {
	s := strings.TrimSpace(input)
	switch d {
	case DimYear:
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", input)
		}
		return y, nil
	case DimMonth:
		m, err := ParseMonth(s)
		if err != nil {
			return nil, err
		}
		return m, nil
	case DimDay:
		wd, err := ParseWeekday(s)
		if err != nil {
			return nil, err
		}
		return wd, nil
	case DimQuarter:
		q, err := ParseQuarter(s)
		if err != nil {
			return nil, err
		}
		return q, nil
	case DimSeason, DimSKU, DimCategory, DimSize, DimStyle, DimState:
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, string(d))
	}
}

// FormatValue renders a dimension value as a label.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case time.Month:
		return val.String()
	case time.Weekday:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// FormatDimensionValue renders a value with dimension-specific labels.
func FormatDimensionValue(d Dimension, v any) string {
	if d == DimQuarter {
		if q, ok := v.(int); ok {
			return fmt.Sprintf("Q%d", q)
		}
	}
	return FormatValue(v)
}

// CompareValues orders two dimension values of the same type.
// Values of different types order by their labels.
func CompareValues(a, b any) int {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return compareInt(av, bv)
		}
	case time.Month:
		if bv, ok := b.(time.Month); ok {
			return compareInt(int(av), int(bv))
		}
	case time.Weekday:
		if bv, ok := b.(time.Weekday); ok {
			return compareInt(weekdayOrder(av), weekdayOrder(bv))
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// weekdayOrder puts Monday first.
func weekdayOrder(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ParseMonth accepts a full or abbreviated English month name or a number 1-12.
func ParseMonth(s string) (time.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("invalid month %q", s)
		}
		return time.Month(n), nil
	}
	lower := strings.ToLower(s)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || (len(lower) >= 3 && strings.HasPrefix(name, lower)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

// ParseWeekday accepts a full or abbreviated English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	lower := strings.ToLower(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if lower == name || (len(lower) >= 3 && strings.HasPrefix(name, lower)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid day %q", s)
}

// ParseQuarter accepts "Q1".."Q4" or "1".."4".
func ParseQuarter(s string) (int, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(s), "Q")
	q, err := strconv.Atoi(trimmed)
	if err != nil || q < 1 || q > 4 {
		return 0, fmt.Errorf("invalid quarter %q", s)
	}
	return q, nil
}

// Measure names a numeric field reduced by aggregations.
type Measure string

// Supported measures.
const (
	MeasureAmount   Measure = "amount"
	MeasureQuantity Measure = "quantity"
)

// ParseMeasure resolves a measure name. "qty" and "revenue" are accepted aliases.
func ParseMeasure(name string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "amount", "revenue", "profit":
		return MeasureAmount, nil
	case "quantity", "qty":
		return MeasureQuantity, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMeasure, name)
	}
}

// Label returns a human-readable title for the measure.
func (m Measure) Label() string {
	switch m {
	case MeasureAmount:
		return "Amount"
	case MeasureQuantity:
		return "Quantity"
	default:
		return string(m)
	}
}

// Value returns the measure for r and whether it is present.
func (m Measure) Value(r Record) (decimal.Decimal, bool) {
	switch m {
	case MeasureAmount:
		return r.Amount.Decimal, r.Amount.Valid
	case MeasureQuantity:
		return decimal.NewFromInt(r.Quantity), true
	default:
		return decimal.Zero, false
	}
}

// Reduction names how a measure is reduced within a group.
type Reduction string

// Supported reductions.
const (
	ReduceSum   Reduction = "sum"
	ReduceCount Reduction = "count"
)

// ParseReduction resolves a reduction name.
func ParseReduction(name string) (Reduction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sum", "":
		return ReduceSum, nil
	case "count":
		return ReduceCount, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReduction, name)
	}
}
