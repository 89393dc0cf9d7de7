package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/model"
)

// ErrMissingColumn reports a header without a required column.
var ErrMissingColumn = errors.New("missing column")

// ParseError describes a malformed cell in the export.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type column int

const (
	colDate column = iota
	colYear
	colMonth
	colDay
	colQuarter
	colSeason
	colSKU
	colCategory
	colSize
	colStyle
	colState
	colQty
	colAmount
	colCount
)

var columnNames = [colCount]string{
	colDate:     "Date",
	colYear:     "Order_Year",
	colMonth:    "Order_Month",
	colDay:      "Order_Day",
	colQuarter:  "quarter",
	colSeason:   "season",
	colSKU:      "SKU",
	colCategory: "Category",
	colSize:     "Size",
	colStyle:    "Style",
	colState:    "ship-state",
	colQty:      "Qty",
	colAmount:   "Amount",
}

var headerAliases = map[string]column{
	"date":        colDate,
	"order_date":  colDate,
	"order_year":  colYear,
	"year":        colYear,
	"order_month": colMonth,
	"month":       colMonth,
	"order_day":   colDay,
	"day":         colDay,
	"quarter":     colQuarter,
	"season":      colSeason,
	"sku":         colSKU,
	"category":    colCategory,
	"size":        colSize,
	"style":       colStyle,
	"ship-state":  colState,
	"ship_state":  colState,
	"state":       colState,
	"qty":         colQty,
	"quantity":    colQty,
	"amount":      colAmount,
}

var requiredColumns = []column{colSKU, colCategory, colSize, colStyle, colState, colQty, colAmount}

var datePartColumns = []column{colYear, colMonth, colDay, colQuarter, colSeason}

// Load reads a CSV export from path. Any missing or malformed input is an error; no
// partial store is returned.
func Load(path string) (*Store, error) {
	start := time.Now()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales export: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only export.
			_ = cerr
		}
	}()

	recs, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Info("loaded sales export", "path", path, "records", len(recs), "elapsed", time.Since(start))
	return NewStore(recs), nil
}

// ReadCSV parses every row of a CSV export with a header line.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sales export is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var out []model.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, index, line)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func mapHeader(header []string) ([colCount]int, error) {
	var index [colCount]int
	for i := range index {
		index[i] = -1
	}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if col, ok := headerAliases[key]; ok && index[col] < 0 {
			index[col] = i
		}
	}
	for _, col := range requiredColumns {
		if index[col] < 0 {
			return index, fmt.Errorf("%w: %s", ErrMissingColumn, columnNames[col])
		}
	}
	if index[colDate] < 0 {
		for _, col := range datePartColumns {
			if index[col] < 0 {
				return index, fmt.Errorf("%w: %s (or Date)", ErrMissingColumn, columnNames[col])
			}
		}
	}
	return index, nil
}

func parseRow(row []string, index [colCount]int, line int) (model.Record, error) {
	cell := func(col column) string {
		i := index[col]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	fail := func(col column, err error) (model.Record, error) {
		return model.Record{}, &ParseError{Line: line, Column: columnNames[col], Err: err}
	}

	var rec model.Record
	if index[colDate] >= 0 {
		t, err := ParseDate(cell(colDate))
		if err != nil {
			return fail(colDate, err)
		}
		parts := Decompose(t)
		rec.Year, rec.Month, rec.Day, rec.Quarter, rec.Season = parts.Year, parts.Month, parts.Day, parts.Quarter, parts.Season
	} else {
		year, err := strconv.Atoi(cell(colYear))
		if err != nil {
			return fail(colYear, fmt.Errorf("invalid year %q", cell(colYear)))
		}
		month, err := model.ParseMonth(cell(colMonth))
		if err != nil {
			return fail(colMonth, err)
		}
		day, err := model.ParseWeekday(cell(colDay))
		if err != nil {
			return fail(colDay, err)
		}
		quarter, err := model.ParseQuarter(cell(colQuarter))
		if err != nil {
			return fail(colQuarter, err)
		}
		season := cell(colSeason)
		if season == "" {
			return fail(colSeason, errors.New("empty season"))
		}
		rec.Year, rec.Month, rec.Day, rec.Quarter, rec.Season = year, month, day, quarter, season
	}

	rec.SKU = cell(colSKU)
	rec.Category = cell(colCategory)
	rec.Size = cell(colSize)
	rec.Style = cell(colStyle)
	rec.State = cell(colState)

	qty, err := parseQuantity(cell(colQty))
	if err != nil {
		return fail(colQty, err)
	}
	rec.Quantity = qty

	amount, err := parseAmount(cell(colAmount))
	if err != nil {
		return fail(colAmount, err)
	}
	rec.Amount = amount
	return rec, nil
}

func parseQuantity(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative quantity %d", n)
		}
		return n, nil
	}
	// Exports written from float columns carry "1.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative quantity %q", s)
	}
	return int64(f), nil
}

func parseAmount(s string) (decimal.NullDecimal, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "na":
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
