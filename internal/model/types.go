// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one sales-order line of the export.
type Record struct {
	Year     int
	Month    time.Month
	Day      time.Weekday
	Quarter  int
	Season   string
	SKU      string
	Category string
	Size     string
	Style    string
	State    string
	Quantity int64
	// Amount is invalid when the export left the cell empty.
	Amount decimal.NullDecimal
}

// Group is one entry of an aggregation result.
type Group struct {
	Key   any
	Label string
	Value decimal.Decimal
	Count int
}

// Summary holds the headline metrics of a filtered set.
type Summary struct {
	Amount   decimal.Decimal
	Quantity int64
	Orders   int
}

// Point is one year/month/day cell of the quantity-vs-amount breakdown.
type Point struct {
	Year     int
	Month    time.Month
	Day      time.Weekday
	Quantity int64
	Amount   decimal.Decimal
}

// DashboardConfig defines data source and display options shared by the CLI surfaces.
type DashboardConfig struct {
	Source   string
	DataPath string
	DBPath   string
	Page     string
	View     string
}
