// Package generator builds synthetic sales exports.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/model"
	"github.com/verte-zerg/salesdash/internal/records"
)

type category struct {
	name   string
	prefix string
	price  int64
	weight float64
}

var catalog = []category{
	{name: "Set", prefix: "SET", price: 830, weight: 40},
	{name: "kurta", prefix: "JNE", price: 450, weight: 38},
	{name: "Western Dress", prefix: "J0", price: 760, weight: 12},
	{name: "Top", prefix: "TP", price: 520, weight: 8},
	{name: "Ethnic Dress", prefix: "ED", price: 720, weight: 1},
	{name: "Blouse", prefix: "BL", price: 520, weight: 0.7},
	{name: "Bottom", prefix: "BTM", price: 360, weight: 0.3},
}

var sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL", "Free"}

var sizeWeights = []float64{8, 13, 17, 17, 16, 13, 10, 6}

var states = []string{
	"MAHARASHTRA", "KARNATAKA", "TELANGANA", "UTTAR PRADESH", "TAMIL NADU",
	"DELHI", "KERALA", "WEST BENGAL", "ANDHRA PRADESH", "GUJARAT", "GOA",
}

var stateWeights = []float64{17, 13, 9, 8, 8, 7, 5, 5, 4, 3, 1}

const stylesPerCategory = 25

// Options controls Generate.
type Options struct {
	Rows  int
	Start time.Time
	End   time.Time
	// MissingAmountPct is the probability (0-1) of leaving an amount empty.
	MissingAmountPct float64
}

// Generator produces randomized order lines.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is fixed by seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns opts.Rows order lines dated between opts.Start and opts.End inclusive.
// Categories, sizes and states follow a skewed mix so top-N charts have a clear leader.
func (g *Generator) Generate(opts Options) ([]model.Record, error) {
	if opts.Rows < 0 {
		return nil, fmt.Errorf("rows must be >= 0")
	}
	if opts.MissingAmountPct < 0 || opts.MissingAmountPct > 1 {
		return nil, fmt.Errorf("missing amount probability must be between 0 and 1")
	}
	start := truncateDay(opts.Start)
	end := truncateDay(opts.End)
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	days := int(end.Sub(start).Hours()/24) + 1

	catWeights := make([]float64, len(catalog))
	for i, c := range catalog {
		catWeights[i] = c.weight
	}

	result := make([]model.Record, 0, opts.Rows)
	for i := 0; i < opts.Rows; i++ {
		parts := records.Decompose(start.AddDate(0, 0, g.rnd.Intn(days)))
		cat := catalog[g.pick(catWeights)]
		size := sizes[g.pick(sizeWeights)]
		style := fmt.Sprintf("%s%d", cat.prefix, 1000+g.rnd.Intn(stylesPerCategory)*37)
		qty := g.quantity()

		rec := model.Record{
			Year:     parts.Year,
			Month:    parts.Month,
			Day:      parts.Day,
			Quarter:  parts.Quarter,
			Season:   parts.Season,
			SKU:      style + "-" + size,
			Category: cat.name,
			Size:     size,
			Style:    style,
			State:    states[g.pick(stateWeights)],
			Quantity: qty,
		}
		if g.rnd.Float64() >= opts.MissingAmountPct {
			rec.Amount = decimal.NewNullDecimal(g.amount(cat.price, qty))
		}
		result = append(result, rec)
	}
	return result, nil
}

// pick returns an index drawn in proportion to weights.
func (g *Generator) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

// quantity is mostly 1, sometimes a cancelled 0 or a multi-item line.
func (g *Generator) quantity() int64 {
	switch r := g.rnd.Float64(); {
	case r < 0.06:
		return 0
	case r < 0.94:
		return 1
	case r < 0.99:
		return 2
	default:
		return 3
	}
}

// amount scales the list price by up to 25% either way; cancelled lines keep one unit's price.
func (g *Generator) amount(price, qty int64) decimal.Decimal {
	units := max(qty, 1)
	factor := decimal.NewFromFloat(0.75 + g.rnd.Float64()*0.5)
	return decimal.NewFromInt(price * units).Mul(factor).Round(2)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
