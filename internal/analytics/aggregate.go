package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/model"
)

// Order controls how a chart's groups are ranked.
type Order string

const (
	// OrderKey sorts groups by their natural key order.
	OrderKey Order = "key"
	// OrderValue sorts groups by descending value.
	OrderValue Order = "value"
)

// ParseOrder resolves an order name; "" means value order.
func ParseOrder(name string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "value", "desc":
		return OrderValue, nil
	case "key", "asc":
		return OrderKey, nil
	default:
		return "", fmt.Errorf("unknown order %q", name)
	}
}

// Aggregate partitions records by dim and reduces measure within each partition. Groups
// come back in first-encountered order. Sums skip missing measures; counts include them.
func Aggregate(records []model.Record, dim model.Dimension, measure model.Measure, op model.Reduction) []model.Group {
	index := make(map[any]int)
	groups := make([]model.Group, 0)
	for _, r := range records {
		key := dim.Value(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.Group{
				Key:   key,
				Label: model.FormatDimensionValue(dim, key),
				Value: decimal.Zero,
			})
		}
		g := &groups[i]
		g.Count++
		if op == model.ReduceCount {
			continue
		}
		if v, ok := measure.Value(r); ok {
			g.Value = g.Value.Add(v)
		}
	}
	if op == model.ReduceCount {
		for i := range groups {
			groups[i].Value = decimal.NewFromInt(int64(groups[i].Count))
		}
	}
	return groups
}

// SortByValue orders groups by descending value in place. Ties keep their relative order.
func SortByValue(groups []model.Group) []model.Group {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value.GreaterThan(groups[j].Value)
	})
	return groups
}

// SortByKey orders groups by ascending key in place.
func SortByKey(groups []model.Group) []model.Group {
	sort.SliceStable(groups, func(i, j int) bool {
		return model.CompareValues(groups[i].Key, groups[j].Key) < 0
	})
	return groups
}

// Top returns the first n groups, or all of them when n <= 0 or fewer than n exist.
func Top(groups []model.Group, n int) []model.Group {
	if n <= 0 || n >= len(groups) {
		return groups
	}
	return groups[:n:n]
}

// Rank sorts groups by order and truncates them to limit.
func Rank(groups []model.Group, order Order, limit int) []model.Group {
	if order == OrderKey {
		SortByKey(groups)
	} else {
		SortByValue(groups)
	}
	return Top(groups, limit)
}

// Extremes returns the largest and smallest group values. ok is false for no groups.
func Extremes(groups []model.Group) (maxValue, minValue decimal.Decimal, ok bool) {
	if len(groups) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	maxValue, minValue = groups[0].Value, groups[0].Value
	for _, g := range groups[1:] {
		if g.Value.GreaterThan(maxValue) {
			maxValue = g.Value
		}
		if g.Value.LessThan(minValue) {
			minValue = g.Value
		}
	}
	return maxValue, minValue, true
}

type pointKey struct {
	year  int
	month int
	day   int
}

// Breakdown sums quantity and amount per year, month and weekday, ordered by date parts.
func Breakdown(records []model.Record) []model.Point {
	index := make(map[pointKey]int)
	points := make([]model.Point, 0)
	for _, r := range records {
		key := pointKey{year: r.Year, month: int(r.Month), day: int(r.Day)}
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, model.Point{Year: r.Year, Month: r.Month, Day: r.Day, Amount: decimal.Zero})
		}
		p := &points[i]
		p.Quantity += r.Quantity
		if r.Amount.Valid {
			p.Amount = p.Amount.Add(r.Amount.Decimal)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return model.CompareValues(a.Day, b.Day) < 0
	})
	return points
}

// Distinct returns the distinct values of dim in key order.
func Distinct(records []model.Record, dim model.Dimension) []any {
	seen := make(map[any]struct{})
	out := make([]any, 0)
	for _, r := range records {
		v := dim.Value(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.CompareValues(out[i], out[j]) < 0
	})
	return out
}
