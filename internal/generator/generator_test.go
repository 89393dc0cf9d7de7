package generator

import (
	"testing"
	"time"

	"github.com/verte-zerg/salesdash/internal/records"
)

func window() (time.Time, time.Time) {
	return time.Date(2022, time.March, 31, 0, 0, 0, 0, time.UTC), time.Date(2022, time.June, 29, 0, 0, 0, 0, time.UTC)
}

func TestGenerateDeterministic(t *testing.T) {
	start, end := window()
	opts := Options{Rows: 50, Start: start, End: end, MissingAmountPct: 0.1}
	a, err := NewSeeded(7).Generate(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewSeeded(7).Generate(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 50 || len(b) != 50 {
		t.Fatalf("expected 50 rows, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].SKU != b[i].SKU || a[i].Month != b[i].Month || a[i].Amount.Valid != b[i].Amount.Valid || !a[i].Amount.Decimal.Equal(b[i].Amount.Decimal) {
			t.Fatalf("row %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateRecordsAreConsistent(t *testing.T) {
	start, end := window()
	recs, err := NewSeeded(1).Generate(Options{Rows: 500, Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range recs {
		if r.Year != 2022 || r.Month < time.March || r.Month > time.June {
			t.Fatalf("row %d outside window: %d %s", i, r.Year, r.Month)
		}
		if r.Quarter != records.QuarterOf(r.Month) || r.Season != records.SeasonOf(r.Month) {
			t.Fatalf("row %d has inconsistent date parts", i)
		}
		if r.SKU != r.Style+"-"+r.Size {
			t.Fatalf("row %d sku %q does not match style and size", i, r.SKU)
		}
		if !r.Amount.Valid || !r.Amount.Decimal.IsPositive() {
			t.Fatalf("row %d expected a positive amount", i)
		}
		if r.Quantity < 0 || r.Quantity > 3 {
			t.Fatalf("row %d quantity out of range: %d", i, r.Quantity)
		}
	}
}

func TestGenerateMissingAmounts(t *testing.T) {
	start, end := window()
	recs, err := NewSeeded(3).Generate(Options{Rows: 20, Start: start, End: end, MissingAmountPct: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range recs {
		if r.Amount.Valid {
			t.Fatalf("row %d expected missing amount", i)
		}
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	start, end := window()
	g := NewSeeded(1)
	if _, err := g.Generate(Options{Rows: -1, Start: start, End: end}); err == nil {
		t.Fatalf("expected error for negative rows")
	}
	if _, err := g.Generate(Options{Rows: 1, Start: end, End: start}); err == nil {
		t.Fatalf("expected error for reversed window")
	}
	if _, err := g.Generate(Options{Rows: 1, Start: start, End: end, MissingAmountPct: 1.5}); err == nil {
		t.Fatalf("expected error for probability above 1")
	}
}

func TestPickFollowsWeights(t *testing.T) {
	g := NewSeeded(11)
	counts := make([]int, 2)
	for i := 0; i < 1000; i++ {
		counts[g.pick([]float64{9, 1})]++
	}
	if counts[0] < 800 {
		t.Fatalf("expected heavy weight to dominate, got %v", counts)
	}
	if g.pick([]float64{0, 0, 1}) != 2 {
		t.Fatalf("expected only non-zero weight to be picked")
	}
}
