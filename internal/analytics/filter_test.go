package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/salesdash/internal/model"
)

func rec(year int, month time.Month, day time.Weekday, category, size string, qty int64, amount string) model.Record {
	r := model.Record{
		Year:     year,
		Month:    month,
		Day:      day,
		Quarter:  (int(month)-1)/3 + 1,
		Season:   "Spring",
		SKU:      category + "-" + size,
		Category: category,
		Size:     size,
		Style:    category,
		State:    "GOA",
		Quantity: qty,
	}
	if amount != "" {
		r.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	return r
}

func sample() []model.Record {
	return []model.Record{
		rec(2022, time.April, time.Saturday, "Set", "S", 1, "100"),
		rec(2022, time.May, time.Monday, "kurta", "M", 2, "50.25"),
		rec(2021, time.December, time.Sunday, "kurta", "L", 1, "10"),
		rec(2022, time.April, time.Sunday, "Set", "M", 3, ""),
	}
}

func TestApplyEmptyCriteriaIsIdentity(t *testing.T) {
	in := sample()
	out := Apply(in, Criteria{})
	require.Equal(t, in, out)

	out[0].SKU = "changed"
	assert.NotEqual(t, "changed", in[0].SKU, "Apply must return a new slice")
}

func TestApplySelectUsesTypedEquality(t *testing.T) {
	var c Criteria
	c.Select(model.DimYear, 2022)
	assert.Len(t, Apply(sample(), c), 3)

	var wrongType Criteria
	wrongType.Select(model.DimYear, "2022")
	assert.Empty(t, Apply(sample(), wrongType))
}

func TestApplyMultiSelectIsMembership(t *testing.T) {
	var c Criteria
	c.MultiSelect(model.DimMonth, time.April, time.December)
	out := Apply(sample(), c)
	require.Len(t, out, 3)
	assert.Equal(t, time.April, out[0].Month)
	assert.Equal(t, time.December, out[1].Month)
	assert.Equal(t, time.April, out[2].Month)
}

func TestApplyEmptyMultiSelectMatchesAll(t *testing.T) {
	var c Criteria
	c.MultiSelect(model.DimCategory)
	assert.Len(t, Apply(sample(), c), 4)
}

func TestApplyConjunctionAcrossDimensions(t *testing.T) {
	var c Criteria
	c.Select(model.DimYear, 2022).MultiSelect(model.DimCategory, "Set").MultiSelect(model.DimDay, time.Sunday)
	out := Apply(sample(), c)
	require.Len(t, out, 1)
	assert.Equal(t, "Set-M", out[0].SKU)
}

func TestApplyNoMatches(t *testing.T) {
	var c Criteria
	c.Select(model.DimYear, 1999)
	out := Apply(sample(), c)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestCriteriaClearAndDimensions(t *testing.T) {
	var c Criteria
	assert.True(t, c.Empty())
	c.Select(model.DimSeason, "Spring").Select(model.DimYear, 2022)
	assert.Equal(t, []model.Dimension{model.DimYear, model.DimSeason}, c.Dimensions())
	assert.Equal(t, "year=2022 season=Spring", c.String())

	c.Clear(model.DimYear)
	assert.Equal(t, []model.Dimension{model.DimSeason}, c.Dimensions())
	c.Clear(model.DimSeason)
	assert.True(t, c.Empty())
	assert.Equal(t, "none", c.String())
}

func TestBuildCriteria(t *testing.T) {
	c, err := BuildCriteria(map[model.Dimension][]string{
		model.DimYear:     {"2022"},
		model.DimMonth:    {"April"},
		model.DimQuarter:  {"Q2"},
		model.DimCategory: {"Set", "kurta"},
		model.DimSize:     {" "},
	})
	require.NoError(t, err)

	year, ok := c.Constraint(model.DimYear)
	require.True(t, ok)
	assert.False(t, year.Multi())
	assert.Equal(t, []any{2022}, year.Values())

	month, ok := c.Constraint(model.DimMonth)
	require.True(t, ok)
	assert.True(t, month.Multi(), "month is a multi-select control")
	assert.Equal(t, []any{time.April}, month.Values())

	_, ok = c.Constraint(model.DimSize)
	assert.False(t, ok, "blank input is not a constraint")
}

func TestBuildCriteriaErrors(t *testing.T) {
	_, err := BuildCriteria(map[model.Dimension][]string{model.DimYear: {"2021", "2022"}})
	assert.Error(t, err)

	_, err = BuildCriteria(map[model.Dimension][]string{model.DimMonth: {"Smarch"}})
	assert.Error(t, err)
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitValues("a, b", " ,c,"))
	assert.Nil(t, SplitValues(""))
}

func TestCriteriaSpecsRoundTrip(t *testing.T) {
	var c Criteria
	c.Select(model.DimQuarter, 2).MultiSelect(model.DimDay, time.Monday, time.Sunday)

	decoded, err := CriteriaFromSpecs(c.Specs())
	require.NoError(t, err)
	assert.Equal(t, Apply(sample(), c), Apply(sample(), decoded))
	assert.Equal(t, c.String(), decoded.String())
}

func TestCriteriaFromSpecsRejectsBadSelect(t *testing.T) {
	_, err := CriteriaFromSpecs([]CriterionSpec{{Dimension: "year", Values: []string{"2021", "2022"}}})
	assert.Error(t, err)

	_, err = CriteriaFromSpecs([]CriterionSpec{{Dimension: "colour", Values: []string{"red"}}})
	assert.ErrorIs(t, err, model.ErrUnknownDimension)
}

func TestMergeOverridesBase(t *testing.T) {
	var base, overlay Criteria
	base.Select(model.DimYear, 2021).Select(model.DimSeason, "Winter")
	overlay.Select(model.DimYear, 2022)

	merged := Merge(base, overlay)
	year, _ := merged.Constraint(model.DimYear)
	assert.Equal(t, []any{2022}, year.Values())
	_, ok := merged.Constraint(model.DimSeason)
	assert.True(t, ok)

	baseYear, _ := base.Constraint(model.DimYear)
	assert.Equal(t, []any{2021}, baseYear.Values(), "base must be left untouched")
}
