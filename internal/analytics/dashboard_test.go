package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/salesdash/internal/model"
)

func TestParsePage(t *testing.T) {
	p, err := ParsePage("")
	require.NoError(t, err)
	assert.Equal(t, PageTime, p)

	p, err = ParsePage("Analysis By Time")
	require.NoError(t, err)
	assert.Equal(t, PageTime, p)

	p, err = ParsePage("STATE")
	require.NoError(t, err)
	assert.Equal(t, PageState, p)

	_, err = ParsePage("inventory")
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestComputeTimePage(t *testing.T) {
	var c Criteria
	c.Select(model.DimYear, 2022)
	resp := Compute(sample(), Request{Criteria: c, Page: PageTime})

	assert.Len(t, resp.Records, 3)
	assert.Equal(t, 3, resp.Summary.Orders)
	assert.Equal(t, int64(6), resp.Summary.Quantity)
	assert.Equal(t, "150.25", resp.Summary.Amount.String())

	require.Len(t, resp.Charts, 4)
	byMonth := resp.Charts[2]
	assert.Equal(t, "profit-by-month", byMonth.ID)
	require.Len(t, byMonth.Groups, 2)
	assert.Equal(t, time.April, byMonth.Groups[0].Key)
	assert.Equal(t, "100", byMonth.Groups[0].Value.String())
	assert.Equal(t, time.May, byMonth.Groups[1].Key)

	byQuarter := resp.Charts[1]
	assert.Equal(t, "Q2", byQuarter.Groups[0].Label)
	assert.Nil(t, resp.Breakdown)
}

func TestComputeEveryPageUsesFilteredRecords(t *testing.T) {
	var c Criteria
	c.MultiSelect(model.DimCategory, "kurta")
	for _, page := range Pages {
		resp := Compute(sample(), Request{Criteria: c, Page: page})
		for _, chart := range resp.Charts {
			total := 0
			for _, g := range chart.Groups {
				total += g.Count
			}
			assert.LessOrEqual(t, total, 2, "%s/%s", page, chart.ID)
		}
	}
}

func TestComputeNoMatchesYieldsEmptyCharts(t *testing.T) {
	var c Criteria
	c.Select(model.DimSeason, "Monsoon")
	resp := Compute(sample(), Request{Criteria: c, Page: PageProducts})
	assert.Empty(t, resp.Records)
	assert.Zero(t, resp.Summary.Orders)
	assert.True(t, resp.Summary.Amount.IsZero())
	require.Len(t, resp.Charts, len(PageProducts.Charts()))
	for _, chart := range resp.Charts {
		assert.Empty(t, chart.Groups)
	}
}

func TestComputeStateTopTen(t *testing.T) {
	var in []model.Record
	for i := 0; i < 12; i++ {
		for j := 0; j <= i; j++ {
			in = append(in, model.Record{State: fmt.Sprintf("S%02d", i), Quantity: 1})
		}
	}
	resp := Compute(in, Request{Page: PageState})
	orders := resp.Charts[0]
	assert.Equal(t, model.ReduceCount, orders.Reduction)
	require.Len(t, orders.Groups, 10)
	assert.Equal(t, "S11", orders.Groups[0].Key)
	assert.Equal(t, "12", orders.Groups[0].Value.String())
	assert.Equal(t, "S02", orders.Groups[9].Key)
}

func TestComputeMetricsBreakdown(t *testing.T) {
	resp := Compute(sample(), Request{Page: PageMetrics})
	require.Len(t, resp.Charts, 2)
	require.NotEmpty(t, resp.Breakdown)
	assert.Equal(t, 2021, resp.Breakdown[0].Year)
}

func TestPageChartsReturnsCopy(t *testing.T) {
	charts := PageTime.Charts()
	charts[0].Title = "changed"
	assert.Equal(t, "Profit by Year", PageTime.Charts()[0].Title)
}
