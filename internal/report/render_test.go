package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/model"
)

func record(year int, month time.Month, category string, qty int64, amount string) model.Record {
	return model.Record{
		Year:     year,
		Month:    month,
		Day:      time.Monday,
		Quarter:  (int(month)-1)/3 + 1,
		Season:   "Spring",
		SKU:      category + "-1",
		Category: category,
		Size:     "M",
		Style:    category,
		State:    "GOA",
		Quantity: qty,
		Amount:   decimal.NewNullDecimal(decimal.RequireFromString(amount)),
	}
}

func records() []model.Record {
	return []model.Record{
		record(2021, time.December, "Set", 1, "100"),
		record(2022, time.April, "kurta", 2, "300"),
		record(2022, time.May, "kurta", 3, "200"),
	}
}

func TestSummaryLines(t *testing.T) {
	lines := SummaryLines(model.Summary{Amount: decimal.RequireFromString("1234.5"), Quantity: 1200, Orders: 3})
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Total Profit")
	assert.Contains(t, lines[1], "$1,234.50")
	assert.Contains(t, lines[1], "1,200")
}

func TestChartLinesMarksExtremes(t *testing.T) {
	resp := analytics.Compute(records(), analytics.Request{Page: analytics.PageTime})
	lines := ChartLines(resp.Charts[0], Options{Width: 60})
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2021"))
	assert.True(t, strings.HasSuffix(lines[0], " min"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " max"), lines[1])
	assert.Contains(t, lines[1], "$500.00")
}

func TestChartLinesColorReplacesMarkers(t *testing.T) {
	resp := analytics.Compute(records(), analytics.Request{Page: analytics.PageTime})
	lines := ChartLines(resp.Charts[0], Options{Width: 60, Color: true})
	assert.Contains(t, lines[0], colorRed)
	assert.Contains(t, lines[1], colorGreen)
	assert.NotContains(t, lines[1], " max")
}

func TestChartLinesPieShares(t *testing.T) {
	chart := analytics.Chart{
		ChartSpec: analytics.ChartSpec{Kind: analytics.ChartPie, Measure: model.MeasureQuantity, Reduction: model.ReduceSum},
		Groups: []model.Group{
			{Label: "M", Value: decimal.NewFromInt(2)},
			{Label: "L", Value: decimal.NewFromInt(1)},
		},
	}
	lines := ChartLines(chart, Options{Width: 50})
	assert.Contains(t, lines[0], "(66.7%)")
	assert.Contains(t, lines[1], "(33.3%)")
}

func TestChartLinesEmpty(t *testing.T) {
	lines := ChartLines(analytics.Chart{}, Options{Width: 40})
	assert.Equal(t, []string{"No data for the current filters."}, lines)
}

func TestRenderPageMetrics(t *testing.T) {
	var buf bytes.Buffer
	resp := analytics.Compute(records(), analytics.Request{Page: analytics.PageMetrics})
	require.NoError(t, RenderPage(&buf, resp, Options{Width: 70, PlotHeight: 4}))
	out := buf.String()
	assert.Contains(t, out, "Metrics")
	assert.Contains(t, out, "Top 10 Days by Amount")
	assert.Contains(t, out, "Quantity vs Amount")
	assert.Contains(t, out, "December")
}

func TestNewDocumentJSON(t *testing.T) {
	var c analytics.Criteria
	c.Select(model.DimYear, 2022)
	resp := analytics.Compute(records(), analytics.Request{Criteria: c, Page: analytics.PageTime})

	doc := NewDocument(resp, c)
	assert.Equal(t, "Analysis By Time", doc.Title)
	assert.Equal(t, "$500.00", doc.Summary.AmountText)
	require.Len(t, doc.Charts, 4)

	byMonth := doc.Charts[2]
	require.Len(t, byMonth.Groups, 2)
	assert.Equal(t, "April", byMonth.Groups[0].Key)
	assert.Equal(t, "max", byMonth.Groups[0].Extreme)
	assert.Equal(t, "min", byMonth.Groups[1].Extreme)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"filters":[{"dimension":"year","multi":false,"values":["2022"]}]`)
	assert.Contains(t, string(raw), `"id":"profit-by-month"`)
}
