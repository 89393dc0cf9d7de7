package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/salesdash/internal/model"
)

// ErrUnknownPage reports a page name outside Pages.
var ErrUnknownPage = errors.New("unknown page")

// Page identifies one dashboard tab.
type Page string

const (
	PageTime     Page = "time"
	PageProducts Page = "products"
	PageMetrics  Page = "metrics"
	PageState    Page = "state"
)

// Pages lists the tabs in display order.
var Pages = []Page{PageTime, PageProducts, PageMetrics, PageState}

// ParsePage resolves a page by name or title; "" selects the time page.
func ParsePage(name string) (Page, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return PageTime, nil
	}
	for _, p := range Pages {
		if n == string(p) || n == strings.ToLower(p.Title()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, name)
}

// Title returns the tab heading.
func (p Page) Title() string {
	switch p {
	case PageTime:
		return "Analysis By Time"
	case PageProducts:
		return "Products"
	case PageMetrics:
		return "Metrics"
	case PageState:
		return "State"
	default:
		return string(p)
	}
}

// ChartKind hints how a chart is drawn.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// ChartSpec declares one aggregation of a page.
type ChartSpec struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Kind      ChartKind       `json:"kind"`
	Dimension model.Dimension `json:"dimension"`
	Measure   model.Measure   `json:"measure"`
	Reduction model.Reduction `json:"reduction"`
	Order     Order           `json:"order"`
	Limit     int             `json:"limit,omitempty"`
	// Highlight marks the largest and smallest groups when rendered.
	Highlight bool `json:"highlight,omitempty"`
}

func sumChart(id, title string, kind ChartKind, dim model.Dimension, measure model.Measure, order Order, limit int) ChartSpec {
	return ChartSpec{
		ID:        id,
		Title:     title,
		Kind:      kind,
		Dimension: dim,
		Measure:   measure,
		Reduction: model.ReduceSum,
		Order:     order,
		Limit:     limit,
	}
}

func timeChart(id, title string, kind ChartKind, dim model.Dimension) ChartSpec {
	spec := sumChart(id, title, kind, dim, model.MeasureAmount, OrderKey, 0)
	spec.Highlight = true
	return spec
}

var pageCharts = map[Page][]ChartSpec{
	PageTime: {
		timeChart("profit-by-year", "Profit by Year", ChartBar, model.DimYear),
		timeChart("profit-by-quarter", "Profit by Quarter", ChartPie, model.DimQuarter),
		timeChart("profit-by-month", "Profit by Month", ChartLine, model.DimMonth),
		timeChart("profit-by-day", "Profit by Day", ChartBar, model.DimDay),
	},
	PageProducts: {
		sumChart("top-sku-quantity", "Top 10 SKUs by Quantity", ChartBar, model.DimSKU, model.MeasureQuantity, OrderValue, 10),
		sumChart("top-sku-revenue", "Top 10 SKUs by Revenue", ChartBar, model.DimSKU, model.MeasureAmount, OrderValue, 10),
		sumChart("category-quantity", "Quantity by Category", ChartBar, model.DimCategory, model.MeasureQuantity, OrderValue, 0),
		sumChart("category-revenue", "Revenue by Category", ChartBar, model.DimCategory, model.MeasureAmount, OrderValue, 0),
		sumChart("size-quantity", "Quantity by Size", ChartPie, model.DimSize, model.MeasureQuantity, OrderValue, 0),
		sumChart("size-revenue", "Revenue by Size", ChartPie, model.DimSize, model.MeasureAmount, OrderValue, 0),
		sumChart("top-style-quantity", "Top 10 Styles by Quantity", ChartBar, model.DimStyle, model.MeasureQuantity, OrderValue, 10),
		sumChart("top-style-revenue", "Top 10 Styles by Revenue", ChartBar, model.DimStyle, model.MeasureAmount, OrderValue, 10),
	},
	PageMetrics: {
		sumChart("top-day-amount", "Top 10 Days by Amount", ChartBar, model.DimDay, model.MeasureAmount, OrderValue, 10),
		sumChart("top-day-quantity", "Top 10 Days by Quantity", ChartBar, model.DimDay, model.MeasureQuantity, OrderValue, 10),
	},
	PageState: {
		{
			ID:        "top-state-orders",
			Title:     "Top 10 States by Orders",
			Kind:      ChartBar,
			Dimension: model.DimState,
			Measure:   model.MeasureAmount,
			Reduction: model.ReduceCount,
			Order:     OrderValue,
			Limit:     10,
		},
		sumChart("top-state-quantity", "Top 10 States by Quantity", ChartBar, model.DimState, model.MeasureQuantity, OrderValue, 10),
		sumChart("top-state-amount", "Top 10 States by Amount", ChartBar, model.DimState, model.MeasureAmount, OrderValue, 10),
	},
}

// Charts returns the chart declarations of p.
func (p Page) Charts() []ChartSpec {
	return append([]ChartSpec(nil), pageCharts[p]...)
}

// Chart is a computed ChartSpec.
type Chart struct {
	ChartSpec
	Groups []model.Group `json:"groups"`
}

// BuildChart aggregates records according to spec.
func BuildChart(records []model.Record, spec ChartSpec) Chart {
	groups := Aggregate(records, spec.Dimension, spec.Measure, spec.Reduction)
	return Chart{ChartSpec: spec, Groups: Rank(groups, spec.Order, spec.Limit)}
}

// Request selects the page to compute and the filters to apply first.
type Request struct {
	Criteria Criteria
	Page     Page
}

// Response holds everything a page renders.
type Response struct {
	Page      Page
	Records   []model.Record
	Summary   model.Summary
	Charts    []Chart
	Breakdown []model.Point
}

// Compute filters records and evaluates every chart of the requested page against the
// filtered set. No matches yields empty charts and a zero summary.
func Compute(records []model.Record, req Request) Response {
	page := req.Page
	if page == "" {
		page = PageTime
	}
	filtered := Apply(records, req.Criteria)
	resp := Response{
		Page:    page,
		Records: filtered,
		Summary: Summarize(filtered),
	}
	for _, spec := range pageCharts[page] {
		resp.Charts = append(resp.Charts, BuildChart(filtered, spec))
	}
	if page == PageMetrics {
		resp.Breakdown = Breakdown(filtered)
	}
	return resp
}
