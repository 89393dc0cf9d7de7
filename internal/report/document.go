package report

import (
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/model"
)

// SummaryDoc is the JSON form of the metric cards.
type SummaryDoc struct {
	Amount       decimal.Decimal `json:"amount"`
	AmountText   string          `json:"amount_text"`
	Quantity     int64           `json:"quantity"`
	QuantityText string          `json:"quantity_text"`
	Orders       int             `json:"orders"`
	OrdersText   string          `json:"orders_text"`
}

// GroupDoc is one chart entry.
type GroupDoc struct {
	Key       string          `json:"key"`
	Value     decimal.Decimal `json:"value"`
	ValueText string          `json:"value_text"`
	Count     int             `json:"count"`
	Extreme   string          `json:"extreme,omitempty"`
}

// ChartDoc is a computed chart.
type ChartDoc struct {
	analytics.ChartSpec
	Groups []GroupDoc `json:"groups"`
}

// PointDoc is one breakdown cell.
type PointDoc struct {
	Year     int             `json:"year"`
	Month    string          `json:"month"`
	Day      string          `json:"day"`
	Quantity int64           `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// Document is the JSON form of a computed page.
type Document struct {
	Page      analytics.Page            `json:"page"`
	Title     string                    `json:"title"`
	Filters   []analytics.CriterionSpec `json:"filters"`
	Summary   SummaryDoc                `json:"summary"`
	Charts    []ChartDoc                `json:"charts"`
	Breakdown []PointDoc                `json:"breakdown,omitempty"`
}

// NewSummaryDoc converts metric cards.
func NewSummaryDoc(s model.Summary) SummaryDoc {
	return SummaryDoc{
		Amount:       s.Amount,
		AmountText:   FormatAmount(s.Amount),
		Quantity:     s.Quantity,
		QuantityText: FormatCount(s.Quantity),
		Orders:       s.Orders,
		OrdersText:   FormatCount(int64(s.Orders)),
	}
}

// NewChartDoc converts a computed chart, tagging the extremes of highlighted charts.
func NewChartDoc(chart analytics.Chart) ChartDoc {
	hi, lo, _ := analytics.Extremes(chart.Groups)
	groups := make([]GroupDoc, len(chart.Groups))
	for i, g := range chart.Groups {
		doc := GroupDoc{
			Key:       g.Label,
			Value:     g.Value,
			ValueText: FormatMeasure(chart.Measure, chart.Reduction, g.Value),
			Count:     g.Count,
		}
		if chart.Highlight && len(chart.Groups) > 1 {
			switch {
			case g.Value.Equal(hi):
				doc.Extreme = "max"
			case g.Value.Equal(lo):
				doc.Extreme = "min"
			}
		}
		groups[i] = doc
	}
	return ChartDoc{ChartSpec: chart.ChartSpec, Groups: groups}
}

// NewDocument converts a computed page and the criteria that produced it.
func NewDocument(resp analytics.Response, c analytics.Criteria) Document {
	doc := Document{
		Page:    resp.Page,
		Title:   resp.Page.Title(),
		Filters: c.Specs(),
		Summary: NewSummaryDoc(resp.Summary),
		Charts:  make([]ChartDoc, 0, len(resp.Charts)),
	}
	for _, chart := range resp.Charts {
		doc.Charts = append(doc.Charts, NewChartDoc(chart))
	}
	for _, p := range resp.Breakdown {
		doc.Breakdown = append(doc.Breakdown, PointDoc{
			Year:     p.Year,
			Month:    p.Month.String(),
			Day:      p.Day.String(),
			Quantity: p.Quantity,
			Amount:   p.Amount,
		})
	}
	return doc
}
