// Package api exposes the dashboard computations as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/model"
	"github.com/verte-zerg/salesdash/internal/report"
	"github.com/verte-zerg/salesdash/internal/store"
)

// ViewStore looks up saved filter presets.
type ViewStore interface {
	GetView(ctx context.Context, name string) (store.View, error)
	ListViews(ctx context.Context) ([]store.View, error)
}

// Handler serves read-only queries over a fixed record set.
type Handler struct {
	records  []model.Record
	defaults analytics.Criteria
	views    ViewStore
}

// NewHandler builds a handler. defaults apply to every request unless a query parameter
// for the same dimension overrides them. views may be nil.
func NewHandler(records []model.Record, defaults analytics.Criteria, views ViewStore) *Handler {
	return &Handler{records: records, defaults: defaults.Clone(), views: views}
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/metrics", h.GetMetrics)
	api.GET("/pages", h.ListPages)
	api.GET("/pages/:page", h.GetPage)
	api.GET("/aggregate", h.GetAggregate)
	api.GET("/values/:dim", h.GetValues)
	api.GET("/views", h.ListViews)
}

// criteria combines the defaults, an optional ?view= preset and per-dimension query
// parameters, in that order of precedence.
func (h *Handler) criteria(c echo.Context) (analytics.Criteria, error) {
	base := h.defaults
	if name := c.QueryParam("view"); name != "" {
		if h.views == nil {
			return analytics.Criteria{}, echo.NewHTTPError(http.StatusBadRequest, "saved views are not available")
		}
		view, err := h.views.GetView(c.Request().Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			return analytics.Criteria{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if err != nil {
			return analytics.Criteria{}, err
		}
		preset, err := view.Criteria()
		if err != nil {
			return analytics.Criteria{}, err
		}
		base = analytics.Merge(base, preset)
	}

	params := c.QueryParams()
	raw := make(map[model.Dimension][]string)
	for _, d := range model.Dimensions {
		if values, ok := params[string(d)]; ok {
			raw[d] = analytics.SplitValues(values...)
		}
	}
	query, err := analytics.BuildCriteria(raw)
	if err != nil {
		return analytics.Criteria{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return analytics.Merge(base, query), nil
}

func getLimitParam(c echo.Context, defaultLimit int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
	}
	return limit, nil
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// GetHealth reports liveness and the number of loaded records.
func (h *Handler) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"records": len(h.records),
	})
}

// GetMetrics returns the metric cards for the filtered records.
func (h *Handler) GetMetrics(c echo.Context) error {
	crit, err := h.criteria(c)
	if err != nil {
		return err
	}
	filtered := analytics.Apply(h.records, crit)
	return c.JSON(http.StatusOK, map[string]any{
		"filters": crit.Specs(),
		"summary": report.NewSummaryDoc(analytics.Summarize(filtered)),
	})
}

type pageInfo struct {
	ID     analytics.Page        `json:"id"`
	Title  string                `json:"title"`
	Charts []analytics.ChartSpec `json:"charts"`
}

// ListPages describes every page and its charts.
func (h *Handler) ListPages(c echo.Context) error {
	pages := make([]pageInfo, 0, len(analytics.Pages))
	for _, p := range analytics.Pages {
		pages = append(pages, pageInfo{ID: p, Title: p.Title(), Charts: p.Charts()})
	}
	return c.JSON(http.StatusOK, pages)
}

// GetPage computes one page over the filtered records.
func (h *Handler) GetPage(c echo.Context) error {
	page, err := analytics.ParsePage(c.Param("page"))
	if err != nil {
		return badRequest(err)
	}
	crit, err := h.criteria(c)
	if err != nil {
		return err
	}
	resp := analytics.Compute(h.records, analytics.Request{Criteria: crit, Page: page})
	return c.JSON(http.StatusOK, report.NewDocument(resp, crit))
}

// GetAggregate runs an ad-hoc aggregation: ?dim=&measure=&op=&order=&limit=.
func (h *Handler) GetAggregate(c echo.Context) error {
	dim, err := model.ParseDimension(c.QueryParam("dim"))
	if err != nil {
		return badRequest(err)
	}
	measure := model.MeasureAmount
	if raw := c.QueryParam("measure"); raw != "" {
		if measure, err = model.ParseMeasure(raw); err != nil {
			return badRequest(err)
		}
	}
	op, err := model.ParseReduction(c.QueryParam("op"))
	if err != nil {
		return badRequest(err)
	}
	order, err := analytics.ParseOrder(c.QueryParam("order"))
	if err != nil {
		return badRequest(err)
	}
	limit, err := getLimitParam(c, 0)
	if err != nil {
		return err
	}
	crit, err := h.criteria(c)
	if err != nil {
		return err
	}

	spec := analytics.ChartSpec{
		ID:        "aggregate",
		Title:     measure.Label() + " by " + dim.Label(),
		Kind:      analytics.ChartBar,
		Dimension: dim,
		Measure:   measure,
		Reduction: op,
		Order:     order,
		Limit:     limit,
	}
	chart := analytics.BuildChart(analytics.Apply(h.records, crit), spec)
	return c.JSON(http.StatusOK, report.NewChartDoc(chart))
}

// GetValues lists the distinct values of a dimension across all records.
func (h *Handler) GetValues(c echo.Context) error {
	dim, err := model.ParseDimension(c.Param("dim"))
	if err != nil {
		return badRequest(err)
	}
	values := analytics.Distinct(h.records, dim)
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = model.FormatDimensionValue(dim, v)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"dimension": dim,
		"values":    labels,
	})
}

type viewInfo struct {
	ID      string                    `json:"id"`
	Name    string                    `json:"name"`
	Filters []analytics.CriterionSpec `json:"filters"`
}

// ListViews lists saved filter presets.
func (h *Handler) ListViews(c echo.Context) error {
	if h.views == nil {
		return c.JSON(http.StatusOK, []viewInfo{})
	}
	views, err := h.views.ListViews(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]viewInfo, 0, len(views))
	for _, v := range views {
		out = append(out, viewInfo{ID: v.ID, Name: v.Name, Filters: v.Filters})
	}
	return c.JSON(http.StatusOK, out)
}
