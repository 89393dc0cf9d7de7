// Package analytics implements the filter-and-aggregate pipeline behind every dashboard view.
package analytics

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/salesdash/internal/model"
)

// Constraint restricts a single dimension, either to one exact value or to a set.
type Constraint struct {
	multi  bool
	values []any
}

// Multi reports whether the constraint is a multi-select.
func (c Constraint) Multi() bool {
	return c.multi
}

// Values returns the selected values.
func (c Constraint) Values() []any {
	return append([]any(nil), c.values...)
}

// satisfied checks v against the constraint. Values compare with ==, so an int year never
// matches the string "2022". An empty multi-select is vacuously satisfied.
func (c Constraint) satisfied(v any) bool {
	if !c.multi {
		return len(c.values) == 1 && c.values[0] == v
	}
	if len(c.values) == 0 {
		return true
	}
	for _, want := range c.values {
		if want == v {
			return true
		}
	}
	return false
}

// Criteria maps dimensions to constraints. The zero value has no constraints.
type Criteria struct {
	constraints map[model.Dimension]Constraint
}

// Select constrains d to exactly value.
func (c *Criteria) Select(d model.Dimension, value any) *Criteria {
	c.set(d, Constraint{values: []any{value}})
	return c
}

// MultiSelect constrains d to the given set. An empty set behaves as no constraint.
func (c *Criteria) MultiSelect(d model.Dimension, values ...any) *Criteria {
	c.set(d, Constraint{multi: true, values: append([]any(nil), values...)})
	return c
}

// Clear removes any constraint on d.
func (c *Criteria) Clear(d model.Dimension) *Criteria {
	delete(c.constraints, d)
	return c
}

func (c *Criteria) set(d model.Dimension, con Constraint) {
	if c.constraints == nil {
		c.constraints = make(map[model.Dimension]Constraint)
	}
	c.constraints[d] = con
}

// Constraint returns the constraint on d, if any.
func (c Criteria) Constraint(d model.Dimension) (Constraint, bool) {
	con, ok := c.constraints[d]
	return con, ok
}

// Dimensions returns the constrained dimensions in display order.
func (c Criteria) Dimensions() []model.Dimension {
	out := make([]model.Dimension, 0, len(c.constraints))
	for _, d := range model.Dimensions {
		if _, ok := c.constraints[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Empty reports whether no dimension is constrained.
func (c Criteria) Empty() bool {
	return len(c.constraints) == 0
}

// Clone returns an independent copy.
func (c Criteria) Clone() Criteria {
	out := Criteria{}
	for d, con := range c.constraints {
		out.set(d, Constraint{multi: con.multi, values: append([]any(nil), con.values...)})
	}
	return out
}

// String renders the criteria as "dim=value" pairs, or "none".
func (c Criteria) String() string {
	dims := c.Dimensions()
	if len(dims) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		con := c.constraints[d]
		labels := make([]string, 0, len(con.values))
		for _, v := range con.values {
			labels = append(labels, model.FormatDimensionValue(d, v))
		}
		parts = append(parts, fmt.Sprintf("%s=%s", d, strings.Join(labels, ",")))
	}
	return strings.Join(parts, " ")
}

// Match reports whether r satisfies every constraint in c.
func Match(r model.Record, c Criteria) bool {
	for d, con := range c.constraints {
		if !con.satisfied(d.Value(r)) {
			return false
		}
	}
	return true
}

// Apply returns the records matching c, preserving their relative order. The result is a
// new slice even when c is empty.
func Apply(records []model.Record, c Criteria) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if Match(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// Control describes one filter widget of the dashboard.
type Control struct {
	Dimension model.Dimension
	Multi     bool
	Label     string
}

// Controls lists the filter pane in display order. Year, quarter and season are
// single-value selects; the rest accept several values.
var Controls = []Control{
	{Dimension: model.DimYear, Label: "Year"},
	{Dimension: model.DimMonth, Multi: true, Label: "Month"},
	{Dimension: model.DimQuarter, Label: "Quarter"},
	{Dimension: model.DimDay, Multi: true, Label: "Day"},
	{Dimension: model.DimSeason, Label: "Season"},
	{Dimension: model.DimCategory, Multi: true, Label: "Category"},
	{Dimension: model.DimSize, Multi: true, Label: "Size"},
}

// ControlFor returns the control bound to d.
func ControlFor(d model.Dimension) (Control, bool) {
	for _, ctl := range Controls {
		if ctl.Dimension == d {
			return ctl, true
		}
	}
	return Control{}, false
}

// BuildCriteria parses raw control input into criteria. Blank inputs are ignored. Inputs for
// single-value controls must carry at most one value; dimensions without a control become a
// select for one value and a multi-select otherwise.
func BuildCriteria(raw map[model.Dimension][]string) (Criteria, error) {
	var c Criteria
	for _, d := range model.Dimensions {
		inputs, ok := raw[d]
		if !ok {
			continue
		}
		values := make([]any, 0, len(inputs))
		for _, in := range inputs {
			if strings.TrimSpace(in) == "" {
				continue
			}
			v, err := d.Parse(in)
			if err != nil {
				return Criteria{}, fmt.Errorf("%s filter: %w", d, err)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}
		multi := len(values) > 1
		if ctl, ok := ControlFor(d); ok {
			if !ctl.Multi && len(values) > 1 {
				return Criteria{}, fmt.Errorf("%s filter accepts a single value", d)
			}
			multi = ctl.Multi
		}
		if multi {
			c.MultiSelect(d, values...)
		} else {
			c.Select(d, values[0])
		}
	}
	return c, nil
}

// SplitValues splits comma-separated input into trimmed non-empty values.
func SplitValues(inputs ...string) []string {
	var out []string
	for _, in := range inputs {
		for _, part := range strings.Split(in, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// CriterionSpec is the serializable form of one constraint.
type CriterionSpec struct {
	Dimension string   `json:"dimension"`
	Multi     bool     `json:"multi"`
	Values    []string `json:"values"`
}

// Specs encodes c for storage.
func (c Criteria) Specs() []CriterionSpec {
	dims := c.Dimensions()
	out := make([]CriterionSpec, 0, len(dims))
	for _, d := range dims {
		con := c.constraints[d]
		values := make([]string, 0, len(con.values))
		for _, v := range con.values {
			values = append(values, model.FormatValue(v))
		}
		out = append(out, CriterionSpec{Dimension: string(d), Multi: con.multi, Values: values})
	}
	return out
}

// CriteriaFromSpecs decodes stored specs back into criteria.
func CriteriaFromSpecs(specs []CriterionSpec) (Criteria, error) {
	var c Criteria
	for _, spec := range specs {
		d, err := model.ParseDimension(spec.Dimension)
		if err != nil {
			return Criteria{}, err
		}
		values := make([]any, 0, len(spec.Values))
		for _, raw := range spec.Values {
			v, err := d.Parse(raw)
			if err != nil {
				return Criteria{}, fmt.Errorf("%s filter: %w", d, err)
			}
			values = append(values, v)
		}
		if spec.Multi {
			c.MultiSelect(d, values...)
			continue
		}
		if len(values) != 1 {
			return Criteria{}, fmt.Errorf("%s filter: select needs exactly one value", d)
		}
		c.Select(d, values[0])
	}
	return c, nil
}

// Merge returns a copy of base with every constraint of overlay applied on top.
func Merge(base, overlay Criteria) Criteria {
	out := base.Clone()
	for d, con := range overlay.constraints {
		out.set(d, Constraint{multi: con.multi, values: append([]any(nil), con.values...)})
	}
	return out
}
