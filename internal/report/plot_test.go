package report

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotLinesSingleSeriesUsesValueAxis(t *testing.T) {
	format := func(f float64) string { return fmt.Sprintf("%.0f", f) }
	lines := plotLines([]Series{{Name: "Profit", Values: []float64{10, 30, 20, 40}}}, 12, 4, false, format)
	if len(lines) != 4 {
		t.Fatalf("expected 4 plot rows, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "40"+axisSeparator) {
		t.Fatalf("expected max label on first row: %q", lines[0])
	}
	if !strings.Contains(lines[3], "10"+axisSeparator) {
		t.Fatalf("expected min label on last row: %q", lines[3])
	}
	for _, line := range lines {
		body := strings.SplitN(line, axisSeparator, 2)[1]
		if got := utf8.RuneCountInString(body); got != 12 {
			t.Fatalf("expected 12 braille cells, got %d", got)
		}
	}
}

func TestPlotLinesMultipleSeriesAddsLegend(t *testing.T) {
	lines := plotLines([]Series{
		{Name: "Quantity", Values: []float64{1, 2, 3}},
		{Name: "Amount", Values: []float64{300, 200, 100}},
	}, 10, 3, false, func(f float64) string { return fmt.Sprintf("%.0f", f) })
	if len(lines) != 5 {
		t.Fatalf("expected 3 rows plus 2 legend lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "100%") {
		t.Fatalf("expected percent axis: %q", lines[0])
	}
	if !strings.Contains(lines[4], "Amount (dashed): 100 .. 300") {
		t.Fatalf("unexpected legend line: %q", lines[4])
	}
}

func TestPlotLinesSkipsEmptySeries(t *testing.T) {
	if lines := plotLines([]Series{{Name: "empty"}}, 10, 3, false, nil); lines != nil {
		t.Fatalf("expected no output, got %v", lines)
	}
}

func TestPlotWidthFor(t *testing.T) {
	sepWidth := utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth-sepWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth-sepWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{0, 10}, 3)
	if got[0] != 0 || got[1] != 5 || got[2] != 10 {
		t.Fatalf("unexpected interpolation: %v", got)
	}
	got = resample([]float64{1, 3, 5, 7}, 2)
	if got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected averaging: %v", got)
	}
}
