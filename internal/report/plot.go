package report

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is a named run of values drawn as one line.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisWidth         = 12
	axisSeparator     = " │ "
	colorReset        = "\x1b[0m"
	colorGreen        = "\x1b[32m"
	colorRed          = "\x1b[31m"
	fallbackWidth     = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m"}

// PlotWidthFor returns the drawable width left after the axis within totalWidth.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisWidth-utf8.RuneCountInString(axisSeparator), minPlotWidth)
}

// TerminalWidth reports the stdout width, or 80 when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// ColorEnabled reports whether ANSI colors should be written to stdout.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// plotLines draws series as a braille line chart. A single series is labelled with its
// own values; several series are scaled independently and labelled in percent.
func plotLines(series []Series, width, height int, color bool, format func(float64) string) []string {
	kept := series[:0:0]
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	width = max(width, minPlotWidth)

	type bounds struct{ lo, hi float64 }
	ranges := make([]bounds, len(kept))
	grids := make([][][]uint8, len(kept))
	for si, s := range kept {
		values := resample(s.Values, width)
		lo, hi := valueRange(values)
		if math.Abs(hi-lo) < 1e-9 {
			lo--
			hi++
		}
		ranges[si] = bounds{lo: lo, hi: hi}
		grids[si] = newGrid(height, width)

		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, scaleRow(v, lo, hi, height*4)
			if prevX < 0 {
				if style.draws(px) {
					setDot(grids[si], px, py)
				}
			} else {
				bresenham(prevX, prevY, px, py, func(dx, dy int) {
					if style.draws(dx) {
						setDot(grids[si], dx, dy)
					}
				})
			}
			prevX, prevY = px, py
		}
	}

	labels := make([]string, height)
	if len(kept) == 1 {
		labels[0] = format(ranges[0].hi)
		labels[height-1] = format(ranges[0].lo)
		if height > 2 {
			labels[height/2] = format((ranges[0].hi + ranges[0].lo) / 2)
		}
	} else {
		labels[0], labels[height-1] = "100%", "0%"
		if height > 2 {
			labels[height/2] = "50%"
		}
	}

	lines := make([]string, 0, height+len(kept)+1)
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisWidth, truncateLabel(labels[y], axisWidth), axisSeparator))
		for x := 0; x < width; x++ {
			mask, owner := mergeCell(grids, x, y)
			ch := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				row.WriteString(seriesColors[owner%len(seriesColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		lines = append(lines, row.String())
	}
	if len(kept) > 1 {
		for i, s := range kept {
			lines = append(lines, fmt.Sprintf("%*s%s%s (%s): %s .. %s", axisWidth, "", axisSeparator,
				s.Name, lineStyles[i%len(lineStyles)].name, format(ranges[i].lo), format(ranges[i].hi)))
		}
	}
	return lines
}

func truncateLabel(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

func newGrid(height, width int) [][]uint8 {
	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}
	return grid
}

func mergeCell(grids [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, grid := range grids {
		if cell := grid[y][x]; cell != 0 {
			if owner < 0 {
				owner = i
			}
			mask |= cell
		}
	}
	return mask, owner
}

func (ls lineStyle) draws(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(math.Floor(pos))
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func valueRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func scaleRow(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	return min(max(row, 0), rows-1)
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// setDot lights the braille dot at sub-cell coordinates (x, y).
func setDot(grid [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(grid) || cx >= len(grid[cy]) {
		return
	}
	// Braille dot bits, column-major with the bottom row last.
	masks := [2][4]uint8{{0x01, 0x02, 0x04, 0x40}, {0x08, 0x10, 0x20, 0x80}}
	grid[cy][cx] |= masks[x%2][y%4]
}
