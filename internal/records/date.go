package records

import (
	"fmt"
	"strings"
	"time"
)

// Season names derived from the order month.
const (
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonAutumn = "Autumn"
)

var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"01-02-2006",
	"01/02/2006",
	"01/02/06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// DateParts is an order date decomposed into its dashboard categories.
type DateParts struct {
	Year    int
	Month   time.Month
	Day     time.Weekday
	Quarter int
	Season  string
}

// Decompose derives the year, month, weekday, quarter and season of t.
func Decompose(t time.Time) DateParts {
	return DateParts{
		Year:    t.Year(),
		Month:   t.Month(),
		Day:     t.Weekday(),
		Quarter: QuarterOf(t.Month()),
		Season:  SeasonOf(t.Month()),
	}
}

// QuarterOf returns the calendar quarter (1-4) of m.
func QuarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

// SeasonOf returns the meteorological season of m.
func SeasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// ParseDate parses an order date in any of the layouts seen in sales exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
