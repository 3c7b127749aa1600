package metrics

import (
	"fmt"
	"time"

	"github.com/viktsys/playerstats/models"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive range of ISO dates. An empty bound is open.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether date falls inside r.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// FilterRange returns the points whose date falls inside r, in input order.
func FilterRange(points []models.DailyPoint, r DateRange) []models.DailyPoint {
	filtered := make([]models.DailyPoint, 0, len(points))
	for _, p := range points {
		if r.Contains(p.Date) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

var presets = map[string]func(time.Time) time.Time{
	"1M": func(t time.Time) time.Time { return t.AddDate(0, -1, 0) },
	"3M": func(t time.Time) time.Time { return t.AddDate(0, -3, 0) },
	"6M": func(t time.Time) time.Time { return t.AddDate(0, -6, 0) },
	"1Y": func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) },
}

// ResolvePreset turns a preset (1M, 3M, 6M, 1Y, ALL) into a range that ends
// at the last date of points.
func ResolvePreset(points []models.DailyPoint, preset string) (DateRange, error) {
	shift, known := presets[preset]
	if !known && preset != "ALL" {
		return DateRange{}, fmt.Errorf("unknown range preset %q", preset)
	}
	if len(points) == 0 {
		return DateRange{}, nil
	}

	first, last := points[0].Date, points[len(points)-1].Date
	if !known {
		return DateRange{Start: first, End: last}, nil
	}

	end, err := time.Parse(dateLayout, last)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid last date %q: %w", last, err)
	}
	start := shift(end).Format(dateLayout)
	if start < first {
		start = first
	}
	return DateRange{Start: start, End: last}, nil
}
