package ingest

import (
	"sort"

	"github.com/viktsys/playerstats/models"
)

// AggregateDaily reduces samples to one {min, max} per date. The reduction is
// commutative, so sample order does not affect the result.
func AggregateDaily(samples []models.Sample) map[string]models.MinMax {
	daily := make(map[string]models.MinMax)

	for _, s := range samples {
		existing, ok := daily[s.Date]
		if !ok {
			daily[s.Date] = models.MinMax{Min: s.Value, Max: s.Value}
			continue
		}
		if s.Value < existing.Min {
			existing.Min = s.Value
		}
		if s.Value > existing.Max {
			existing.Max = s.Value
		}
		daily[s.Date] = existing
	}

	return daily
}

// Merge unifies the daily aggregates of every source into one date-ascending
// series. Each point has an entry for every source in bySource, nil when that
// source did not report the date.
func Merge(bySource map[string]map[string]models.MinMax) []models.DailyPoint {
	dates := make(map[string]struct{})
	for _, daily := range bySource {
		for date := range daily {
			dates[date] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(dates))
	for date := range dates {
		sorted = append(sorted, date)
	}
	// Zero-padded ISO dates sort chronologically as strings.
	sort.Strings(sorted)

	points := make([]models.DailyPoint, 0, len(sorted))
	for _, date := range sorted {
		point := models.DailyPoint{
			Date:    date,
			Sources: make(map[string]*models.MinMax, len(bySource)),
		}
		for id, daily := range bySource {
			if mm, ok := daily[date]; ok {
				point.Sources[id] = &mm
			} else {
				point.Sources[id] = nil
			}
		}
		points = append(points, point)
	}

	return points
}
