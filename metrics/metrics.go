// Package metrics derives summary statistics and per-row deltas from a
// date-ascending merged series. All functions are pure and accept any
// input, including empty or unsorted series.
package metrics

import (
	"errors"
	"fmt"

	"github.com/viktsys/playerstats/models"
)

// DefaultTrendWindow is the number of records the trend looks back.
const DefaultTrendWindow = 30

// ErrUnsorted reports a series whose dates are not strictly ascending.
var ErrUnsorted = errors.New("points are not sorted by date")

// Builder computes statistics over the daily max of one primary source.
type Builder struct {
	Primary string
	Window  int
}

func NewBuilder(primary string, window int) Builder {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	return Builder{Primary: primary, Window: window}
}

// BuildStats returns the summary of points. Fields that cannot be derived
// are left nil.
func (b Builder) BuildStats(points []models.DailyPoint) models.StatsSummary {
	stats := models.StatsSummary{
		Source:       b.Primary,
		CurrentValue: b.latestValue(points),
		Trend:        b.trend(points),
	}

	for _, point := range points {
		peak := point.Max(b.Primary)
		if peak == nil {
			continue
		}
		if stats.AllTimePeak.Value == nil || *peak > *stats.AllTimePeak.Value {
			stats.AllTimePeak = models.Extreme{Value: peak, Date: models.String(point.Date)}
		}

		if low := point.Min(b.Primary); low != nil {
			if stats.AllTimeLow.Value == nil || *low < *stats.AllTimeLow.Value {
				stats.AllTimeLow = models.Extreme{Value: low, Date: models.String(point.Date)}
			}
		}
	}

	if len(points) > 0 {
		stats.LastUpdatedDate = models.String(points[len(points)-1].Date)
	}

	return stats
}

func (b Builder) latestValue(points []models.DailyPoint) *int64 {
	for i := len(points) - 1; i >= 0; i-- {
		if v := points[i].Max(b.Primary); v != nil {
			return v
		}
	}
	return nil
}

func (b Builder) trend(points []models.DailyPoint) models.Trend {
	t := models.Trend{Window: b.Window}
	if len(points) == 0 {
		return t
	}

	lastIndex := len(points) - 1
	baselineIndex := max(0, lastIndex-b.Window)
	t.BaselineDate = models.String(points[baselineIndex].Date)

	latest := points[lastIndex].Max(b.Primary)
	baseline := points[baselineIndex].Max(b.Primary)
	if latest == nil || baseline == nil {
		return t
	}

	absolute := *latest - *baseline
	t.Absolute = &absolute
	if *baseline != 0 {
		percent := float64(absolute) / float64(*baseline) * 100
		t.Percent = &percent
	}
	return t
}

// BuildTableRows extends every point with the day-over-day change of each
// source's daily max. The first row never has deltas.
func BuildTableRows(points []models.DailyPoint) []models.TableRow {
	rows := make([]models.TableRow, len(points))

	for i, point := range points {
		row := models.TableRow{
			DailyPoint: point,
			Deltas:     make(map[string]*int64, len(point.Sources)),
		}
		for id := range point.Sources {
			row.Deltas[id] = nil
			if i == 0 {
				continue
			}
			current, previous := point.Max(id), points[i-1].Max(id)
			if current == nil || previous == nil {
				continue
			}
			delta := *current - *previous
			row.Deltas[id] = &delta
		}
		rows[i] = row
	}

	return rows
}

// CheckSorted returns ErrUnsorted when the dates of points are not strictly
// ascending.
func CheckSorted(points []models.DailyPoint) error {
	for i := 1; i < len(points); i++ {
		if points[i].Date <= points[i-1].Date {
			return fmt.Errorf("%w: %q at index %d follows %q", ErrUnsorted, points[i].Date, i, points[i-1].Date)
		}
	}
	return nil
}
