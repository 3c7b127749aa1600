package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	maxSuffix   = "_max"
	minSuffix   = "_min"
	deltaSuffix = "_delta"
)

// Sample is a single (date, value) observation read from a source.
type Sample struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// MinMax is the daily reduction of all samples one source reported for a date.
type MinMax struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// DailyAggregate is the stored form of one source's MinMax for one date.
type DailyAggregate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Date       string    `gorm:"size:10;uniqueIndex:uidx_source_date" json:"date"`
	Source     string    `gorm:"size:32;uniqueIndex:uidx_source_date" json:"source"`
	MinPlayers int64     `json:"min_players"`
	MaxPlayers int64     `json:"max_players"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyPoint is one date of the merged series. Sources holds an entry for
// every known source; a nil entry means that source has no data for Date.
type DailyPoint struct {
	Date    string
	Sources map[string]*MinMax
}

// Max returns the daily max of source, or nil when the source is missing.
func (p DailyPoint) Max(source string) *int64 {
	if mm := p.Sources[source]; mm != nil {
		v := mm.Max
		return &v
	}
	return nil
}

// Min returns the daily min of source, or nil when the source is missing.
func (p DailyPoint) Min(source string) *int64 {
	if mm := p.Sources[source]; mm != nil {
		v := mm.Min
		return &v
	}
	return nil
}

// SourceIDs returns the point's source keys in lexical order.
func (p DailyPoint) SourceIDs() []string {
	ids := make([]string, 0, len(p.Sources))
	for id := range p.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON writes the flat record form:
// {"date": ..., "<source>_max": ..., "<source>_min": ...}.
func (p DailyPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := p.writeFields(&buf); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p DailyPoint) writeFields(buf *bytes.Buffer) error {
	if err := writeField(buf, "date", p.Date, true); err != nil {
		return err
	}
	for _, id := range p.SourceIDs() {
		if err := writeField(buf, id+maxSuffix, p.Max(id), false); err != nil {
			return err
		}
		if err := writeField(buf, id+minSuffix, p.Min(id), false); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON reads the flat record form. A source whose max or min is null
// is decoded as missing.
func (p *DailyPoint) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	dateRaw, ok := fields["date"]
	if !ok {
		return fmt.Errorf("daily point: missing date")
	}
	if err := json.Unmarshal(dateRaw, &p.Date); err != nil {
		return fmt.Errorf("daily point: invalid date: %w", err)
	}
	delete(fields, "date")

	raw := make(map[string]*int64, len(fields))
	for key, value := range fields {
		var v *int64
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("daily point %s: invalid %s: %w", p.Date, key, err)
		}
		raw[key] = v
	}

	p.Sources = make(map[string]*MinMax)
	for key := range raw {
		var id string
		switch {
		case strings.HasSuffix(key, maxSuffix):
			id = strings.TrimSuffix(key, maxSuffix)
		case strings.HasSuffix(key, minSuffix):
			id = strings.TrimSuffix(key, minSuffix)
		default:
			continue
		}
		if _, seen := p.Sources[id]; seen {
			continue
		}
		maxV, minV := raw[id+maxSuffix], raw[id+minSuffix]
		if maxV == nil || minV == nil {
			p.Sources[id] = nil
			continue
		}
		p.Sources[id] = &MinMax{Min: *minV, Max: *maxV}
	}
	return nil
}

// Extreme is a value together with the date it was observed.
type Extreme struct {
	Value *int64  `json:"value"`
	Date  *string `json:"date"`
}

// Trend compares the latest primary value against the one Window records earlier.
type Trend struct {
	Window       int      `json:"window"`
	BaselineDate *string  `json:"baseline_date"`
	Absolute     *int64   `json:"absolute"`
	Percent      *float64 `json:"percent"`
}

// StatsSummary holds the derived statistics of a merged series.
type StatsSummary struct {
	Source          string  `json:"source"`
	CurrentValue    *int64  `json:"current_value"`
	AllTimePeak     Extreme `json:"all_time_peak"`
	AllTimeLow      Extreme `json:"all_time_low"`
	Trend           Trend   `json:"trend"`
	LastUpdatedDate *string `json:"last_updated_date"`
}

// TableRow is a DailyPoint extended with day-over-day deltas of each
// source's daily max.
type TableRow struct {
	DailyPoint
	Deltas map[string]*int64
}

// Delta returns the day-over-day change of source, or nil.
func (r TableRow) Delta(source string) *int64 {
	return r.Deltas[source]
}

func (r TableRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := r.writeFields(&buf); err != nil {
		return nil, err
	}
	for _, id := range r.SourceIDs() {
		if err := writeField(&buf, id+deltaSuffix, r.Deltas[id], false); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
