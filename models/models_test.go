package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPointAccessors(t *testing.T) {
	p := DailyPoint{Date: "2026-01-02", Sources: map[string]*MinMax{
		"realmstock": nil,
		"realmeye":   {Min: 120, Max: 130},
	}}

	assert.Equal(t, Int64(130), p.Max("realmeye"))
	assert.Equal(t, Int64(120), p.Min("realmeye"))
	assert.Nil(t, p.Max("realmstock"))
	assert.Nil(t, p.Min("unknown"))
	assert.Equal(t, []string{"realmeye", "realmstock"}, p.SourceIDs())
}

func TestDailyPointMarshalOrder(t *testing.T) {
	p := DailyPoint{Date: "2026-01-02", Sources: map[string]*MinMax{
		"realmstock": nil,
		"realmeye":   {Min: 120, Max: 130},
	}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t,
		`{"date":"2026-01-02","realmeye_max":130,"realmeye_min":120,"realmstock_max":null,"realmstock_min":null}`,
		string(data))
}

func TestDailyPointUnmarshalHalfMissingSource(t *testing.T) {
	var p DailyPoint
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-01","a_max":5,"a_min":null,"b_max":3,"b_min":1}`), &p))

	assert.Equal(t, "2026-01-01", p.Date)
	assert.Contains(t, p.Sources, "a")
	assert.Nil(t, p.Sources["a"])
	assert.Equal(t, &MinMax{Min: 1, Max: 3}, p.Sources["b"])
}

func TestDailyPointUnmarshalRequiresDate(t *testing.T) {
	var p DailyPoint
	assert.Error(t, json.Unmarshal([]byte(`{"a_max":5,"a_min":1}`), &p))
}

func TestTableRowMarshalIncludesDeltas(t *testing.T) {
	row := TableRow{
		DailyPoint: DailyPoint{Date: "2026-01-02", Sources: map[string]*MinMax{"a": {Min: 1, Max: 4}}},
		Deltas:     map[string]*int64{"a": Int64(-2)},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2026-01-02","a_max":4,"a_min":1,"a_delta":-2}`, string(data))
}
