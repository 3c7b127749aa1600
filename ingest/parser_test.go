package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktsys/playerstats/models"
)

func TestParseLine(t *testing.T) {
	sample, ok := ParseLine("label,2026-01-02,130")
	require.True(t, ok)
	assert.Equal(t, models.Sample{Date: "2026-01-02", Value: 130}, sample)
}

func TestParseLineTrimsFields(t *testing.T) {
	sample, ok := ParseLine("Players , 2026-01-02 , 130 ")
	require.True(t, ok)
	assert.Equal(t, "2026-01-02", sample.Date)
	assert.Equal(t, int64(130), sample.Value)
}

func TestParseLineIgnoresTrailingFields(t *testing.T) {
	sample, ok := ParseLine("RealmEye,2026-01-02,130,extra")
	require.True(t, ok)
	assert.Equal(t, models.Sample{Date: "2026-01-02", Value: 130}, sample)

	sample, ok = ParseLine("RealmEye,2026-01-02, 7 ,a,b")
	require.True(t, ok)
	assert.Equal(t, int64(7), sample.Value)

	_, ok = ParseLine("RealmEye,2026-01-02,,130")
	assert.False(t, ok)
}

func TestParseLineRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"short date", "label,2026-1-2,130"},
		{"non numeric value", "label,2026-01-02,abc"},
		{"trailing garbage", "label,2026-01-02,130abc"},
		{"missing value", "label,2026-01-02"},
		{"empty value", "label,2026-01-02,"},
		{"timestamp instead of date", "label,2026-01-02T10:00:00,130"},
		{"header", "name,date,players"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseLine(tt.line)
			assert.False(t, ok)
		})
	}
}

func TestParseRowsKeepsInputOrder(t *testing.T) {
	input := strings.Join([]string{
		"name,date,players",
		"RealmEye,2026-01-03,110",
		"",
		"RealmEye,2026-01-01,100",
		"RealmEye,2026-1-2,90",
		"RealmEye,2026-01-02,130\r",
	}, "\n")

	samples, dropped, err := ParseRows(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []models.Sample{
		{Date: "2026-01-03", Value: 110},
		{Date: "2026-01-01", Value: 100},
		{Date: "2026-01-02", Value: 130},
	}, samples)
	assert.Equal(t, 2, dropped)
}

func TestParseRowsDropsOversizedLine(t *testing.T) {
	input := "A,2026-01-01,100\njunk," + strings.Repeat("x", 2*1024*1024) + "\nA,2026-01-02,130"

	samples, dropped, err := ParseRows(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []models.Sample{
		{Date: "2026-01-01", Value: 100},
		{Date: "2026-01-02", Value: 130},
	}, samples)
	assert.Equal(t, 1, dropped)
}

func TestParseRowsEmptyInput(t *testing.T) {
	samples, dropped, err := ParseRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Zero(t, dropped)
}
