package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/tlehist/internal/tle"
)

func TestDetectChangesAbsorbsRepeats(t *testing.T) {
	r1 := record(t, "ISS (ZARYA)", "25544", "24014.50000000", 51.64, "tle_000000.txt", at("2024-01-14", "000000"))
	r2 := record(t, "ISS (ZARYA)", "25544", "24014.50000000", 51.64, "tle_060000.txt", at("2024-01-14", "060000"))
	r3 := record(t, "ISS (ZARYA)", "25544", "24016.50000000", 51.65, "tle_120000.txt", at("2024-01-16", "120000"))

	updates := DetectChanges([]tle.Record{r1, r2, r3})

	require.Len(t, updates, 2)
	assert.Equal(t, r1.Line1, updates[0].Line1)
	assert.Equal(t, "tle_000000.txt", updates[0].SourceFilename)
	assert.Equal(t, r3.Line2, updates[1].Line2)
	assert.Equal(t, "tle_120000.txt", updates[1].SourceFilename)
}

func TestDetectChangesSortsInput(t *testing.T) {
	early := record(t, "SAT", "10000", "24010.00000000", 10, "tle_000000.txt", at("2024-01-10", "000000"))
	late := record(t, "SAT", "10000", "24012.25000000", 11, "tle_000000.txt", at("2024-01-12", "000000"))
	input := []tle.Record{late, early}

	updates := DetectChanges(input)

	require.Len(t, updates, 2)
	assert.True(t, updates[0].EpochTime.Before(updates[1].EpochTime))
	assert.Equal(t, late.Line1, input[0].Line1, "input must not be reordered")
}

func TestDetectChangesSingleRecordIsBaseline(t *testing.T) {
	r := record(t, "SAT", "10000", "24010.00000000", 10, "tle_000000.txt", at("2024-01-10", "000000"))
	assert.Len(t, DetectChanges([]tle.Record{r}), 1)
}

func TestDetectChangesEmpty(t *testing.T) {
	assert.Empty(t, DetectChanges(nil))
}

func TestDetectChangesRevertCounts(t *testing.T) {
	p1 := record(t, "SAT", "10000", "24010.00000000", 10, "tle_000000.txt", at("2024-01-10", "000000"))
	q := record(t, "SAT", "10000", "24011.00000000", 11, "tle_000000.txt", at("2024-01-11", "000000"))
	p2 := p1
	p2.Epoch = q.Epoch.Add(time.Hour)
	p2.CapturedAt = at("2024-01-12", "000000")

	assert.Len(t, DetectChanges([]tle.Record{p1, q, p2}), 3)
}

func TestDetectChangesNormalizesWhitespace(t *testing.T) {
	r1 := record(t, "SAT", "10000", "24010.00000000", 10, "tle_000000.txt", at("2024-01-10", "000000"))
	r2 := r1
	r2.Line1 = "  " + r1.Line1 + " \t"
	r2.Line2 = r1.Line2[:7] + "   " + r1.Line2[7:]
	r2.CapturedAt = at("2024-01-10", "060000")

	assert.Len(t, DetectChanges([]tle.Record{r1, r2}), 1)
}

func TestDetectChangesTieBreaksByCaptureThenFilename(t *testing.T) {
	a := record(t, "SAT", "10000", "24010.00000000", 10, "tle_060000.txt", at("2024-01-10", "060000"))
	b := record(t, "SAT", "10000", "24010.00000000", 12, "tle_000000.txt", at("2024-01-10", "000000"))
	c := record(t, "SAT", "10000", "24010.00000000", 12, "tle_000000.txt", at("2024-01-11", "000000"))
	c.SourceFilename = "tle_000000b.txt"

	updates := DetectChanges([]tle.Record{a, c, b})

	// b (12°) then a (10°) then c (12° again).
	require.Len(t, updates, 3)
	assert.Equal(t, b.Line2, updates[0].Line2)
	assert.Equal(t, a.Line2, updates[1].Line2)
	assert.Equal(t, "tle_000000b.txt", updates[2].SourceFilename)
}

func TestUpdateEventCalendarFields(t *testing.T) {
	r := record(t, "SAT", "10000", "24015.75000000", 10, "tle_193008.txt", at("2024-01-15", "193008"))

	updates := DetectChanges([]tle.Record{r})

	require.Len(t, updates, 1)
	u := updates[0]
	assert.Equal(t, time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC), u.EpochTime)
	assert.Equal(t, "2024-01-15", u.Date)
	assert.Equal(t, "18:00:00", u.Time)
	assert.Equal(t, 18, u.Hour)
	assert.Equal(t, "tle_193008.txt", u.SourceFilename)
}

func TestBuildHistory(t *testing.T) {
	records := []tle.Record{
		record(t, "ISS (ZARYA)", "25544", "24016.50000000", 51.65, "tle_000000.txt", at("2024-01-16", "000000")),
		record(t, "ISS (ZARYA)", "25544", "24014.50000000", 51.64, "tle_000000.txt", at("2024-01-14", "000000")),
		record(t, "ISS (ZARYA)", "25544", "24014.50000000", 51.64, "tle_000000.txt", at("2024-01-15", "000000")),
	}

	h, err := buildHistory("25544", records)
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, "25544", h.NoradID)
	assert.Equal(t, "ISS (ZARYA)", h.Name)
	assert.Equal(t, tle.TypeSpaceStation, h.Type)
	assert.Equal(t, 2, h.UpdateCount)
	assert.Len(t, h.Updates, 2)
	assert.Equal(t, "2024-01-16", h.Epoch)
	assert.Equal(t, time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC), h.LastUpdated)
	assert.InDelta(t, 51.65, h.Inclination, 1e-9)
	assert.InDelta(t, 0.0001, h.Eccentricity, 1e-12)
	assert.InDelta(t, 15.5, h.MeanMotion, 1e-9)
	assert.InDelta(t, 2460326.0, h.EpochJulian, 1e-6)
}

func TestBuildHistoryUsesLatestName(t *testing.T) {
	records := []tle.Record{
		record(t, "OBJECT A", "58000", "24010.00000000", 43, "tle_000000.txt", at("2024-01-10", "000000")),
		record(t, "STARLINK-31000", "58000", "24012.00000000", 43, "tle_000000.txt", at("2024-01-12", "000000")),
	}

	h, err := buildHistory("58000", records)
	require.NoError(t, err)
	assert.Equal(t, "STARLINK-31000", h.Name)
	assert.Equal(t, tle.TypeCommunication, h.Type)
}

// A satellite with no valid records never reaches detection and is absent;
// one with only identical repeats still reports its baseline.
func TestBuildHistoryEmptyAndRepeats(t *testing.T) {
	h, err := buildHistory("10000", nil)
	require.NoError(t, err)
	assert.Nil(t, h)

	r := record(t, "SAT", "10000", "24010.00000000", 10, "tle_000000.txt", at("2024-01-10", "000000"))
	repeats := []tle.Record{r, r, r}
	repeats[1].CapturedAt = at("2024-01-11", "000000")
	repeats[2].CapturedAt = at("2024-01-12", "000000")

	h, err = buildHistory("10000", repeats)
	require.NoError(t, err)
	assert.Equal(t, 1, h.UpdateCount)
}

func TestSortHistories(t *testing.T) {
	h := []*SatelliteHistory{
		{NoradID: "25544", UpdateCount: 2},
		{NoradID: "5", UpdateCount: 2},
		{NoradID: "44713", UpdateCount: 5},
		{NoradID: "100", UpdateCount: 1},
		{NoradID: "20", UpdateCount: 2},
	}

	sortHistories(h)

	got := make([]string, len(h))
	for i, s := range h {
		got[i] = s.NoradID
	}
	assert.Equal(t, []string{"44713", "5", "20", "25544", "100"}, got)
	for i := 1; i < len(h); i++ {
		assert.GreaterOrEqual(t, h[i-1].UpdateCount, h[i].UpdateCount)
	}
}

// Alpha-5 catalog numbers are currently undefined: they are kept as text
// and, at equal width, sort after all-digit IDs.
func TestNoradLessAlpha5CurrentlyUndefined(t *testing.T) {
	assert.True(t, noradLess("99999", "A0001"))
	assert.True(t, noradLess("9", "A0001"))
	assert.False(t, noradLess("A0001", "A0001"))
}

func TestSatelliteHistoryJSON(t *testing.T) {
	r := record(t, "ISS (ZARYA)", "25544", "24014.50000000", 51.64, "tle_000000.txt", at("2024-01-14", "000000"))
	h, err := buildHistory("25544", []tle.Record{r})
	require.NoError(t, err)

	data, err := json.Marshal(h)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"noradId", "name", "type", "updateCount", "lastUpdated", "epoch",
		"inclination", "eccentricity", "meanMotion", "epochJulian", "updates",
	} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "2024-01-14T12:00:00Z", m["lastUpdated"])
	assert.Equal(t, "2024-01-14", m["epoch"])

	updates := m["updates"].([]any)
	require.Len(t, updates, 1)
	u := updates[0].(map[string]any)
	for _, key := range []string{"epochTime", "line1", "line2", "date", "time", "hour", "sourceFilename"} {
		assert.Contains(t, u, key)
	}
	assert.Equal(t, "12:00:00", u["time"])
}
