package history

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/star/tlehist/internal/tle"
)

// normalizeLine trims a line and collapses internal whitespace runs.
func normalizeLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sortRecords orders records by epoch, then capture time, then filename.
func sortRecords(records []tle.Record) {
	slices.SortStableFunc(records, func(a, b tle.Record) int {
		if c := a.Epoch.Compare(b.Epoch); c != 0 {
			return c
		}
		if c := a.CapturedAt.Compare(b.CapturedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SourceFilename, b.SourceFilename)
	})
}

// DetectChanges returns the records of one satellite that carry a new
// element set, in chronological order. The first record is always a change.
// records is not modified.
func DetectChanges(records []tle.Record) []UpdateEvent {
	sorted := slices.Clone(records)
	sortRecords(sorted)
	return detectSorted(sorted)
}

func detectSorted(records []tle.Record) []UpdateEvent {
	var (
		updates      []UpdateEvent
		have         bool
		last1, last2 string
	)
	for _, r := range records {
		n1, n2 := normalizeLine(r.Line1), normalizeLine(r.Line2)
		if have && n1 == last1 && n2 == last2 {
			continue
		}
		have = true
		last1, last2 = n1, n2
		updates = append(updates, newUpdateEvent(r))
	}
	return updates
}

func newUpdateEvent(r tle.Record) UpdateEvent {
	epoch := r.Epoch.UTC()
	return UpdateEvent{
		EpochTime:      epoch,
		Line1:          r.Line1,
		Line2:          r.Line2,
		SourceFilename: r.SourceFilename,
		Date:           epoch.Format(DateLayout),
		Time:           epoch.Format(time.TimeOnly),
		Hour:           epoch.Hour(),
	}
}

// buildHistory runs change detection over one satellite's records and fills
// the descriptive fields from the latest one. It returns nil when there are
// no records. records is sorted in place.
func buildHistory(noradID string, records []tle.Record) (*SatelliteHistory, error) {
	if len(records) == 0 {
		return nil, nil
	}
	sortRecords(records)

	updates := detectSorted(records)
	latest := records[len(records)-1]

	elems, err := tle.DecodeElements(latest.Line2)
	if err != nil {
		return nil, fmt.Errorf("decoding elements of %s: %w", noradID, err)
	}

	last := updates[len(updates)-1]
	return &SatelliteHistory{
		NoradID:      noradID,
		Name:         latest.Name,
		Type:         tle.Classify(latest.Name),
		UpdateCount:  len(updates),
		LastUpdated:  last.EpochTime,
		Epoch:        last.Date,
		EpochJulian:  tle.JulianDate(latest.Epoch),
		Inclination:  elems.Inclination,
		Eccentricity: elems.Eccentricity,
		MeanMotion:   elems.MeanMotion,
		Updates:      updates,
	}, nil
}

// noradLess orders catalog numbers numerically for plain digits; equal-width
// IDs (including alpha-5) compare as text.
func noradLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// sortHistories orders by update count, highest first. Equal counts keep
// NORAD ID order.
func sortHistories(h []*SatelliteHistory) {
	slices.SortFunc(h, func(a, b *SatelliteHistory) int {
		switch {
		case noradLess(a.NoradID, b.NoradID):
			return -1
		case noradLess(b.NoradID, a.NoradID):
			return 1
		}
		return 0
	})
	slices.SortStableFunc(h, func(a, b *SatelliteHistory) int {
		return b.UpdateCount - a.UpdateCount
	})
}
