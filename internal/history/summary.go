package history

import (
	"slices"
	"strings"

	"github.com/star/tlehist/internal/tle"
)

// TypeCount aggregates the satellites of one classifier type.
type TypeCount struct {
	Type       string `json:"type"`
	Satellites int    `json:"satellites"`
	Updates    int    `json:"updates"`
}

// DateCount is the number of updates whose epoch falls on Date.
type DateCount struct {
	Date    string `json:"date"`
	Updates int    `json:"updates"`
}

// Summary condenses a set of histories into dashboard totals.
type Summary struct {
	Satellites     int         `json:"satellites"`
	TotalUpdates   int         `json:"totalUpdates"`
	AverageUpdates float64     `json:"averageUpdates"`
	MaxUpdateCount int         `json:"maxUpdateCount"`
	MinUpdateCount int         `json:"minUpdateCount"`
	ByType         []TypeCount `json:"byType"`
	ByHour         [24]int     `json:"byHour"`
	ByDate         []DateCount `json:"byDate"`
}

// Summarize computes totals over histories. Types appear in classifier
// order, dates ascending, and hours are UTC.
func Summarize(histories []*SatelliteHistory) Summary {
	s := Summary{
		ByType: []TypeCount{},
		ByDate: []DateCount{},
	}
	if len(histories) == 0 {
		return s
	}

	byType := make(map[string]*TypeCount)
	byDate := make(map[string]int)

	s.Satellites = len(histories)
	s.MinUpdateCount = histories[0].UpdateCount
	for _, h := range histories {
		s.TotalUpdates += h.UpdateCount
		s.MaxUpdateCount = max(s.MaxUpdateCount, h.UpdateCount)
		s.MinUpdateCount = min(s.MinUpdateCount, h.UpdateCount)

		tc, ok := byType[h.Type]
		if !ok {
			tc = &TypeCount{Type: h.Type}
			byType[h.Type] = tc
		}
		tc.Satellites++
		tc.Updates += h.UpdateCount

		for _, u := range h.Updates {
			s.ByHour[u.Hour]++
			byDate[u.Date]++
		}
	}
	s.AverageUpdates = float64(s.TotalUpdates) / float64(s.Satellites)

	for _, t := range tle.Types() {
		if tc, ok := byType[t]; ok {
			s.ByType = append(s.ByType, *tc)
			delete(byType, t)
		}
	}
	// Types not produced by the classifier, if any, go last by name.
	rest := make([]string, 0, len(byType))
	for t := range byType {
		rest = append(rest, t)
	}
	slices.Sort(rest)
	for _, t := range rest {
		s.ByType = append(s.ByType, *byType[t])
	}

	for d, n := range byDate {
		s.ByDate = append(s.ByDate, DateCount{Date: d, Updates: n})
	}
	slices.SortFunc(s.ByDate, func(a, b DateCount) int {
		return strings.Compare(a.Date, b.Date)
	})

	return s
}

// Filter keeps the histories of satellites of type satType (case-insensitive,
// empty matches all) and truncates to limit entries when limit > 0. Order is
// preserved.
func Filter(histories []*SatelliteHistory, satType string, limit int) []*SatelliteHistory {
	out := make([]*SatelliteHistory, 0, len(histories))
	for _, h := range histories {
		if satType != "" && !strings.EqualFold(h.Type, satType) {
			continue
		}
		out = append(out, h)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Find returns the history of noradID, or nil.
func Find(histories []*SatelliteHistory, noradID string) *SatelliteHistory {
	for _, h := range histories {
		if h.NoradID == noradID {
			return h
		}
	}
	return nil
}
