package history

import (
	"cmp"
	"slices"
	"sync"

	"github.com/star/tlehist/internal/tle"
)

// group is every record of one satellite across the queried range.
type group struct {
	noradID string
	records []tle.Record
}

// collector accumulates records and diagnostics from concurrent date tasks.
type collector struct {
	mu          sync.Mutex
	byNorad     map[string][]tle.Record
	diagnostics []Diagnostic
}

func newCollector() *collector {
	return &collector{byNorad: make(map[string][]tle.Record)}
}

func (c *collector) addRecords(records []tle.Record) {
	if len(records) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		c.byNorad[r.NoradID] = append(c.byNorad[r.NoradID], r)
	}
}

func (c *collector) addDiagnostic(d Diagnostic) {
	c.mu.Lock()
	c.diagnostics = append(c.diagnostics, d)
	c.mu.Unlock()
}

// groups hands out the accumulated records ordered by NORAD ID. Each group
// owns its slice exclusively.
func (c *collector) groups() []group {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]group, 0, len(c.byNorad))
	for id, records := range c.byNorad {
		out = append(out, group{noradID: id, records: records})
	}
	slices.SortFunc(out, func(a, b group) int {
		switch {
		case noradLess(a.noradID, b.noradID):
			return -1
		case noradLess(b.noradID, a.noradID):
			return 1
		}
		return 0
	})
	c.byNorad = make(map[string][]tle.Record)
	return out
}

// takeDiagnostics returns the diagnostics ordered by date, filename and line.
func (c *collector) takeDiagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.diagnostics
	c.diagnostics = nil
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		if n := cmp.Compare(a.Date, b.Date); n != 0 {
			return n
		}
		if n := cmp.Compare(a.Filename, b.Filename); n != 0 {
			return n
		}
		return cmp.Compare(a.Line, b.Line)
	})
	return out
}
