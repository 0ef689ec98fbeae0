package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/star/tlehist/internal/snapshot"
	"github.com/star/tlehist/internal/tle"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// buildLines returns a 69-column line pair for catalog id, epoch (14 chars)
// and inclination.
func buildLines(id, epoch string, inclination float64) (string, string) {
	line1 := fmt.Sprintf("1 %5sU 98067A   %s  .00016717  00000-0  10270-3 0  9005", id, epoch)
	line2 := fmt.Sprintf("2 %5s %8.4f 100.0000 0001000   0.0000   0.0000 15.50000000    09", id, inclination)
	return line1, line2
}

// block renders one 3-line element set.
func block(name, id, epoch string, inclination float64) string {
	l1, l2 := buildLines(id, epoch, inclination)
	return name + "\n" + l1 + "\n" + l2 + "\n"
}

// record builds a parsed record as the parser would produce it.
func record(t *testing.T, name, id, epoch string, inclination float64, filename string, capturedAt time.Time) tle.Record {
	t.Helper()
	l1, l2 := buildLines(id, epoch, inclination)
	ts, err := tle.DecodeEpoch(l1)
	require.NoError(t, err)
	return tle.Record{
		NoradID:        strings.TrimSpace(id),
		Name:           name,
		Line1:          l1,
		Line2:          l2,
		Epoch:          ts,
		SourceFilename: filename,
		CapturedAt:     capturedAt,
	}
}

func at(day, hhmmss string) time.Time {
	ts, err := time.Parse("2006-01-02 150405", day+" "+hhmmss)
	if err != nil {
		panic(err)
	}
	return ts
}

func writeSnapshot(t *testing.T, root, date, name, body string) {
	t.Helper()
	dir := filepath.Join(root, date)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

// newDirEngine wires an Engine to a directory of snapshots.
func newDirEngine(root string, cfg Config) *Engine {
	src := snapshot.NewDirSource(root, 0)
	disc := snapshot.NewDiscovery(src, snapshot.Config{Concurrency: 4}, testLogger)
	return NewEngine(disc, cfg, testLogger)
}

// fakeDiscoverer serves canned snapshots per date and can run a hook first.
type fakeDiscoverer struct {
	snaps    map[string][]snapshot.RawSnapshot
	failures map[string][]snapshot.Failure
	before   func(date time.Time)
}

func (f *fakeDiscoverer) SourceName() string { return "fake" }

func (f *fakeDiscoverer) Discover(ctx context.Context, date time.Time) ([]snapshot.RawSnapshot, []snapshot.Failure) {
	if f.before != nil {
		f.before(date)
	}
	day := date.Format(DateLayout)
	return f.snaps[day], f.failures[day]
}

func raw(day, filename, body string) snapshot.RawSnapshot {
	ts, err := snapshot.CaptureTime(at(day, "000000"), filename)
	if err != nil {
		panic(err)
	}
	return snapshot.RawSnapshot{Date: day, Filename: filename, Data: []byte(body), CapturedAt: ts}
}
