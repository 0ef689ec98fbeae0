package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/tlehist/internal/config"
	"github.com/star/tlehist/internal/history"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func block(name, id, epoch string, inclination float64) string {
	l1 := fmt.Sprintf("1 %5sU 98067A   %s  .00016717  00000-0  10270-3 0  9005", id, epoch)
	l2 := fmt.Sprintf("2 %5s %8.4f 100.0000 0001000   0.0000   0.0000 15.50000000    09", id, inclination)
	return name + "\n" + l1 + "\n" + l2 + "\n"
}

func writeSnapshot(t *testing.T, root, date, name, body string) {
	t.Helper()
	dir := filepath.Join(root, date)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{Kind: config.SourceDir, Root: root},
		Fetch: config.FetchConfig{
			Concurrency: 4,
			Timeout:     time.Second,
			MaxBytes:    1 << 20,
			Breaker:     config.BreakerConfig{FailureThreshold: 0.5},
		},
		Engine: config.EngineConfig{Workers: 2, DateConcurrency: 2},
		Server: config.ServerConfig{MaxConcurrentPerIP: 1},
	}
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer, string) {
	t.Helper()
	root := t.TempDir()
	writeSnapshot(t, root, "2024-01-14", "tle_000000.txt", block("ISS (ZARYA)", "25544", "24014.50000000", 51.64))
	writeSnapshot(t, root, "2024-01-15", "tle_000000.txt", block("ISS (ZARYA)", "25544", "24014.50000000", 51.64)+
		block("STARLINK-1007", "44713", "24015.25000000", 53.0))
	writeSnapshot(t, root, "2024-01-16", "tle_060000.txt", block("ISS (ZARYA)", "25544", "24016.50000000", 51.65))

	var out bytes.Buffer
	a := NewApp(testConfig(root), testLogger)
	a.Out = &out
	return a, &out, root
}

func TestAnalyzeJSON(t *testing.T) {
	a, out, _ := newTestApp(t)

	err := a.Analyze(context.Background(), AnalyzeOptions{From: "2024-01-14", To: "2024-01-16", Format: FormatJSON})
	require.NoError(t, err)

	var report history.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.Satellites, 2)
	assert.Equal(t, "25544", report.Satellites[0].NoradID)
	assert.Equal(t, 2, report.Satellites[0].UpdateCount)
}

func TestAnalyzeTableWithFilter(t *testing.T) {
	a, out, _ := newTestApp(t)

	err := a.Analyze(context.Background(), AnalyzeOptions{
		From: "2024-01-14", To: "2024-01-16", Type: "communication", Format: FormatTable,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "STARLINK-1007")
	assert.NotContains(t, out.String(), "ISS (ZARYA)")
}

func TestAnalyzeOptionsValidation(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.Analyze(context.Background(), AnalyzeOptions{From: "2024-01-14", To: "2024-01-16", Format: "xml"})
	assert.Error(t, err)

	err = a.Analyze(context.Background(), AnalyzeOptions{From: "2024-01-14", To: "2024-01-16", Format: FormatJSON, Limit: -1})
	assert.Error(t, err)

	err = a.Analyze(context.Background(), AnalyzeOptions{From: "2024-01-16", To: "2024-01-14", Format: FormatJSON})
	assert.ErrorIs(t, err, history.ErrInvalidRange)
}

func TestSummary(t *testing.T) {
	a, out, _ := newTestApp(t)

	require.NoError(t, a.Summary(context.Background(), AnalyzeOptions{From: "2024-01-14", To: "2024-01-16", Format: FormatJSON}))

	var resp struct {
		Summary history.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary.Satellites)
	assert.Equal(t, 3, resp.Summary.TotalUpdates)

	out.Reset()
	require.NoError(t, a.Summary(context.Background(), AnalyzeOptions{From: "2024-01-14", To: "2024-01-16", Format: FormatTable}))
	assert.Contains(t, out.String(), "Total updates")
	assert.Contains(t, out.String(), "Space Station")
}

func TestParse(t *testing.T) {
	a, out, root := newTestApp(t)
	path := filepath.Join(root, "2024-01-15", "tle_000000.txt")

	require.NoError(t, a.Parse(context.Background(), ParseOptions{Path: path, Format: FormatJSON}))

	var result parseResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.Records, 2)
	assert.Equal(t, "44713", result.Records[1].NoradID)
	assert.Equal(t, "Communication", result.Records[1].Type)
	assert.Equal(t, "98067A", result.Records[1].Header.IntlDesignator)
	assert.Empty(t, result.Malformed)
}

func TestParseReportsMalformed(t *testing.T) {
	a, out, _ := newTestApp(t)
	path := filepath.Join(t.TempDir(), "upload.txt")
	require.NoError(t, os.WriteFile(path, []byte("BAD\n1 short\n2 short\n"+block("NOAA 19", "33591", "24015.10000000", 99.1)), 0o644))

	require.NoError(t, a.Parse(context.Background(), ParseOptions{Path: path, Format: FormatTable}))
	assert.Contains(t, out.String(), "1 records, 1 malformed")
	assert.Contains(t, out.String(), "NOAA 19")
	assert.Contains(t, out.String(), "dropped:")
}

func TestParseMissingFile(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Error(t, a.Parse(context.Background(), ParseOptions{Path: "/nonexistent/tle_000000.txt"}))
}

func TestIndex(t *testing.T) {
	a, out, root := newTestApp(t)

	require.NoError(t, a.Index(context.Background(), IndexOptions{From: "2024-01-13", To: "2024-01-16"}))
	assert.Contains(t, out.String(), "2024-01-15\t1 files")
	assert.FileExists(t, filepath.Join(root, "2024-01-16", "index.json"))
	assert.NoFileExists(t, filepath.Join(root, "2024-01-13", "index.json"))

	// The analysis now goes through the manifests and still sees every file.
	out.Reset()
	require.NoError(t, a.Analyze(context.Background(), AnalyzeOptions{From: "2024-01-14", To: "2024-01-16", Format: FormatJSON}))
	var report history.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Len(t, report.Satellites, 2)
}

func TestIndexRequiresDirSource(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.Config.Source.Kind = config.SourceHTTP
	assert.Error(t, a.Index(context.Background(), IndexOptions{From: "2024-01-14", To: "2024-01-16"}))
}

func TestReadiness(t *testing.T) {
	a, _, root := newTestApp(t)

	check := a.readiness()
	require.NotNil(t, check)
	assert.NoError(t, check())

	a.Config.Source.Root = filepath.Join(root, "missing")
	assert.Error(t, a.readiness()())

	a.Config.Source.Kind = config.SourceHTTP
	assert.Nil(t, a.readiness())
}

func TestNewSourceKinds(t *testing.T) {
	a, _, _ := newTestApp(t)

	src, err := a.newSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dir", src.Name())

	a.Config.Source.Kind = config.SourceHTTP
	a.Config.Source.BaseURL = "http://127.0.0.1:1/tle"
	src, err = a.newSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http", src.Name())

	a.Config.Source.Kind = "ftp"
	_, err = a.newSource(context.Background())
	assert.Error(t, err)
}
