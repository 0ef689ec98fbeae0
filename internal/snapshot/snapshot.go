// Package snapshot locates and fetches the TLE capture files published for a
// calendar date. Files live under {root}/{YYYY-MM-DD}/ and are named
// tle_HHMMSS.txt; a per-date manifest (index.json or index.yaml) lists them
// when present, otherwise a fixed set of canonical capture times is probed.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the folder name layout of a snapshot date.
const DateLayout = "2006-01-02"

// DefaultMaxBytes caps a single snapshot body.
const DefaultMaxBytes int64 = 50 * 1024 * 1024

// ErrNotFound is returned by a Source when the requested file does not exist.
var ErrNotFound = errors.New("snapshot not found")

// ErrFetchTimeout is the context cause set when a single fetch runs past its
// own deadline, as opposed to the caller giving up.
var ErrFetchTimeout = errors.New("snapshot fetch deadline exceeded")

// Source fetches one named file from a date folder.
type Source interface {
	// Name is a short label used in logs and metrics ("dir", "http", "s3").
	Name() string
	Fetch(ctx context.Context, date, filename string) ([]byte, error)
}

// RawSnapshot is the content of one capture file.
type RawSnapshot struct {
	Date       string
	Filename   string
	Data       []byte
	CapturedAt time.Time
}

var captureFilePattern = regexp.MustCompile(`^tle_(\d{2})(\d{2})(\d{2})\.txt$`)

// CaptureTime combines a date with the HHMMSS encoded in a tle_HHMMSS.txt
// filename. The result is in UTC.
func CaptureTime(date time.Time, filename string) (time.Time, error) {
	m := captureFilePattern.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, fmt.Errorf("filename %q does not match tle_HHMMSS.txt", filename)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("filename %q has an invalid time of day", filename)
	}

	y, mo, d := date.Date()
	return time.Date(y, mo, d, hour, minute, second, 0, time.UTC), nil
}

// CaptureFilename is the inverse of CaptureTime for a HHMMSS string.
func CaptureFilename(hhmmss string) string {
	return "tle_" + hhmmss + ".txt"
}

// readLimited reads at most max bytes from r and fails if more are available.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot body: %w", err)
	}
	if int64(len(body)) > max {
		return nil, fmt.Errorf("snapshot exceeds %d byte limit", max)
	}
	return body, nil
}
