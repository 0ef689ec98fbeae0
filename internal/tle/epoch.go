package tle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Epoch columns of line 1 (0-indexed, end exclusive).
const (
	epochStart = 18
	epochEnd   = 32
)

// pivotYear splits two-digit years: 00-56 are 2000s, 57-99 are 1900s.
const pivotYear = 57

// DecodeEpoch extracts the YYDDD.DDDDDDDD epoch of line 1 as a UTC time.
func DecodeEpoch(line1 string) (time.Time, error) {
	if len(line1) < epochEnd {
		return time.Time{}, &FieldError{Field: "epoch", Err: errShortLine}
	}
	raw := line1[epochStart:epochEnd]
	t, err := parseEpoch(raw)
	if err != nil {
		return time.Time{}, &FieldError{Field: "epoch", Raw: raw, Err: err}
	}
	return t, nil
}

// parseEpoch converts YYDDD.DDDDDDDD to a time. The day of year is 1-based and
// the fractional day is added as seconds without rounding.
func parseEpoch(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	yearStr, dayStr, fracStr := s[:2], s[2:5], s[5:]

	if !isDigits(yearStr) {
		return time.Time{}, fmt.Errorf("invalid epoch year %q", yearStr)
	}
	yy, _ := strconv.Atoi(yearStr)
	year := 2000 + yy
	if yy >= pivotYear {
		year = 1900 + yy
	}

	if !isDigits(dayStr) {
		return time.Time{}, fmt.Errorf("invalid epoch day %q", dayStr)
	}
	dayOfYear, _ := strconv.Atoi(dayStr)
	if dayOfYear < 1 || dayOfYear > daysIn(year) {
		return time.Time{}, fmt.Errorf("epoch day %d out of range for %d", dayOfYear, year)
	}

	var frac float64
	if fracStr != "" {
		if fracStr[0] != '.' || (len(fracStr) > 1 && !isDigits(fracStr[1:])) {
			return time.Time{}, fmt.Errorf("invalid epoch fraction %q", fracStr)
		}
		if len(fracStr) > 1 {
			frac, _ = strconv.ParseFloat("0"+fracStr, 64)
		}
	}

	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, 0, dayOfYear-1)
	t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	return t, nil
}

func daysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// JulianDate returns the Julian date of t.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	jd := satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return jd + float64(t.Nanosecond())/float64(24*time.Hour)
}
