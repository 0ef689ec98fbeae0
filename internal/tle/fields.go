package tle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errShortLine = errors.New("line shorter than field")
	errEmpty     = errors.New("empty field")
	errNotDigits = errors.New("field is not all digits")
)

// FieldError reports a fixed-width field that could not be decoded.
type FieldError struct {
	Field string
	Raw   string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s %q: %v", e.Field, e.Raw, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// field describes one fixed-column value of a TLE line.
// Columns are 0-indexed, end exclusive.
type field[T any] struct {
	name  string
	start int
	end   int
	set   func(dst *T, raw string) error
}

// decodeFixed applies every field of the table to line, in table order,
// stopping at the first failure.
func decodeFixed[T any](line string, fields []field[T], dst *T) error {
	for _, f := range fields {
		if f.end > len(line) {
			return &FieldError{Field: f.name, Err: errShortLine}
		}
		raw := line[f.start:f.end]
		if err := f.set(dst, raw); err != nil {
			return &FieldError{Field: f.name, Raw: raw, Err: err}
		}
	}
	return nil
}

// parseDecimal parses a plain decimal such as " 51.6400" or " .00016717".
func parseDecimal(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errEmpty
	}
	return strconv.ParseFloat(s, 64)
}

// parseImpliedDecimal parses digits that carry an implied leading "0.",
// as used by eccentricity ("0001000" is 0.0001).
func parseImpliedDecimal(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errEmpty
	}
	if !isDigits(s) {
		return 0, errNotDigits
	}
	return strconv.ParseFloat("0."+s, 64)
}

// isDigits reports whether s is non-empty and made only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseExponent parses the compact exponent notation of line 1 drag terms:
// " 10270-3" is 0.10270e-3, "-11606-4" is -0.11606e-4. A blank field is zero.
func parseExponent(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	i := strings.LastIndexAny(s, "+-")
	if i <= 0 {
		return 0, fmt.Errorf("missing exponent")
	}
	mantissa, expStr := s[:i], s[i:]
	for _, c := range mantissa {
		if c < '0' || c > '9' {
			return 0, errNotDigits
		}
	}

	m, err := strconv.ParseFloat("0."+mantissa, 64)
	if err != nil {
		return 0, err
	}
	exp, err := strconv.Atoi(expStr)
	if err != nil {
		return 0, err
	}
	return sign * m * pow10(exp), nil
}

// parseOptionalInt parses a right-aligned integer; blank means zero.
func parseOptionalInt(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func pow10(exp int) float64 {
	v := 1.0
	for ; exp > 0; exp-- {
		v *= 10
	}
	for ; exp < 0; exp++ {
		v /= 10
	}
	return v
}
