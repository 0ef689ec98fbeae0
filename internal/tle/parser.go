package tle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrMalformedRecord matches every *MalformedError via errors.Is.
var ErrMalformedRecord = errors.New("malformed TLE record")

var (
	errLineLength    = errors.New("line length is not 69")
	errLinePrefix    = errors.New("line prefix mismatch")
	errNoradMismatch = errors.New("NORAD ID differs between lines")
)

// MalformedError describes a 3-line block that failed validation.
type MalformedError struct {
	Line int // 1-based line number of the name line in the source text
	Name string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("record at line %d (%q): %v", e.Line, e.Name, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Validate checks the structure of a line pair: both lines 69 characters,
// prefixed "1 " and "2 ", with the same NORAD field in columns 2-7.
func Validate(line1, line2 string) error {
	if len(line1) != LineLength || len(line2) != LineLength {
		return fmt.Errorf("%w: line1=%d line2=%d", errLineLength, len(line1), len(line2))
	}
	if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
		return errLinePrefix
	}
	id1, id2 := NoradID(line1), NoradID(line2)
	if id1 != id2 {
		return fmt.Errorf("%w: %q vs %q", errNoradMismatch, id1, id2)
	}
	return nil
}

// NoradID returns the trimmed catalog field (columns 2-7) of either line.
func NoradID(line string) string {
	if len(line) < 7 {
		return ""
	}
	return strings.TrimSpace(line[2:7])
}

type textLine struct {
	num  int
	text string
}

// Parse reads 3-line TLE text from r. Blank lines are ignored and the rest
// are grouped greedily in triples; a trailing partial group is discarded.
// Each invalid triple is returned as a *MalformedError and does not affect
// its neighbours. The returned error is only set when r cannot be read.
func Parse(r io.Reader, origin Origin, logger *slog.Logger) ([]Record, []*MalformedError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []textLine
	num := 0
	for scanner.Scan() {
		num++
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, textLine{num: num, text: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var (
		records   []Record
		malformed []*MalformedError
	)
	for i := 0; i+2 < len(lines); i += 3 {
		name := strings.TrimPrefix(lines[i].text, "0 ")
		rec, err := parseRecord(name, lines[i+1].text, lines[i+2].text, origin)
		if err != nil {
			merr := &MalformedError{Line: lines[i].num, Name: name, Err: err}
			logger.Debug("skipping malformed TLE entry",
				"filename", origin.Filename,
				"line", merr.Line,
				"name", name,
				"error", err,
			)
			malformed = append(malformed, merr)
			continue
		}
		records = append(records, rec)
	}

	if rest := len(lines) % 3; rest != 0 {
		logger.Debug("discarding trailing partial TLE entry",
			"filename", origin.Filename,
			"lines", rest,
		)
	}

	return records, malformed, nil
}

func parseRecord(name, line1, line2 string, origin Origin) (Record, error) {
	if err := Validate(line1, line2); err != nil {
		return Record{}, err
	}
	id := NoradID(line1)
	if id == "" {
		return Record{}, &FieldError{Field: "catalog_number", Raw: line1[2:7], Err: errEmpty}
	}

	epoch, err := DecodeEpoch(line1)
	if err != nil {
		return Record{}, err
	}

	// Element columns must decode even though only the latest record's
	// values are surfaced.
	if _, err := DecodeElements(line2); err != nil {
		return Record{}, err
	}

	return Record{
		NoradID:        id,
		Name:           name,
		Line1:          line1,
		Line2:          line2,
		Epoch:          epoch,
		SourceFilename: origin.Filename,
		CapturedAt:     origin.CapturedAt,
	}, nil
}
