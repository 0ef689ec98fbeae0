package tle

import "time"

// LineLength is the fixed width of both element lines.
const LineLength = 69

// Record is one validated 3-line element set taken from a snapshot.
type Record struct {
	NoradID        string
	Name           string
	Line1          string
	Line2          string
	Epoch          time.Time
	SourceFilename string
	CapturedAt     time.Time
}

// Origin identifies the snapshot a blob of records was read from.
type Origin struct {
	Filename   string
	CapturedAt time.Time
}
