package history

import (
	"time"
)

// UpdateEvent is a record that changed the satellite's element set.
// Date, Time and Hour are the epoch in UTC.
type UpdateEvent struct {
	EpochTime      time.Time `json:"epochTime"`
	Line1          string    `json:"line1"`
	Line2          string    `json:"line2"`
	SourceFilename string    `json:"sourceFilename"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Hour           int       `json:"hour"`
}

// SatelliteHistory is the change timeline of one satellite over a range.
// Name, Type and the element fields come from the latest record.
type SatelliteHistory struct {
	NoradID      string        `json:"noradId"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	UpdateCount  int           `json:"updateCount"`
	LastUpdated  time.Time     `json:"lastUpdated"`
	Epoch        string        `json:"epoch"`
	EpochJulian  float64       `json:"epochJulian"`
	Inclination  float64       `json:"inclination"`
	Eccentricity float64       `json:"eccentricity"`
	MeanMotion   float64       `json:"meanMotion"`
	Updates      []UpdateEvent `json:"updates"`
}

// DiagnosticKind classifies a non-fatal problem met during an analysis.
type DiagnosticKind string

const (
	KindFetchFailure    DiagnosticKind = "snapshot_fetch_failure"
	KindMalformedRecord DiagnosticKind = "malformed_record"
	KindBadFilename     DiagnosticKind = "bad_filename"
	KindManifestInvalid DiagnosticKind = "manifest_invalid"
	KindCancelled       DiagnosticKind = "cancelled"
)

// Diagnostic is one skipped file, record or step.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Date     string         `json:"date,omitempty"`
	Filename string         `json:"filename,omitempty"`
	Line     int            `json:"line,omitempty"`
	Message  string         `json:"message"`
}

// Report is the result of one analysis: the histories that could be built
// plus everything that was skipped on the way.
type Report struct {
	RunID       string              `json:"runId"`
	From        string              `json:"from"`
	To          string              `json:"to"`
	Satellites  []*SatelliteHistory `json:"satellites"`
	Diagnostics []Diagnostic        `json:"diagnostics"`
	Partial     bool                `json:"partial"`
}
