package tle

import (
	"strings"
	"time"
)

// Elements holds the mean orbital elements decoded from line 2.
type Elements struct {
	Inclination      float64 `json:"inclination"`  // degrees
	RAAN             float64 `json:"raan"`         // right ascension of ascending node, degrees
	Eccentricity     float64 `json:"eccentricity"` // dimensionless
	ArgOfPerigee     float64 `json:"argOfPerigee"` // degrees
	MeanAnomaly      float64 `json:"meanAnomaly"`  // degrees
	MeanMotion       float64 `json:"meanMotion"`   // revolutions per day
	RevolutionNumber int     `json:"revolutionNumber"`
}

// Header holds the identification and drag fields decoded from line 1.
type Header struct {
	CatalogNumber    string    `json:"catalogNumber"`
	Classification   string    `json:"classification"`
	IntlDesignator   string    `json:"intlDesignator"`
	Epoch            time.Time `json:"epoch"`
	MeanMotionDot    float64   `json:"meanMotionDot"`
	MeanMotionDDot   float64   `json:"meanMotionDDot"`
	BStar            float64   `json:"bstar"`
	EphemerisType    int       `json:"ephemerisType"`
	ElementSetNumber int       `json:"elementSetNumber"`
}

var line2Fields = []field[Elements]{
	{name: "inclination", start: 8, end: 16, set: func(e *Elements, raw string) (err error) {
		e.Inclination, err = parseDecimal(raw)
		return err
	}},
	{name: "raan", start: 17, end: 25, set: func(e *Elements, raw string) (err error) {
		e.RAAN, err = parseDecimal(raw)
		return err
	}},
	{name: "eccentricity", start: 26, end: 33, set: func(e *Elements, raw string) (err error) {
		e.Eccentricity, err = parseImpliedDecimal(raw)
		return err
	}},
	{name: "arg_of_perigee", start: 34, end: 42, set: func(e *Elements, raw string) (err error) {
		e.ArgOfPerigee, err = parseDecimal(raw)
		return err
	}},
	{name: "mean_anomaly", start: 43, end: 51, set: func(e *Elements, raw string) (err error) {
		e.MeanAnomaly, err = parseDecimal(raw)
		return err
	}},
	{name: "mean_motion", start: 52, end: 63, set: func(e *Elements, raw string) (err error) {
		e.MeanMotion, err = parseDecimal(raw)
		return err
	}},
	{name: "revolution_number", start: 63, end: 68, set: func(e *Elements, raw string) (err error) {
		e.RevolutionNumber, err = parseOptionalInt(raw)
		return err
	}},
}

var line1Fields = []field[Header]{
	{name: "catalog_number", start: 2, end: 7, set: func(h *Header, raw string) error {
		h.CatalogNumber = strings.TrimSpace(raw)
		if h.CatalogNumber == "" {
			return errEmpty
		}
		return nil
	}},
	{name: "classification", start: 7, end: 8, set: func(h *Header, raw string) error {
		h.Classification = strings.TrimSpace(raw)
		return nil
	}},
	{name: "intl_designator", start: 9, end: 17, set: func(h *Header, raw string) error {
		h.IntlDesignator = strings.TrimSpace(raw)
		return nil
	}},
	{name: "epoch", start: epochStart, end: epochEnd, set: func(h *Header, raw string) (err error) {
		h.Epoch, err = parseEpoch(raw)
		return err
	}},
	{name: "mean_motion_dot", start: 33, end: 43, set: func(h *Header, raw string) (err error) {
		h.MeanMotionDot, err = parseDecimal(raw)
		return err
	}},
	{name: "mean_motion_ddot", start: 44, end: 52, set: func(h *Header, raw string) (err error) {
		h.MeanMotionDDot, err = parseExponent(raw)
		return err
	}},
	{name: "bstar", start: 53, end: 61, set: func(h *Header, raw string) (err error) {
		h.BStar, err = parseExponent(raw)
		return err
	}},
	{name: "ephemeris_type", start: 62, end: 63, set: func(h *Header, raw string) (err error) {
		h.EphemerisType, err = parseOptionalInt(raw)
		return err
	}},
	{name: "element_set_number", start: 64, end: 68, set: func(h *Header, raw string) (err error) {
		h.ElementSetNumber, err = parseOptionalInt(raw)
		return err
	}},
}

// DecodeElements decodes the orbital elements of line 2.
func DecodeElements(line2 string) (Elements, error) {
	var e Elements
	if err := decodeFixed(line2, line2Fields, &e); err != nil {
		return Elements{}, err
	}
	return e, nil
}

// DecodeHeader decodes every field of line 1. Records only need the catalog
// number and epoch; the drag terms are decoded here for inspection.
func DecodeHeader(line1 string) (Header, error) {
	var h Header
	if err := decodeFixed(line1, line1Fields, &h); err != nil {
		return Header{}, err
	}
	return h, nil
}
