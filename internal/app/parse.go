package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/star/tlehist/internal/snapshot"
	"github.com/star/tlehist/internal/tle"
)

// ParseOptions configure the parse command.
type ParseOptions struct {
	Path   string
	Format string
}

// parsedRecord is the inspection view of one record.
type parsedRecord struct {
	NoradID  string       `json:"noradId"`
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Epoch    time.Time    `json:"epoch"`
	Header   tle.Header   `json:"header"`
	Elements tle.Elements `json:"elements"`
}

type parseResult struct {
	File      string         `json:"file"`
	Records   []parsedRecord `json:"records"`
	Malformed []string       `json:"malformed"`
}

// Parse reads one snapshot file and prints every decoded record along with
// the records that were dropped.
func (a *App) Parse(ctx context.Context, opts ParseOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.Path, err)
	}

	base := filepath.Base(opts.Path)
	origin := tle.Origin{Filename: base}
	if ts, err := snapshot.CaptureTime(time.Now().UTC(), base); err == nil {
		origin.CapturedAt = ts
	}

	records, malformed, err := tle.Parse(bytes.NewReader(data), origin, a.Logger)
	if err != nil {
		return err
	}

	result := parseResult{File: opts.Path, Records: make([]parsedRecord, 0, len(records)), Malformed: []string{}}
	for _, r := range records {
		hdr, err := tle.DecodeHeader(r.Line1)
		if err != nil {
			return fmt.Errorf("decoding header of %s: %w", r.NoradID, err)
		}
		elems, err := tle.DecodeElements(r.Line2)
		if err != nil {
			return fmt.Errorf("decoding elements of %s: %w", r.NoradID, err)
		}
		result.Records = append(result.Records, parsedRecord{
			NoradID:  r.NoradID,
			Name:     r.Name,
			Type:     tle.Classify(r.Name),
			Epoch:    r.Epoch,
			Header:   hdr,
			Elements: elems,
		})
	}
	for _, m := range malformed {
		result.Malformed = append(result.Malformed, m.Error())
	}

	if opts.Format == FormatJSON {
		return writeJSON(a.Out, result)
	}

	fmt.Fprintf(a.Out, "%s: %d records, %d malformed\n", opts.Path, len(result.Records), len(result.Malformed))
	if len(result.Records) > 0 {
		tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NORAD\tName\tType\tEpoch (UTC)\tIncl\tEcc\tMean Motion")
		for _, r := range result.Records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4f\t%.7f\t%.8f\n",
				r.NoradID, sanitizeInline(r.Name), r.Type,
				r.Epoch.Format("2006-01-02T15:04:05.000Z"),
				r.Elements.Inclination, r.Elements.Eccentricity, r.Elements.MeanMotion,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	for _, m := range result.Malformed {
		fmt.Fprintf(a.Out, "  dropped: %s\n", m)
	}
	return nil
}
