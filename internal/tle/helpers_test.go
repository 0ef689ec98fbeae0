package tle

import (
	"fmt"
	"io"
	"log/slog"
)

// Reference element sets (ISS and a Starlink shell satellite).
const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"

	starlinkLine1 = "1 44713U 19074A   24100.50000000  .00001000  00000-0  10000-4 0  9995"
	starlinkLine2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000    05"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// buildLines returns a 69-column line pair for catalog id, epoch (14 chars)
// and inclination.
func buildLines(id, epoch string, inclination float64) (string, string) {
	line1 := fmt.Sprintf("1 %5sU 98067A   %s  .00016717  00000-0  10270-3 0  9005", id, epoch)
	line2 := fmt.Sprintf("2 %5s %8.4f 100.0000 0001000   0.0000   0.0000 15.50000000    09", id, inclination)
	return line1, line2
}
