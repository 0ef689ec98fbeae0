package history

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format accepted for range bounds.
const DateLayout = "2006-01-02"

// ErrInvalidRange is returned when range bounds are unparseable, inverted,
// or wider than allowed.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange expands the inclusive range [from, to] into one UTC midnight per
// day. maxDays <= 0 disables the width check.
func DateRange(from, to string, maxDays int) ([]time.Time, error) {
	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("%w: from %q: %v", ErrInvalidRange, from, err)
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("%w: to %q: %v", ErrInvalidRange, to, err)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange, from, to)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if maxDays > 0 && days > maxDays {
		return nil, fmt.Errorf("%w: %d days exceeds limit of %d", ErrInvalidRange, days, maxDays)
	}

	dates := make([]time.Time, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}
