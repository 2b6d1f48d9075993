package domain

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for the civil date and time parts of a request.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DateRange is a half-open interval [Start, End) of instants.
// A rental ending at 10:00 and another starting at 10:00 do not overlap.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange combines civil dates and HH:MM times in loc. Empty times
// default to the start of the day.
func ParseDateRange(startDate, endDate, startTime, endTime string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := combine(startDate, startTime, loc)
	if err != nil {
		return DateRange{}, err
	}
	end, err := combine(endDate, endTime, loc)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidDateRange, date, clock)
	}
	return t.UTC(), nil
}

// Validate requires a non-empty range.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() || !r.Start.Before(r.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps reports whether the two ranges share any instant.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Duration is End minus Start.
func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// String formats the range as RFC 3339 start/end.
func (r DateRange) String() string {
	return r.Start.Format(time.RFC3339) + "/" + r.End.Format(time.RFC3339)
}

// Overlaps reports whether a and b occupy the same vehicle at the same time.
func Overlaps(a, b Reservation) bool {
	return a.VehicleID == b.VehicleID && a.Range.Overlaps(b.Range)
}
