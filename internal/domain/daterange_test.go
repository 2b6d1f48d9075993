package domain

import (
	"errors"
	"testing"
	"time"
)

func at(day, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}

func TestDateRange_Overlaps(t *testing.T) {
	base := DateRange{Start: at(10, 10), End: at(12, 10)}

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", base, true},
		{"overlaps end", DateRange{Start: at(11, 0), End: at(13, 0)}, true},
		{"overlaps start", DateRange{Start: at(9, 0), End: at(10, 11)}, true},
		{"contains", DateRange{Start: at(9, 0), End: at(14, 0)}, true},
		{"contained", DateRange{Start: at(11, 0), End: at(11, 1)}, true},
		{"adjacent after", DateRange{Start: at(12, 10), End: at(14, 10)}, false},
		{"adjacent before", DateRange{Start: at(8, 10), End: at(10, 10)}, false},
		{"disjoint", DateRange{Start: at(20, 0), End: at(21, 0)}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Fatalf("expected symmetric result %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOverlaps_RequiresSameVehicle(t *testing.T) {
	rng := DateRange{Start: at(10, 10), End: at(12, 10)}
	a := Reservation{ID: "a", VehicleID: "veh-1", Range: rng}
	b := Reservation{ID: "b", VehicleID: "veh-2", Range: rng}

	if Overlaps(a, b) {
		t.Fatalf("expected different vehicles not to overlap")
	}
	b.VehicleID = "veh-1"
	if !Overlaps(a, b) || !Overlaps(b, a) {
		t.Fatalf("expected same vehicle ranges to overlap")
	}
}

func TestParseDateRange(t *testing.T) {
	t.Run("same day with times", func(t *testing.T) {
		got, err := ParseDateRange("2025-06-10", "2025-06-10", "09:00", "18:30", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.Start.Equal(at(10, 9)) || got.Duration() != 9*time.Hour+30*time.Minute {
			t.Fatalf("unexpected range: %v", got)
		}
	})

	t.Run("times default to midnight", func(t *testing.T) {
		got, err := ParseDateRange("2025-06-10", "2025-06-12", "", "", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.Start.Equal(at(10, 0)) || !got.End.Equal(at(12, 0)) {
			t.Fatalf("unexpected range: %v", got)
		}
	})

	t.Run("converts location to UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*60*60)
		got, err := ParseDateRange("2025-06-10", "2025-06-11", "10:00", "10:00", loc)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.Start.Equal(at(10, 8)) || got.Start.Location() != time.UTC {
			t.Fatalf("expected 08:00 UTC, got %v", got.Start)
		}
	})

	invalid := []struct {
		name                         string
		startDate, endDate, from, to string
	}{
		{"same day same time", "2025-06-10", "2025-06-10", "10:00", "10:00"},
		{"end before start", "2025-06-12", "2025-06-10", "", ""},
		{"bad date", "2025-13-01", "2025-06-10", "", ""},
		{"bad time", "2025-06-10", "2025-06-11", "25:00", ""},
		{"empty", "", "", "", ""},
	}
	for _, tt := range invalid {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateRange(tt.startDate, tt.endDate, tt.from, tt.to, nil)
			if !errors.Is(err, ErrInvalidDateRange) {
				t.Fatalf("expected ErrInvalidDateRange, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}
}
