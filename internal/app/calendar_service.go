package app

import (
	"context"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

type CalendarReader interface {
	ListCalendarReservations(ctx context.Context, q domain.CalendarQuery) ([]domain.Reservation, error)
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

// CalendarCache stores projected calendars. Entries must be dropped whenever
// a reservation changes. GetCalendar reports the cache generation it looked
// at; PutCalendar must store under that generation, never the current one.
type CalendarCache interface {
	GetCalendar(ctx context.Context, q domain.CalendarQuery) (events []domain.DisplayEvent, generation int64, ok bool, err error)
	PutCalendar(ctx context.Context, generation int64, q domain.CalendarQuery, events []domain.DisplayEvent) error
}

// CalendarService builds the read-only calendar view.
type CalendarService struct {
	reader CalendarReader
	cache  CalendarCache
	opts   options
}

// NewCalendarService accepts a nil cache.
func NewCalendarService(reader CalendarReader, cache CalendarCache, opts ...Option) *CalendarService {
	return &CalendarService{reader: reader, cache: cache, opts: buildOptions(opts)}
}

func (s *CalendarService) Project(ctx context.Context, q domain.CalendarQuery) ([]domain.DisplayEvent, error) {
	if err := q.Window.Validate(); err != nil {
		return nil, err
	}
	q = q.Normalize()

	// fill is set only after a clean miss; a failed read leaves the
	// generation unknown.
	var (
		fill bool
		gen  int64
	)
	if s.cache != nil {
		events, g, ok, err := s.cache.GetCalendar(ctx, q)
		switch {
		case err != nil:
			s.opts.notifier.logger.Printf("WARN: calendar cache read: %v", err)
		case ok:
			return events, nil
		default:
			fill, gen = true, g
		}
	}

	reservations, err := s.reader.ListCalendarReservations(ctx, q)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.reader.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.reader.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	byVehicle := make(map[string]domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byVehicle[v.ID] = v
	}
	byLocation := make(map[string]domain.Location, len(locations))
	for _, l := range locations {
		byLocation[l.ID] = l
	}
	events := domain.Project(reservations, byVehicle, byLocation, q)

	if fill {
		if err := s.cache.PutCalendar(ctx, gen, q, events); err != nil {
			s.opts.notifier.logger.Printf("WARN: calendar cache write: %v", err)
		}
	}
	return events, nil
}
