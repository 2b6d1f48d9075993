package app

import (
	"context"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/clock"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

type StatsRepository interface {
	CountReservationsByStatus(ctx context.Context) (map[domain.Status]int, error)
	SumPaidRevenue(ctx context.Context) (int64, error)
	CountVehiclesByStatus(ctx context.Context) (map[domain.VehicleStatus]int, error)
	// CountPickupsAndReturns counts non-cancelled reservations starting and
	// ending inside day.
	CountPickupsAndReturns(ctx context.Context, day domain.DateRange) (pickups, returns int, err error)
}

// StatsService computes dashboard counters.
type StatsService struct {
	repo  StatsRepository
	clock clock.Clock
	loc   *time.Location
}

// NewStatsService uses loc to decide where "today" starts; nil means UTC.
func NewStatsService(repo StatsRepository, clk clock.Clock, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{repo: repo, clock: clk, loc: loc}
}

func (s *StatsService) Overview(ctx context.Context) (domain.Overview, error) {
	byStatus, err := s.repo.CountReservationsByStatus(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	revenue, err := s.repo.SumPaidRevenue(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	vehicles, err := s.repo.CountVehiclesByStatus(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	pickups, returns, err := s.repo.CountPickupsAndReturns(ctx, s.today())
	if err != nil {
		return domain.Overview{}, err
	}

	total := 0
	for _, n := range vehicles {
		total += n
	}
	return domain.Overview{
		ReservationsByStatus: byStatus,
		PendingApprovals:     byStatus[domain.StatusPending],
		PaidRevenueCents:     revenue,
		VehiclesByStatus:     vehicles,
		TotalVehicles:        total,
		PickupsToday:         pickups,
		ReturnsToday:         returns,
	}, nil
}

func (s *StatsService) today() domain.DateRange {
	start := clock.StartOfDay(s.clock.Now(), s.loc)
	return domain.DateRange{Start: start, End: start.In(s.loc).AddDate(0, 0, 1).UTC()}
}
