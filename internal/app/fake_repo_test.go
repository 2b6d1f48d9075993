package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// fakeReservationRepo keeps reservations in memory. WithTx serializes
// transactions and restores the previous state when fn fails.
type fakeReservationRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	reservations map[string]domain.Reservation
	vehicles     map[string]domain.Vehicle
	locations    map[string]domain.Location
	customers    map[string]string
	locked       []string

	// beforeUpdate runs before each UpdateReservation and may simulate a
	// concurrent writer.
	beforeUpdate func(f *fakeReservationRepo, id string)
	updates      int
}

func newFakeReservationRepo(vehicles []domain.Vehicle, reservations []domain.Reservation) *fakeReservationRepo {
	f := &fakeReservationRepo{
		reservations: make(map[string]domain.Reservation),
		vehicles:     make(map[string]domain.Vehicle),
		locations: map[string]domain.Location{
			"loc-1": {ID: "loc-1", Name: "Airport"},
			"loc-2": {ID: "loc-2", Name: "Downtown"},
		},
		customers: map[string]string{"cus-1": "Maria Lopez"},
	}
	for _, v := range vehicles {
		f.vehicles[v.ID] = v
	}
	for _, r := range reservations {
		if r.Version == 0 {
			r.Version = 1
		}
		f.reservations[r.ID] = r
	}
	return f
}

func (f *fakeReservationRepo) get(id string) domain.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservations[id]
}

func (f *fakeReservationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := make(map[string]domain.Reservation, len(f.reservations))
	for k, v := range f.reservations {
		snapshot[k] = v
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.reservations = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeReservationRepo) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeReservationRepo) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	return f.GetReservation(ctx, id)
}

func (f *fakeReservationRepo) FindReservationByIdempotencyKey(_ context.Context, key string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.IdempotencyKey == key {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) ListReservations(_ context.Context, q domain.ReservationQuery) ([]domain.Reservation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if q.VehicleID != "" && r.VehicleID != q.VehicleID {
			continue
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, r.Status) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Number+" "+r.CustomerName), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (f *fakeReservationRepo) ListBlockingReservations(_ context.Context, vehicleID string, rng domain.DateRange) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.VehicleID == vehicleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListCalendarReservations(_ context.Context, q domain.CalendarQuery) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Reservation, 0, len(f.reservations))
	for _, r := range f.reservations {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) LockVehicle(_ context.Context, vehicleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[vehicleID]; !ok {
		return domain.ErrVehicleNotFound
	}
	f.locked = append(f.locked, vehicleID)
	return nil
}

func (f *fakeReservationRepo) CreateReservation(_ context.Context, r domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reservations {
		if existing.IdempotencyKey != "" && existing.IdempotencyKey == r.IdempotencyKey {
			return domain.ErrIdempotencyConflict
		}
	}
	// Mirrors the customer join done by the Postgres repository.
	r.CustomerName = f.customers[r.Customer.CustomerID]
	if r.CustomerName == "" && r.Customer.Guest != nil {
		r.CustomerName = r.Customer.Guest.Name
	}
	f.reservations[r.ID] = r
	return nil
}

func (f *fakeReservationRepo) UpdateReservation(_ context.Context, r domain.Reservation, expectedVersion int64) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate(f, r.ID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	current, ok := f.reservations[r.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	f.reservations[r.ID] = r
	return nil
}

func (f *fakeReservationRepo) GetLocation(_ context.Context, id string) (domain.Location, error) {
	l, ok := f.locations[id]
	if !ok {
		return domain.Location{}, domain.ErrLocationNotFound
	}
	return l, nil
}

func (f *fakeReservationRepo) ListVehicles(context.Context) ([]domain.Vehicle, error) {
	out := make([]domain.Vehicle, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeReservationRepo) ListLocations(context.Context) ([]domain.Location, error) {
	out := make([]domain.Location, 0, len(f.locations))
	for _, l := range f.locations {
		out = append(out, l)
	}
	return out, nil
}

func containsStatus(list []domain.Status, s domain.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
}

func (p *recordingPublisher) PublishReservationEvent(_ context.Context, ev domain.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []domain.ReservationEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ReservationEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
