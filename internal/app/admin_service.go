package app

import (
	"context"
	"strings"

	"github.com/aronareadev/rentcar-admin-sub001/internal/clock"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

type AdminRepository interface {
	CreateVehicle(ctx context.Context, v domain.Vehicle) error
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (domain.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error
	CreateLocation(ctx context.Context, l domain.Location) error
	ListLocations(ctx context.Context) ([]domain.Location, error)
	GetLocation(ctx context.Context, id string) (domain.Location, error)
}

// AdminService manages the vehicle inventory and branch locations.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateVehicleInput struct {
	Make           string
	Model          string
	Year           int
	Plate          string
	DailyRateCents int64
	HomeLocationID string
	// Status defaults to available.
	Status domain.VehicleStatus
}

func (s *AdminService) CreateVehicle(ctx context.Context, in CreateVehicleInput) (domain.Vehicle, error) {
	plate := strings.ToUpper(strings.TrimSpace(in.Plate))
	if plate == "" {
		return domain.Vehicle{}, domain.ErrPlateRequired
	}
	if in.DailyRateCents < 0 {
		return domain.Vehicle{}, domain.ErrInvalidAmount
	}
	status := domain.VehicleAvailable
	if in.Status != "" {
		parsed, err := domain.ParseVehicleStatus(string(in.Status))
		if err != nil {
			return domain.Vehicle{}, err
		}
		status = parsed
	}
	if in.HomeLocationID != "" {
		if _, err := s.repo.GetLocation(ctx, in.HomeLocationID); err != nil {
			return domain.Vehicle{}, err
		}
	}

	v := domain.Vehicle{
		ID:             newUUID(),
		Make:           strings.TrimSpace(in.Make),
		Model:          strings.TrimSpace(in.Model),
		Year:           in.Year,
		Plate:          plate,
		Status:         status,
		DailyRateCents: in.DailyRateCents,
		HomeLocationID: in.HomeLocationID,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return domain.Vehicle{}, err
	}
	return v, nil
}

func (s *AdminService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

// UpdateVehicleStatus is an admin action; reservations never change it.
func (s *AdminService) UpdateVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) (domain.Vehicle, error) {
	if id == "" {
		return domain.Vehicle{}, domain.ErrInvalidID
	}
	parsed, err := domain.ParseVehicleStatus(string(status))
	if err != nil {
		return domain.Vehicle{}, err
	}
	if err := s.repo.UpdateVehicleStatus(ctx, id, parsed); err != nil {
		return domain.Vehicle{}, err
	}
	return s.repo.GetVehicle(ctx, id)
}

type CreateLocationInput struct {
	Name    string
	Address string
}

func (s *AdminService) CreateLocation(ctx context.Context, in CreateLocationInput) (domain.Location, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Location{}, domain.ErrLocationNameRequired
	}
	l := domain.Location{
		ID:        newUUID(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateLocation(ctx, l); err != nil {
		return domain.Location{}, err
	}
	return l, nil
}

func (s *AdminService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.repo.ListLocations(ctx)
}
