package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/app"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// AdminVehicleService is the minimal interface needed for vehicle endpoints.
type AdminVehicleService interface {
	CreateVehicle(ctx context.Context, in app.CreateVehicleInput) (domain.Vehicle, error)
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) (domain.Vehicle, error)
}

// AdminLocationService is the minimal interface needed for location endpoints.
type AdminLocationService interface {
	CreateLocation(ctx context.Context, in app.CreateLocationInput) (domain.Location, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

const adminVehiclesPath = "/admin/vehicles"

// HandleAdminVehicles returns an HTTP handler for vehicle creation/listing.
func HandleAdminVehicles(svc AdminVehicleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			vehicles, err := svc.ListVehicles(r.Context())
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			resp := make([]vehicleResponse, 0, len(vehicles))
			for _, v := range vehicles {
				resp = append(resp, vehicleFrom(v))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createVehicleRequest
			if !decodeJSON(w, r, &req, false) {
				return
			}
			v, err := svc.CreateVehicle(r.Context(), app.CreateVehicleInput{
				Make:           req.Make,
				Model:          req.Model,
				Year:           req.Year,
				Plate:          req.Plate,
				DailyRateCents: req.DailyRateCents,
				HomeLocationID: req.HomeLocationID,
				Status:         domain.VehicleStatus(req.Status),
			})
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, vehicleFrom(v))
		default:
			methodNotAllowed(w)
		}
	}
}

// HandleAdminVehicleStatus serves POST /admin/vehicles/{id}/status.
func HandleAdminVehicleStatus(svc AdminVehicleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r.URL.Path, adminVehiclesPath)
		if len(parts) != 2 || parts[1] != "status" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req vehicleStatusRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		v, err := svc.UpdateVehicleStatus(r.Context(), parts[0], domain.VehicleStatus(req.Status))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicleFrom(v))
	}
}

// HandleAdminLocations returns an HTTP handler for location creation/listing.
func HandleAdminLocations(svc AdminLocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			locations, err := svc.ListLocations(r.Context())
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			resp := make([]locationResponse, 0, len(locations))
			for _, l := range locations {
				resp = append(resp, locationFrom(l))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createLocationRequest
			if !decodeJSON(w, r, &req, false) {
				return
			}
			l, err := svc.CreateLocation(r.Context(), app.CreateLocationInput{Name: req.Name, Address: req.Address})
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, locationFrom(l))
		default:
			methodNotAllowed(w)
		}
	}
}

type createVehicleRequest struct {
	Make           string `json:"make" validate:"required"`
	Model          string `json:"model" validate:"required"`
	Year           int    `json:"year" validate:"gte=1950,lte=2100"`
	Plate          string `json:"plate" validate:"required,max=16"`
	DailyRateCents int64  `json:"daily_rate_cents" validate:"gte=0"`
	HomeLocationID string `json:"home_location_id,omitempty"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=available rented maintenance inactive"`
}

type vehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available rented maintenance inactive"`
}

type createLocationRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address,omitempty"`
}

type vehicleResponse struct {
	ID             string    `json:"id"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Plate          string    `json:"plate"`
	Status         string    `json:"status"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	HomeLocationID string    `json:"home_location_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func vehicleFrom(v domain.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:             v.ID,
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Plate:          v.Plate,
		Status:         string(v.Status),
		DailyRateCents: v.DailyRateCents,
		HomeLocationID: v.HomeLocationID,
		CreatedAt:      v.CreatedAt,
	}
}

type locationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func locationFrom(l domain.Location) locationResponse {
	return locationResponse{ID: l.ID, Name: l.Name, Address: l.Address, CreatedAt: l.CreatedAt}
}
