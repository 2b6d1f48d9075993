package http

import (
	"context"
	"net/http"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

type StatsProvider interface {
	Overview(ctx context.Context) (domain.Overview, error)
}

// HandleStats serves the dashboard counters.
func HandleStats(svc StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		o, err := svc.Overview(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := statsResponse{
			ReservationsByStatus: make(map[string]int, len(o.ReservationsByStatus)),
			PendingApprovals:     o.PendingApprovals,
			PaidRevenueCents:     o.PaidRevenueCents,
			VehiclesByStatus:     make(map[string]int, len(o.VehiclesByStatus)),
			TotalVehicles:        o.TotalVehicles,
			PickupsToday:         o.PickupsToday,
			ReturnsToday:         o.ReturnsToday,
		}
		for st, n := range o.ReservationsByStatus {
			resp.ReservationsByStatus[string(st)] = n
		}
		for st, n := range o.VehiclesByStatus {
			resp.VehiclesByStatus[string(st)] = n
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type statsResponse struct {
	ReservationsByStatus map[string]int `json:"reservations_by_status"`
	PendingApprovals     int            `json:"pending_approvals"`
	PaidRevenueCents     int64          `json:"paid_revenue_cents"`
	VehiclesByStatus     map[string]int `json:"vehicles_by_status"`
	TotalVehicles        int            `json:"total_vehicles"`
	PickupsToday         int            `json:"pickups_today"`
	ReturnsToday         int            `json:"returns_today"`
}
