package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fleetlog/internal/domain"
)

type vehicleRequest struct {
	Plate string `json:"plate"`
	Name  string `json:"name"`
}

// VehicleResponse is the JSON form of a registered vehicle.
type VehicleResponse struct {
	ID        uuid.UUID `json:"id"`
	Plate     string    `json:"plate"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateVehicle handles POST /api/vehicles.
func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bodyError(w, err, "request body must be a JSON object")
		return
	}

	created, err := s.vehicles.Create(r.Context(), domain.Vehicle{Plate: req.Plate, Name: req.Name})
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, vehicleToResponse(created))
}

// ListVehicles handles GET /api/vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.vehicles.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	out := make([]VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		out[i] = vehicleToResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

func vehicleToResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        v.ID,
		Plate:     v.Plate,
		Name:      v.Name,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
