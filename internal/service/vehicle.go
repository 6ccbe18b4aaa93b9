// Package service contains the business logic for the fleet log API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/fleetlog/internal/domain"
	"github.com/pkordes/fleetlog/internal/repo"
)

// VehicleService implements business logic for Vehicle operations.
type VehicleService struct {
	repo repo.VehicleRepo
}

// NewVehicleService constructs a VehicleService backed by the provided VehicleRepo.
func NewVehicleService(r repo.VehicleRepo) *VehicleService {
	return &VehicleService{repo: r}
}

// Create validates and registers a vehicle.
// Returns domain.ErrValidation for a blank plate and domain.ErrConflict if the
// plate is already registered.
func (s *VehicleService) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v.Plate = strings.TrimSpace(v.Plate)
	v.Name = strings.TrimSpace(v.Name)
	if v.Plate == "" {
		return domain.Vehicle{}, fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	result, err := s.repo.Create(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	return result, nil
}

// List returns all vehicles ordered by plate.
// Always returns a non-nil slice so callers can safely range over it.
func (s *VehicleService) List(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.VehicleService.List: %w", err)
	}
	if vehicles == nil {
		return []domain.Vehicle{}, nil
	}
	return vehicles, nil
}
