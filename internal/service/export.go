package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkordes/fleetlog/internal/domain"
	"github.com/pkordes/fleetlog/internal/repo"
)

// ExportService assembles a flat export of fuel records.
type ExportService struct {
	fuel repo.FuelRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(fuel repo.FuelRepo) *ExportService {
	return &ExportService{fuel: fuel}
}

// Export returns one ExportRow per record matching filter, oldest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, filter domain.FuelFilter) ([]domain.ExportRow, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	records, err := s.fuel.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, exportRow(r))
	}
	return rows, nil
}

func exportRow(r domain.FuelRecord) domain.ExportRow {
	row := domain.ExportRow{
		ID:            r.ID.String(),
		VehiclePlate:  r.VehiclePlate,
		FuelDate:      r.FuelDate.Format(time.DateOnly),
		FuelAmount:    r.FuelAmount.String(),
		UnitPrice:     r.UnitPrice.String(),
		FuelCost:      r.FuelCost.String(),
		FuelStation:   r.FuelStation,
		Attendant:     r.Attendant,
		PaymentMethod: r.PaymentMethod,
		ReceiptNumber: r.ReceiptNumber,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.Mileage != nil {
		row.Mileage = strconv.FormatInt(*r.Mileage, 10)
	}
	return row
}
