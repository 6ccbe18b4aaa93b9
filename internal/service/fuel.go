package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleetlog/internal/domain"
	"github.com/pkordes/fleetlog/internal/fuelimport"
	"github.com/pkordes/fleetlog/internal/repo"
)

// FuelService implements the fuel record operations, including the batch
// collection endpoint fed by the CSV importer.
type FuelService struct {
	fuel     repo.FuelRepo
	vehicles repo.VehicleRepo
	logger   *slog.Logger
}

// NewFuelService constructs a FuelService backed by the provided repos.
// A nil logger discards output.
func NewFuelService(fuel repo.FuelRepo, vehicles repo.VehicleRepo, logger *slog.Logger) *FuelService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FuelService{fuel: fuel, vehicles: vehicles, logger: logger}
}

// CreateBatch validates and stores a batch of imported records.
//
// Each record is checked with the same rules the importer applies, and its
// plate must belong to a registered vehicle. Failing records are reported by
// index in the result; the others are inserted together or not at all.
//
// A non-nil key makes the call idempotent: if a batch with that key was
// already stored, its outcome is returned with Replayed set and nothing is
// inserted. Returns domain.ErrValidation for an empty batch.
func (s *FuelService) CreateBatch(ctx context.Context, key uuid.UUID, inputs []domain.FuelRecordInput) (domain.BatchResult, error) {
	if len(inputs) == 0 {
		return domain.BatchResult{}, fmt.Errorf("%w: records must not be empty", domain.ErrValidation)
	}

	if key != uuid.Nil {
		prev, err := s.fuel.GetBatch(ctx, key)
		switch {
		case err == nil:
			prev.Replayed = true
			return prev, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.BatchResult{}, fmt.Errorf("service.FuelService.CreateBatch: %w", err)
		}
	}

	result := domain.BatchResult{BatchID: key, Errors: []domain.RecordError{}}
	accepted := make([]domain.FuelRecord, 0, len(inputs))
	indexes := make([]int, 0, len(inputs))
	var plates []string

	for i, in := range inputs {
		c := fuelimport.NewCandidate(i, inputValues(in))
		rec, ok := c.Record()
		if !ok {
			result.Errors = append(result.Errors, domain.RecordError{Index: i, Message: c.Error})
			continue
		}
		if msg := columnProblem(rec); msg != "" {
			result.Errors = append(result.Errors, domain.RecordError{Index: i, Message: msg})
			continue
		}
		accepted = append(accepted, rec)
		indexes = append(indexes, i)
		if !slices.Contains(plates, rec.VehiclePlate) {
			plates = append(plates, rec.VehiclePlate)
		}
	}

	known, err := s.vehicles.ListByPlates(ctx, plates)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.FuelService.CreateBatch: %w", err)
	}

	resolved := accepted[:0]
	for n, rec := range accepted {
		v, ok := known[rec.VehiclePlate]
		if !ok {
			result.Errors = append(result.Errors, domain.RecordError{
				Index:   indexes[n],
				Message: fmt.Sprintf("vehicle_plate %q is not a registered vehicle", rec.VehiclePlate),
			})
			continue
		}
		rec.VehicleID = v.ID
		resolved = append(resolved, rec)
	}
	slices.SortFunc(result.Errors, func(a, b domain.RecordError) int { return a.Index - b.Index })
	result.SuccessCount = len(resolved)

	if err := s.fuel.CreateBatch(ctx, result, resolved); err != nil {
		if key != uuid.Nil && errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent request carrying the same key.
			prev, getErr := s.fuel.GetBatch(ctx, key)
			if getErr == nil {
				prev.Replayed = true
				return prev, nil
			}
		}
		return domain.BatchResult{}, fmt.Errorf("service.FuelService.CreateBatch: %w", err)
	}

	s.logger.InfoContext(ctx, "fuel batch stored",
		slog.String("batch_id", key.String()),
		slog.Int("success_count", result.SuccessCount),
		slog.Int("error_count", result.ErrorCount()),
	)
	return result, nil
}

// numericColumn is the NUMERIC(precision, scale) shape of a fuel_records
// column.
type numericColumn struct {
	name             string
	precision, scale int32
	value            func(domain.FuelRecord) decimal.Decimal
}

// fuelNumericColumns mirrors migrations/00002_create_fuel_records.sql.
var fuelNumericColumns = []numericColumn{
	{"fuel_amount", 10, 3, func(r domain.FuelRecord) decimal.Decimal { return r.FuelAmount }},
	{"unit_price", 10, 2, func(r domain.FuelRecord) decimal.Decimal { return r.UnitPrice }},
	{"fuel_cost", 12, 2, func(r domain.FuelRecord) decimal.Decimal { return r.FuelCost }},
}

// columnProblem reports the first value Postgres would round or reject on
// insert. Such a record fails on its own instead of aborting the batch.
func columnProblem(rec domain.FuelRecord) string {
	for _, col := range fuelNumericColumns {
		v := col.value(rec)
		limit := decimal.New(1, col.precision-col.scale)
		if !v.Equal(v.Truncate(col.scale)) || v.Abs().GreaterThanOrEqual(limit) {
			return fmt.Sprintf("%s %s must be below %s with at most %d decimal places",
				col.name, v.String(), limit.String(), col.scale)
		}
	}
	return ""
}

// inputValues maps an input to the importer's column names.
func inputValues(in domain.FuelRecordInput) map[string]string {
	return map[string]string{
		fuelimport.FieldFuelDate.String():      in.FuelDate,
		fuelimport.FieldVehiclePlate.String():  in.VehiclePlate,
		fuelimport.FieldFuelAmount.String():    in.FuelAmount,
		fuelimport.FieldUnitPrice.String():     in.UnitPrice,
		fuelimport.FieldFuelCost.String():      in.FuelCost,
		fuelimport.FieldMileage.String():       in.Mileage,
		fuelimport.FieldFuelStation.String():   in.FuelStation,
		fuelimport.FieldAttendant.String():     in.Attendant,
		fuelimport.FieldPaymentMethod.String(): in.PaymentMethod,
		fuelimport.FieldReceiptNumber.String(): in.ReceiptNumber,
		fuelimport.FieldNotes.String():         in.Notes,
	}
}

// GetByID returns a single fuel record.
// Returns domain.ErrNotFound if no record with that ID exists.
func (s *FuelService) GetByID(ctx context.Context, id uuid.UUID) (domain.FuelRecord, error) {
	rec, err := s.fuel.GetByID(ctx, id)
	if err != nil {
		return domain.FuelRecord{}, fmt.Errorf("service.FuelService.GetByID: %w", err)
	}
	return rec, nil
}

// List returns one page of records plus the total count.
// Returns domain.ErrValidation if the date range is inverted.
// Always returns a non-nil slice so callers can safely range over it.
func (s *FuelService) List(ctx context.Context, filter domain.FuelFilter, page domain.PaginationParams) ([]domain.FuelRecord, int64, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	records, total, err := s.fuel.ListPaged(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.FuelService.List: %w", err)
	}
	if records == nil {
		records = []domain.FuelRecord{}
	}
	return records, total, nil
}

// Summary aggregates the records matching filter.
func (s *FuelService) Summary(ctx context.Context, filter domain.FuelFilter) (domain.FuelSummary, error) {
	if err := validateFilter(filter); err != nil {
		return domain.FuelSummary{}, err
	}
	summary, err := s.fuel.Summary(ctx, filter)
	if err != nil {
		return domain.FuelSummary{}, fmt.Errorf("service.FuelService.Summary: %w", err)
	}
	if summary.TopVehicles == nil {
		summary.TopVehicles = []domain.VehicleFuelTotal{}
	}
	return summary, nil
}

// Delete removes a record by ID.
// Returns domain.ErrNotFound if the record does not exist.
func (s *FuelService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.fuel.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.FuelService.Delete: %w", err)
	}
	return nil
}

// validateFilter rejects an end date before the start date.
func validateFilter(f domain.FuelFilter) error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return nil
}
