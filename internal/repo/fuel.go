package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleetlog/internal/domain"
)

// FuelRepo defines the persistence operations for fuel records and the
// import batches that created them.
type FuelRepo interface {
	// CreateBatch inserts records and, when result.BatchID is set, the batch row
	// holding result, all in one transaction. Either everything is stored or
	// nothing is. Returns domain.ErrConflict if the batch ID already exists.
	CreateBatch(ctx context.Context, result domain.BatchResult, records []domain.FuelRecord) error

	// GetBatch returns the stored outcome of an import batch.
	// Returns domain.ErrNotFound if the batch ID is unknown.
	GetBatch(ctx context.Context, id uuid.UUID) (domain.BatchResult, error)

	// GetByID retrieves a single fuel record.
	// Returns domain.ErrNotFound if no record with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.FuelRecord, error)

	// ListPaged returns one page of records matching filter, newest fuel date
	// first, plus the total number of matching records.
	ListPaged(ctx context.Context, filter domain.FuelFilter, page domain.PaginationParams) ([]domain.FuelRecord, int64, error)

	// List returns every record matching filter, oldest fuel date first.
	List(ctx context.Context, filter domain.FuelFilter) ([]domain.FuelRecord, error)

	// Summary aggregates the records matching filter.
	Summary(ctx context.Context, filter domain.FuelFilter) (domain.FuelSummary, error)

	// Delete removes a record by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgFuelRepo is the Postgres implementation of FuelRepo.
type pgFuelRepo struct {
	db db
}

// NewFuelRepo constructs a FuelRepo backed by the provided db connection.
func NewFuelRepo(db db) FuelRepo {
	return &pgFuelRepo{db: db}
}

const fuelColumns = `
	id, vehicle_id, vehicle_plate, fuel_date, fuel_amount, unit_price, fuel_cost,
	mileage, fuel_station, attendant, payment_method, receipt_number, notes,
	batch_id, created_at, updated_at`

// fuelFilterClause is shared by every filtered query. Empty plate and NULL
// dates disable their condition.
const fuelFilterClause = `
	WHERE (@plate = '' OR vehicle_plate = @plate)
	  AND (@start_date::date IS NULL OR fuel_date >= @start_date::date)
	  AND (@end_date::date IS NULL OR fuel_date <= @end_date::date)`

func filterArgs(f domain.FuelFilter) pgx.NamedArgs {
	return pgx.NamedArgs{
		"plate":      f.VehiclePlate,
		"start_date": f.StartDate, // nil becomes NULL
		"end_date":   f.EndDate,
	}
}

// CreateBatch runs in its own transaction (a savepoint when db is already a pgx.Tx).
func (r *pgFuelRepo) CreateBatch(ctx context.Context, result domain.BatchResult, records []domain.FuelRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.FuelRepo.CreateBatch: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var batchID *uuid.UUID
	if result.BatchID != uuid.Nil {
		const qb = `
			INSERT INTO fuel_import_batches (id, success_count, errors)
			VALUES (@id, @success_count, @errors)`

		errs := result.Errors
		if errs == nil {
			errs = []domain.RecordError{}
		}
		_, err := tx.Exec(ctx, qb, pgx.NamedArgs{
			"id":            result.BatchID,
			"success_count": result.SuccessCount,
			"errors":        errs,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("repo.FuelRepo.CreateBatch: %w: batch %s already processed", domain.ErrConflict, result.BatchID)
			}
			return fmt.Errorf("repo.FuelRepo.CreateBatch: insert batch: %w", err)
		}
		batchID = &result.BatchID
	}

	const q = `
		INSERT INTO fuel_records (
			vehicle_id, vehicle_plate, fuel_date, fuel_amount, unit_price, fuel_cost,
			mileage, fuel_station, attendant, payment_method, receipt_number, notes, batch_id)
		VALUES (
			@vehicle_id, @vehicle_plate, @fuel_date, @fuel_amount, @unit_price, @fuel_cost,
			@mileage, @fuel_station, @attendant, @payment_method, @receipt_number, @notes, @batch_id)`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(q, pgx.NamedArgs{
			"vehicle_id":     rec.VehicleID,
			"vehicle_plate":  rec.VehiclePlate,
			"fuel_date":      pgtype.Date{Time: rec.FuelDate, Valid: true},
			"fuel_amount":    numeric(rec.FuelAmount),
			"unit_price":     numeric(rec.UnitPrice),
			"fuel_cost":      numeric(rec.FuelCost),
			"mileage":        rec.Mileage, // nil becomes NULL
			"fuel_station":   rec.FuelStation,
			"attendant":      rec.Attendant,
			"payment_method": rec.PaymentMethod,
			"receipt_number": rec.ReceiptNumber,
			"notes":          rec.Notes,
			"batch_id":       batchID,
		})
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("repo.FuelRepo.CreateBatch: insert records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.FuelRepo.CreateBatch: commit: %w", err)
	}
	return nil
}

func (r *pgFuelRepo) GetBatch(ctx context.Context, id uuid.UUID) (domain.BatchResult, error) {
	const q = `SELECT success_count, errors FROM fuel_import_batches WHERE id = @id`

	result := domain.BatchResult{BatchID: id}
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&result.SuccessCount, &result.Errors)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BatchResult{}, fmt.Errorf("repo.FuelRepo.GetBatch: %w", domain.ErrNotFound)
		}
		return domain.BatchResult{}, fmt.Errorf("repo.FuelRepo.GetBatch: %w", err)
	}
	return result, nil
}

func (r *pgFuelRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.FuelRecord, error) {
	const q = `SELECT ` + fuelColumns + ` FROM fuel_records WHERE id = @id`

	result, err := scanFuelRecord(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.FuelRecord{}, fmt.Errorf("repo.FuelRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgFuelRepo) ListPaged(ctx context.Context, filter domain.FuelFilter, page domain.PaginationParams) ([]domain.FuelRecord, int64, error) {
	const countQ = `SELECT count(*) FROM fuel_records` + fuelFilterClause
	const q = `SELECT ` + fuelColumns + ` FROM fuel_records` + fuelFilterClause + `
		ORDER BY fuel_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	args := filterArgs(filter)

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.FuelRepo.ListPaged: count: %w", err)
	}

	args["limit"] = page.Limit
	args["offset"] = page.Offset()
	records, err := r.query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.FuelRepo.ListPaged: %w", err)
	}
	return records, total, nil
}

func (r *pgFuelRepo) List(ctx context.Context, filter domain.FuelFilter) ([]domain.FuelRecord, error) {
	const q = `SELECT ` + fuelColumns + ` FROM fuel_records` + fuelFilterClause + `
		ORDER BY fuel_date ASC, created_at ASC`

	records, err := r.query(ctx, q, filterArgs(filter))
	if err != nil {
		return nil, fmt.Errorf("repo.FuelRepo.List: %w", err)
	}
	return records, nil
}

func (r *pgFuelRepo) Summary(ctx context.Context, filter domain.FuelFilter) (domain.FuelSummary, error) {
	const totalsQ = `
		SELECT count(*), COALESCE(sum(fuel_amount), 0), COALESCE(sum(fuel_cost), 0)
		FROM fuel_records` + fuelFilterClause
	const vehiclesQ = `
		SELECT vehicle_plate, count(*), sum(fuel_amount), sum(fuel_cost)
		FROM fuel_records` + fuelFilterClause + `
		GROUP BY vehicle_plate
		ORDER BY sum(fuel_amount) DESC, vehicle_plate
		LIMIT @top`

	args := filterArgs(filter)

	var (
		s             domain.FuelSummary
		liters, costs pgtype.Numeric
	)
	if err := r.db.QueryRow(ctx, totalsQ, args).Scan(&s.RecordCount, &liters, &costs); err != nil {
		return domain.FuelSummary{}, fmt.Errorf("repo.FuelRepo.Summary: totals: %w", err)
	}
	s.TotalLiters = fromNumeric(liters)
	s.TotalCost = fromNumeric(costs)

	args["top"] = domain.SummaryTopVehicles
	rows, err := r.db.Query(ctx, vehiclesQ, args)
	if err != nil {
		return domain.FuelSummary{}, fmt.Errorf("repo.FuelRepo.Summary: vehicles: %w", err)
	}
	defer rows.Close()

	s.TopVehicles = []domain.VehicleFuelTotal{}
	for rows.Next() {
		var v domain.VehicleFuelTotal
		if err := rows.Scan(&v.VehiclePlate, &v.RecordCount, &liters, &costs); err != nil {
			return domain.FuelSummary{}, fmt.Errorf("repo.FuelRepo.Summary: scan: %w", err)
		}
		v.Liters = fromNumeric(liters)
		v.Cost = fromNumeric(costs)
		s.TopVehicles = append(s.TopVehicles, v)
	}
	if err := rows.Err(); err != nil {
		return domain.FuelSummary{}, fmt.Errorf("repo.FuelRepo.Summary: rows: %w", err)
	}
	return s, nil
}

func (r *pgFuelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM fuel_records WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.FuelRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.FuelRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgFuelRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.FuelRecord, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.FuelRecord
	for rows.Next() {
		rec, err := scanFuelRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}

// scanFuelRecord maps a single row into a domain.FuelRecord, converting UUIDs,
// the DATE column, NUMERIC amounts, and the nullable mileage and batch_id.
func scanFuelRecord(s scanner) (domain.FuelRecord, error) {
	var (
		rec                    domain.FuelRecord
		id, vehicleID, batchID pgtype.UUID
		fuelDate               pgtype.Date
		amount, price, cost    pgtype.Numeric
		mileage                pgtype.Int8
	)

	err := s.Scan(
		&id, &vehicleID, &rec.VehiclePlate, &fuelDate, &amount, &price, &cost,
		&mileage, &rec.FuelStation, &rec.Attendant, &rec.PaymentMethod, &rec.ReceiptNumber, &rec.Notes,
		&batchID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FuelRecord{}, domain.ErrNotFound
		}
		return domain.FuelRecord{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	rec.VehicleID = uuid.UUID(vehicleID.Bytes)
	rec.FuelDate = fuelDate.Time
	rec.FuelAmount = fromNumeric(amount)
	rec.UnitPrice = fromNumeric(price)
	rec.FuelCost = fromNumeric(cost)
	if mileage.Valid {
		m := mileage.Int64
		rec.Mileage = &m
	}
	if batchID.Valid {
		b := uuid.UUID(batchID.Bytes)
		rec.BatchID = &b
	}
	return rec, nil
}
