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

// VehicleRepo defines the persistence operations for Vehicles.
type VehicleRepo interface {
	// Create inserts a vehicle. Returns domain.ErrConflict if the plate is taken.
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// GetByPlate returns the vehicle registered under plate.
	// Returns domain.ErrNotFound if there is none.
	GetByPlate(ctx context.Context, plate string) (domain.Vehicle, error)

	// ListByPlates returns the registered vehicles among plates, keyed by plate.
	// Unknown plates are simply absent from the map.
	ListByPlates(ctx context.Context, plates []string) (map[string]domain.Vehicle, error)

	// List returns all vehicles ordered by plate.
	List(ctx context.Context) ([]domain.Vehicle, error)
}

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

const vehicleColumns = `id, plate, name, created_at, updated_at`

func (r *pgVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (plate, name)
		VALUES (@plate, @name)
		RETURNING ` + vehicleColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"plate": v.Plate, "name": v.Name})
	result, err := scanVehicle(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w: plate %q already registered", domain.ErrConflict, v.Plate)
		}
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) GetByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE plate = @plate`

	result, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"plate": plate}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByPlate: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) ListByPlates(ctx context.Context, plates []string) (map[string]domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE plate = ANY(@plates)`

	out := make(map[string]domain.Vehicle, len(plates))
	if len(plates) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"plates": plates})
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.ListByPlates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.ListByPlates: scan: %w", err)
		}
		out[v.Plate] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.ListByPlates: rows: %w", err)
	}
	return out, nil
}

func (r *pgVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY plate`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.List: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: rows: %w", err)
	}
	return vehicles, nil
}

func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v  domain.Vehicle
		id pgtype.UUID
	)
	if err := s.Scan(&id, &v.Plate, &v.Name, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrNotFound
		}
		return domain.Vehicle{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	return v, nil
}
