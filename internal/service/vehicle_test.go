package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetlog/internal/domain"
	"github.com/pkordes/fleetlog/internal/repo"
	"github.com/pkordes/fleetlog/internal/service"
)

// mockVehicleRepo is a hand-written test double for repo.VehicleRepo.
// Each method is a function field; set only the ones your test needs.
type mockVehicleRepo struct {
	create       func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByPlate   func(ctx context.Context, plate string) (domain.Vehicle, error)
	listByPlates func(ctx context.Context, plates []string) (map[string]domain.Vehicle, error)
	list         func(ctx context.Context) ([]domain.Vehicle, error)
}

func (m *mockVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleRepo) GetByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	return m.getByPlate(ctx, plate)
}
func (m *mockVehicleRepo) ListByPlates(ctx context.Context, plates []string) (map[string]domain.Vehicle, error) {
	return m.listByPlates(ctx, plates)
}
func (m *mockVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.list(ctx)
}

// compile-time check: mockVehicleRepo must satisfy repo.VehicleRepo.
var _ repo.VehicleRepo = (*mockVehicleRepo)(nil)

func TestVehicleService_Create_TrimsInput(t *testing.T) {
	var got domain.Vehicle
	svc := service.NewVehicleService(&mockVehicleRepo{
		create: func(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
			got = v
			return v, nil
		},
	})

	_, err := svc.Create(context.Background(), domain.Vehicle{Plate: "  A-1 ", Name: " van "})

	require.NoError(t, err)
	assert.Equal(t, "A-1", got.Plate)
	assert.Equal(t, "van", got.Name)
}

func TestVehicleService_Create_BlankPlate(t *testing.T) {
	called := false
	svc := service.NewVehicleService(&mockVehicleRepo{
		create: func(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
			called = true
			return v, nil
		},
	})

	_, err := svc.Create(context.Background(), domain.Vehicle{Plate: "   "})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, called, "repo must not be called for invalid input")
}

func TestVehicleService_Create_Conflict(t *testing.T) {
	svc := service.NewVehicleService(&mockVehicleRepo{
		create: func(_ context.Context, _ domain.Vehicle) (domain.Vehicle, error) {
			return domain.Vehicle{}, domain.ErrConflict
		},
	})

	_, err := svc.Create(context.Background(), domain.Vehicle{Plate: "A-1"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVehicleService_List_NilBecomesEmpty(t *testing.T) {
	svc := service.NewVehicleService(&mockVehicleRepo{
		list: func(_ context.Context) ([]domain.Vehicle, error) { return nil, nil },
	})

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVehicleService_List_RepoError(t *testing.T) {
	svc := service.NewVehicleService(&mockVehicleRepo{
		list: func(_ context.Context) ([]domain.Vehicle, error) { return nil, errors.New("db down") },
	})

	_, err := svc.List(context.Background())

	assert.ErrorContains(t, err, "db down")
}
