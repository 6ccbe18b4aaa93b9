package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetlog/internal/domain"
	"github.com/pkordes/fleetlog/internal/repo"
	"github.com/pkordes/fleetlog/testutil"
)

func newVehicleRepo(t *testing.T) repo.VehicleRepo {
	t.Helper()
	return repo.NewVehicleRepo(testutil.NewTx(t))
}

func TestVehicleRepo_Create(t *testing.T) {
	r := newVehicleRepo(t)
	ctx := context.Background()

	got, err := r.Create(ctx, domain.Vehicle{Plate: "品川 300 あ 12-34", Name: "Delivery van"})

	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID)
	assert.Equal(t, "品川 300 あ 12-34", got.Plate)
	assert.Equal(t, "Delivery van", got.Name)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestVehicleRepo_Create_DuplicatePlate(t *testing.T) {
	r := newVehicleRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, domain.Vehicle{Plate: "A-1"})
	require.NoError(t, err)

	_, err = r.Create(ctx, domain.Vehicle{Plate: "A-1"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVehicleRepo_GetByPlate(t *testing.T) {
	r := newVehicleRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, domain.Vehicle{Plate: "A-1"})
	require.NoError(t, err)

	got, err := r.GetByPlate(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = r.GetByPlate(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVehicleRepo_ListByPlates(t *testing.T) {
	r := newVehicleRepo(t)
	ctx := context.Background()

	for _, p := range []string{"A-1", "A-2", "A-3"} {
		_, err := r.Create(ctx, domain.Vehicle{Plate: p})
		require.NoError(t, err)
	}

	got, err := r.ListByPlates(ctx, []string{"A-1", "A-3", "nope"})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "A-1")
	assert.Contains(t, got, "A-3")
	assert.NotContains(t, got, "nope")
}

func TestVehicleRepo_ListByPlates_Empty(t *testing.T) {
	r := newVehicleRepo(t)

	got, err := r.ListByPlates(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVehicleRepo_List_OrderedByPlate(t *testing.T) {
	r := newVehicleRepo(t)
	ctx := context.Background()

	for _, p := range []string{"C", "A", "B"} {
		_, err := r.Create(ctx, domain.Vehicle{Plate: p})
		require.NoError(t, err)
	}

	got, err := r.List(ctx)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Plate)
	assert.Equal(t, "C", got[2].Plate)
}
