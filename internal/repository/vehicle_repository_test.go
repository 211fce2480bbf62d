package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challan-service/internal/model"
)

func TestGetByPlateUnknownIsNil(t *testing.T) {
	repo := NewVehicleRepository(setupTestDB(t))

	vehicle, err := repo.GetByPlate(context.Background(), "KA01ZZ9999")
	require.NoError(t, err)
	assert.Nil(t, vehicle)

	vehicle, err = repo.GetByPlate(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, vehicle)
}

func TestVehicleRoundTrip(t *testing.T) {
	repo := NewVehicleRepository(setupTestDB(t))
	ctx := context.Background()

	vehicle := &model.Vehicle{
		VehicleNumber: "MH12AB1234",
		OwnerName:     "Asha Rao",
		OwnerDOBHash:  "hash",
	}
	require.NoError(t, repo.Create(ctx, vehicle))

	byPlate, err := repo.GetByPlate(ctx, "MH12AB1234")
	require.NoError(t, err)
	require.NotNil(t, byPlate)
	assert.Equal(t, vehicle.ID, byPlate.ID)

	byID, err := repo.GetByID(ctx, vehicle.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Asha Rao", byID.OwnerName)
}

func TestVehicleUpdate(t *testing.T) {
	repo := NewVehicleRepository(setupTestDB(t))
	ctx := context.Background()

	vehicle := &model.Vehicle{
		VehicleNumber: "MH12AB1234",
		OwnerName:     model.PlaceholderOwnerName,
		OwnerDOBHash:  "hash",
	}
	require.NoError(t, repo.Create(ctx, vehicle))
	assert.True(t, vehicle.IsPlaceholder())

	vehicle.OwnerName = "Asha Rao"
	require.NoError(t, repo.Update(ctx, vehicle))

	stored, err := repo.GetByID(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", stored.OwnerName)
	assert.False(t, stored.IsPlaceholder())
}
