package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"challan-service/internal/model"
	"challan-service/internal/repository"
)

func newDetectionService(t *testing.T) (*DetectionService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	svc := NewDetectionService(
		testConfig(),
		repository.NewDetectionLogRepository(db),
		repository.NewViolationRepository(db),
		repository.NewVehicleRepository(db),
	)
	return svc, db
}

func detectionInput(plate string, intensity int) IngestInput {
	return IngestInput{
		RawPayload:    `{"vehicle_number":"` + plate + `"}`,
		VehicleNumber: plate,
		BeamIntensity: intensity,
		CameraID:      "CAM-001",
		Address:       "Marine Drive, Mumbai",
		SourceIP:      "10.0.0.1",
	}
}

func mustOnlyLog(t *testing.T, db *gorm.DB) model.DetectionLog {
	t.Helper()
	var logs []model.DetectionLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1, "every webhook call must leave exactly one audit row")
	return logs[0]
}

func TestIngestRejectsBadAPIKey(t *testing.T) {
	svc, db := newDetectionService(t)

	_, err := svc.Ingest(context.Background(), "wrong-key", detectionInput("MH12AB1234", 85))
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Auth happens before any persistence.
	var count int64
	require.NoError(t, db.Model(&model.DetectionLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestCreatesPendingViolation(t *testing.T) {
	svc, db := newDetectionService(t)

	result, err := svc.Ingest(context.Background(), "test-webhook-key", detectionInput("mh 12 ab 1234", 85))
	require.NoError(t, err)

	assert.Equal(t, "MH12AB1234", result.VehicleNumber)
	assert.Equal(t, float64(2000), result.FineAmount)
	assert.Equal(t, model.ViolationStatusPending, result.Status)
	assert.NotEmpty(t, result.ChallanNumber)
	assert.False(t, result.Duplicate)
	assert.False(t, result.OwnerFound)

	var violation model.Violation
	require.NoError(t, db.First(&violation, "id = ?", result.ViolationID).Error)
	assert.Equal(t, model.ViolationStatusPending, violation.Status)
	assert.Nil(t, violation.VehicleID, "unknown plate should leave the owner link empty")

	log := mustOnlyLog(t, db)
	assert.True(t, log.Processed)
	require.NotNil(t, log.ViolationID)
	assert.Equal(t, result.ViolationID, *log.ViolationID)
	assert.Nil(t, log.ErrorMessage)
}

func TestIngestLinksKnownOwner(t *testing.T) {
	svc, db := newDetectionService(t)

	vehicle := &model.Vehicle{
		VehicleNumber: "MH12AB1234",
		OwnerName:     "Asha Patil",
		OwnerDOBHash:  "x",
	}
	require.NoError(t, db.Create(vehicle).Error)

	result, err := svc.Ingest(context.Background(), "test-webhook-key", detectionInput("MH12AB1234", 70))
	require.NoError(t, err)

	assert.True(t, result.OwnerFound)
	assert.Equal(t, "Asha Patil", result.OwnerName)
	assert.Equal(t, float64(1500), result.FineAmount)

	var violation model.Violation
	require.NoError(t, db.First(&violation, "id = ?", result.ViolationID).Error)
	require.NotNil(t, violation.VehicleID)
	assert.Equal(t, vehicle.ID, *violation.VehicleID)
}

func TestIngestMissingPlate(t *testing.T) {
	svc, db := newDetectionService(t)

	input := detectionInput("", 85)
	_, err := svc.Ingest(context.Background(), "test-webhook-key", input)
	assert.ErrorIs(t, err, ErrInvalidInput)

	log := mustOnlyLog(t, db)
	assert.True(t, log.Processed)
	assert.Nil(t, log.ViolationID)
	require.NotNil(t, log.ErrorMessage)
	assert.Equal(t, "Missing vehicle_number", *log.ErrorMessage)

	var count int64
	require.NoError(t, db.Model(&model.Violation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestLowIntensity(t *testing.T) {
	svc, db := newDetectionService(t)

	_, err := svc.Ingest(context.Background(), "test-webhook-key", detectionInput("MH12AB1234", 40))
	assert.ErrorIs(t, err, ErrLowIntensity)

	log := mustOnlyLog(t, db)
	assert.True(t, log.Processed)
	require.NotNil(t, log.ErrorMessage)
	assert.Equal(t, "Beam intensity too low", *log.ErrorMessage)

	var count int64
	require.NoError(t, db.Model(&model.Violation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestDeduplicatesRepeatDelivery(t *testing.T) {
	svc, db := newDetectionService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "test-webhook-key", detectionInput("MH12AB1234", 85))
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, "test-webhook-key", detectionInput("mh12 ab 1234", 85))
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ViolationID, second.ViolationID)
	assert.Equal(t, first.ChallanNumber, second.ChallanNumber)

	var violations int64
	require.NoError(t, db.Model(&model.Violation{}).Count(&violations).Error)
	assert.Equal(t, int64(1), violations)

	// Both deliveries still leave their own audit row.
	var logs []model.DetectionLog
	require.NoError(t, db.Order("created_at ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	for _, log := range logs {
		assert.True(t, log.Processed)
		require.NotNil(t, log.ViolationID)
		assert.Equal(t, first.ViolationID, *log.ViolationID)
	}
}

func TestIngestDifferentCameraIsNotDuplicate(t *testing.T) {
	svc, _ := newDetectionService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "test-webhook-key", detectionInput("MH12AB1234", 85))
	require.NoError(t, err)

	input := detectionInput("MH12AB1234", 85)
	input.CameraID = "CAM-002"
	second, err := svc.Ingest(ctx, "test-webhook-key", input)
	require.NoError(t, err)

	assert.False(t, second.Duplicate)
	assert.NotEqual(t, first.ViolationID, second.ViolationID)
}
