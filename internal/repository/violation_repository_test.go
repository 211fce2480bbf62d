package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"challan-service/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.Vehicle{}, &model.Violation{}, &model.DetectionLog{}, &model.Payment{})
	require.NoError(t, err)

	return db
}

func seedViolation(t *testing.T, repo *ViolationRepository, plate string, status model.ViolationStatus) *model.Violation {
	t.Helper()

	violation := &model.Violation{
		VehicleNumber:      plate,
		DetectionTimestamp: time.Now(),
		BeamIntensity:      85,
		AIConfidence:       0.95,
		LocationAddress:    "Marine Drive, Mumbai",
		CameraID:           "CAM-001",
		FineAmount:         2000,
		ChallanNumber:      "HB2501" + uuid.NewString()[:6],
	}
	require.NoError(t, repo.Create(context.Background(), violation))

	if status != model.ViolationStatusPending {
		require.NoError(t, repo.db.Model(violation).Update("status", status).Error)
		violation.Status = status
	}
	return violation
}

func TestCreateForcesPending(t *testing.T) {
	repo := NewViolationRepository(setupTestDB(t))

	violation := &model.Violation{
		VehicleNumber:      "MH12AB1234",
		DetectionTimestamp: time.Now(),
		BeamIntensity:      85,
		FineAmount:         2000,
		ChallanNumber:      "HB2501AAAAAA",
		Status:             model.ViolationStatusApproved, // caller input ignored
	}
	require.NoError(t, repo.Create(context.Background(), violation))

	stored, err := repo.GetByID(context.Background(), violation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViolationStatusPending, stored.Status)
}

func TestTransitionLegalEdges(t *testing.T) {
	repo := NewViolationRepository(setupTestDB(t))
	ctx := context.Background()
	reviewer := "admin-1"

	v := seedViolation(t, repo, "MH12AB1234", model.ViolationStatusPending)

	approved, err := repo.Transition(ctx, v.ID, TransitionParams{
		Target:   model.ViolationStatusApproved,
		Reviewer: &reviewer,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ViolationStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, reviewer, *approved.ReviewedBy)
	assert.NotNil(t, approved.ReviewedAt)

	paymentID := uuid.New()
	paid, err := repo.Transition(ctx, v.ID, TransitionParams{
		Target:    model.ViolationStatusPaid,
		PaymentID: &paymentID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ViolationStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentID)
	assert.Equal(t, paymentID, *paid.PaymentID)
	// Reviewer stamp from the approval edge must survive the paid edge.
	require.NotNil(t, paid.ReviewedBy)
	assert.Equal(t, reviewer, *paid.ReviewedBy)
}

func TestTransitionIllegalEdges(t *testing.T) {
	repo := NewViolationRepository(setupTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		from   model.ViolationStatus
		target model.ViolationStatus
	}{
		{"pending to paid", model.ViolationStatusPending, model.ViolationStatusPaid},
		{"rejected to approved", model.ViolationStatusRejected, model.ViolationStatusApproved},
		{"rejected to paid", model.ViolationStatusRejected, model.ViolationStatusPaid},
		{"paid to approved", model.ViolationStatusPaid, model.ViolationStatusApproved},
		{"paid to pending", model.ViolationStatusPaid, model.ViolationStatusPending},
		{"approved to rejected", model.ViolationStatusApproved, model.ViolationStatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := seedViolation(t, repo, "KA01CD5678", tc.from)
			_, err := repo.Transition(ctx, v.ID, TransitionParams{Target: tc.target})
			assert.ErrorIs(t, err, ErrInvalidTransition)

			stored, err := repo.GetByID(ctx, v.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.from, stored.Status, "status must be unchanged after illegal transition")
		})
	}
}

func TestTransitionUnknownID(t *testing.T) {
	repo := NewViolationRepository(setupTestDB(t))
	_, err := repo.Transition(context.Background(), uuid.New(), TransitionParams{
		Target: model.ViolationStatusApproved,
	})
	assert.True(t, IsNotFound(err))
}

func TestListByPlateOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	older := seedViolation(t, repo, "MH12AB1234", model.ViolationStatusPending)
	require.NoError(t, db.Model(older).Update("detection_timestamp", time.Now().Add(-2*time.Hour)).Error)
	newer := seedViolation(t, repo, "MH12AB1234", model.ViolationStatusPending)
	seedViolation(t, repo, "KA01CD5678", model.ViolationStatusPending)

	violations, err := repo.ListByPlate(ctx, "MH12AB1234", nil)
	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, newer.ID, violations[0].ID)
	assert.Equal(t, older.ID, violations[1].ID)

	status := model.ViolationStatusPaid
	paidOnly, err := repo.ListByPlate(ctx, "MH12AB1234", &status)
	require.NoError(t, err)
	assert.Empty(t, paidOnly)
}

func TestLinkVehicle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	seedViolation(t, repo, "MH99ZZ0000", model.ViolationStatusPending)
	seedViolation(t, repo, "MH99ZZ0000", model.ViolationStatusPending)

	// Already-linked violation for the same plate must not be touched.
	linkedID := uuid.New()
	linked := seedViolation(t, repo, "MH99ZZ0000", model.ViolationStatusPending)
	require.NoError(t, db.Model(linked).Update("vehicle_id", linkedID).Error)

	vehicleID := uuid.New()
	count, err := repo.LinkVehicle(ctx, "MH99ZZ0000", vehicleID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stored, err := repo.GetByID(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, linkedID, *stored.VehicleID)
}

func TestHasOpenByPlate(t *testing.T) {
	repo := NewViolationRepository(setupTestDB(t))
	ctx := context.Background()

	seedViolation(t, repo, "DL08XX0001", model.ViolationStatusRejected)
	seedViolation(t, repo, "DL08XX0001", model.ViolationStatusPaid)

	open, err := repo.HasOpenByPlate(ctx, "DL08XX0001")
	require.NoError(t, err)
	assert.False(t, open)

	seedViolation(t, repo, "DL08XX0001", model.ViolationStatusApproved)
	open, err = repo.HasOpenByPlate(ctx, "DL08XX0001")
	require.NoError(t, err)
	assert.True(t, open)
}

func TestFindRecentByPlateCamera(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViolationRepository(db)
	ctx := context.Background()

	v := seedViolation(t, repo, "MH12AB1234", model.ViolationStatusPending)

	found, err := repo.FindRecentByPlateCamera(ctx, "MH12AB1234", "CAM-001", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, v.ID, found.ID)

	// Outside the window.
	require.NoError(t, db.Model(v).Update("created_at", time.Now().Add(-10*time.Minute)).Error)
	found, err = repo.FindRecentByPlateCamera(ctx, "MH12AB1234", "CAM-001", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Nil(t, found)

	// Different camera.
	found, err = repo.FindRecentByPlateCamera(ctx, "MH12AB1234", "CAM-002", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetByChallan(t *testing.T) {
	repo := NewViolationRepository(setupTestDB(t))
	ctx := context.Background()

	v := seedViolation(t, repo, "MH12AB1234", model.ViolationStatusPending)

	found, err := repo.GetByChallan(ctx, v.ChallanNumber)
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)

	_, err = repo.GetByChallan(ctx, "HB2501NOPE00")
	assert.True(t, IsNotFound(err))
}
