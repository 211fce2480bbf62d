package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"challan-service/internal/config"
	"challan-service/internal/model"
	"challan-service/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.Vehicle{}, &model.Violation{}, &model.DetectionLog{}, &model.Payment{})
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Webhook: config.WebhookConfig{
			APIKey:         "test-webhook-key",
			IntensityFloor: 50,
			DedupWindow:    time.Minute,
		},
		Fines: testFineConfig(),
		Razorpay: config.RazorpayConfig{
			KeySecret: "test-gateway-secret",
		},
	}
}

func seedPendingViolation(t *testing.T, db *gorm.DB, plate string) *model.Violation {
	t.Helper()

	repo := repository.NewViolationRepository(db)
	violation := &model.Violation{
		VehicleNumber:      plate,
		DetectionTimestamp: time.Now(),
		BeamIntensity:      85,
		AIConfidence:       0.95,
		LocationAddress:    "Marine Drive, Mumbai",
		CameraID:           "CAM-001",
		FineAmount:         2000,
		ChallanNumber:      "HB2501" + randomChallanSuffix(),
	}
	require.NoError(t, repo.Create(context.Background(), violation))
	return violation
}

var challanSuffix int

func randomChallanSuffix() string {
	challanSuffix++
	return time.Now().Format("040506") + string(rune('A'+challanSuffix%26))
}

func forceStatus(t *testing.T, db *gorm.DB, v *model.Violation, status model.ViolationStatus) {
	t.Helper()
	require.NoError(t, db.Model(v).Update("status", status).Error)
	v.Status = status
}
