package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"challan-service/internal/model"
)

type DetectionLogRepository struct {
	db *gorm.DB
}

func NewDetectionLogRepository(db *gorm.DB) *DetectionLogRepository {
	return &DetectionLogRepository{db: db}
}

func (r *DetectionLogRepository) WithTx(tx *gorm.DB) *DetectionLogRepository {
	return &DetectionLogRepository{db: tx}
}

func (r *DetectionLogRepository) Create(ctx context.Context, log *model.DetectionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *DetectionLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DetectionLog, error) {
	var log model.DetectionLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// MarkProcessed finalizes the audit row with either a violation link or an
// error message. Called exactly once per log.
func (r *DetectionLogRepository) MarkProcessed(ctx context.Context, id uuid.UUID, violationID *uuid.UUID, errorMessage *string) error {
	return r.db.WithContext(ctx).Model(&model.DetectionLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":     true,
			"violation_id":  violationID,
			"error_message": errorMessage,
		}).Error
}

// ListSince returns audit rows newer than the cutoff, oldest first.
func (r *DetectionLogRepository) ListSince(ctx context.Context, since time.Time) ([]model.DetectionLog, error) {
	var logs []model.DetectionLog
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
