package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DetectionLog is the raw-ingestion audit trail. One row per inbound webhook
// call, written before validation, updated exactly once with the outcome.
type DetectionLog struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RawPayload           string     `gorm:"type:jsonb;not null" json:"raw_payload"`
	ExtractedPlate       *string    `gorm:"type:varchar(64)" json:"extracted_plate"`
	ExtractionConfidence *float64   `json:"extraction_confidence"`
	SourceIP             string     `gorm:"type:varchar(64)" json:"source_ip"`
	CameraID             *string    `gorm:"type:varchar(64)" json:"camera_id"`
	Processed            bool       `gorm:"not null;default:false" json:"processed"`
	ViolationID          *uuid.UUID `gorm:"type:uuid" json:"violation_id"`
	ErrorMessage         *string    `gorm:"type:text" json:"error_message"`
	CreatedAt            time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (DetectionLog) TableName() string {
	return "detection_logs"
}

func (d *DetectionLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
