package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ViolationStatus string

const (
	ViolationStatusPending  ViolationStatus = "pending"
	ViolationStatusApproved ViolationStatus = "approved"
	ViolationStatusRejected ViolationStatus = "rejected"
	ViolationStatusPaid     ViolationStatus = "paid"
)

// violationTransitions is the full state machine. rejected and paid are
// terminal; paid is reachable only from approved.
var violationTransitions = map[ViolationStatus][]ViolationStatus{
	ViolationStatusPending:  {ViolationStatusApproved, ViolationStatusRejected},
	ViolationStatusApproved: {ViolationStatusPaid},
}

// CanTransitionTo reports whether the state machine allows moving from s to target.
func (s ViolationStatus) CanTransitionTo(target ViolationStatus) bool {
	for _, next := range violationTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s ViolationStatus) IsValid() bool {
	switch s {
	case ViolationStatusPending, ViolationStatusApproved, ViolationStatusRejected, ViolationStatusPaid:
		return true
	}
	return false
}

type Violation struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID          *uuid.UUID      `gorm:"type:uuid;index" json:"vehicle_id"`
	VehicleNumber      string          `gorm:"type:varchar(32);not null;index" json:"vehicle_number"`
	DetectionTimestamp time.Time       `gorm:"not null" json:"detection_timestamp"`
	BeamIntensity      int             `gorm:"not null" json:"beam_intensity"`
	AIConfidence       float64         `gorm:"not null" json:"ai_confidence"`
	Latitude           *float64        `json:"latitude"`
	Longitude          *float64        `json:"longitude"`
	LocationAddress    string          `gorm:"type:text" json:"location_address"`
	EvidenceImageURL   *string         `gorm:"type:text" json:"evidence_image_url"`
	CameraID           string          `gorm:"type:varchar(64)" json:"camera_id"`
	DeviceID           *string         `gorm:"type:varchar(64)" json:"device_id"`
	FineAmount         float64         `gorm:"not null" json:"fine_amount"`
	ChallanNumber      string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"challan_number"`
	Status             ViolationStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ReviewedBy         *string         `gorm:"type:varchar(64)" json:"reviewed_by"`
	ReviewedAt         *time.Time      `json:"reviewed_at"`
	ReviewNotes        *string         `gorm:"type:text" json:"review_notes"`
	PaymentID          *uuid.UUID      `gorm:"type:uuid" json:"payment_id"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Violation) TableName() string {
	return "violations"
}

func (v *Violation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
