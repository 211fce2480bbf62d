package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type Payment struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ViolationID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"violation_id"`
	VehicleNumber    string        `gorm:"type:varchar(32);not null" json:"vehicle_number"`
	Amount           float64       `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(8);not null" json:"currency"`
	PaymentMethod    string        `gorm:"type:varchar(32);not null" json:"payment_method"`
	TransactionID    string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	GatewayOrderID   string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"gateway_order_id"`
	GatewayPaymentID *string       `gorm:"type:varchar(64)" json:"gateway_payment_id"`
	GatewaySignature *string       `gorm:"type:varchar(128)" json:"-"`
	Status           PaymentStatus `gorm:"type:varchar(16);not null" json:"status"`
	ReceiptNumber    *string       `gorm:"type:varchar(64)" json:"receipt_number"`
	FailureReason    *string       `gorm:"type:text" json:"failure_reason"`
	PaidAt           *time.Time    `json:"paid_at"`
	CreatedAt        time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
