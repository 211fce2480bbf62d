package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"challan-service/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkFailed records a provider-side failure so the row is never mistaken for
// a live pending payment.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         model.PaymentStatusFailed,
			"failure_reason": reason,
		}).Error
}

type CompletePaymentParams struct {
	GatewayPaymentID string
	GatewaySignature string
	ReceiptNumber    string
	PaidAt           time.Time
}

// Complete moves a payment from pending to completed with a compare-and-swap.
// Returns false when the row was not in pending, which callers treat as a
// duplicate callback.
func (r *PaymentRepository) Complete(ctx context.Context, id uuid.UUID, params CompletePaymentParams) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":             model.PaymentStatusCompleted,
			"gateway_payment_id": params.GatewayPaymentID,
			"gateway_signature":  params.GatewaySignature,
			"receipt_number":     params.ReceiptNumber,
			"paid_at":            params.PaidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountCompletedByViolation reports how many completed payments exist for a
// violation. The invariant is at most one.
func (r *PaymentRepository) CountCompletedByViolation(ctx context.Context, violationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("violation_id = ? AND status = ?", violationID, model.PaymentStatusCompleted).
		Count(&count).Error
	return count, err
}
