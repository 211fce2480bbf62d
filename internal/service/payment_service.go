package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"challan-service/internal/client"
	"challan-service/internal/model"
	"challan-service/internal/repository"
	"challan-service/internal/utils"
)

const paymentCurrency = "INR"

// PaymentGateway is the narrow surface of the external payment provider.
// Signature verification is a pure function (client.VerifySignature) and
// deliberately not part of the interface.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, order client.OrderRequest) (string, error)
}

// PaymentService is the only component allowed to move a violation to paid.
type PaymentService struct {
	db            *gorm.DB
	paymentRepo   *repository.PaymentRepository
	violationRepo *repository.ViolationRepository
	gateway       PaymentGateway
	gatewaySecret string
}

func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	violationRepo *repository.ViolationRepository,
	gateway PaymentGateway,
	gatewaySecret string,
) *PaymentService {
	return &PaymentService{
		db:            db,
		paymentRepo:   paymentRepo,
		violationRepo: violationRepo,
		gateway:       gateway,
		gatewaySecret: gatewaySecret,
	}
}

type CreateIntentInput struct {
	ViolationID   uuid.UUID
	PaymentMethod string
}

type CreateIntentResult struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	TransactionID  string    `json:"transaction_id"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	ChallanNumber  string    `json:"challan_number"`
	VehicleNumber  string    `json:"vehicle_number"`
}

// CreateIntent opens a settlement attempt against an approved violation. The
// payment row is written before the provider call; a provider failure is
// recorded on the row so it can never be mistaken for a live pending payment.
// The provider call is not retried here — a duplicate order-creation call
// would mint a second chargeable order.
func (s *PaymentService) CreateIntent(ctx context.Context, principal model.Principal, input CreateIntentInput) (*CreateIntentResult, error) {
	if !principal.IsOwner() {
		return nil, ErrUnauthorized
	}
	if input.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method required", ErrInvalidInput)
	}

	violation, err := s.violationRepo.GetByID(ctx, input.ViolationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch violation.Status {
	case model.ViolationStatusPaid:
		return nil, ErrAlreadyPaid
	case model.ViolationStatusApproved:
		// payable
	default:
		return nil, ErrNotApproved
	}

	transactionID := utils.GenerateTransactionID()
	payment := &model.Payment{
		ViolationID:   violation.ID,
		VehicleNumber: violation.VehicleNumber,
		Amount:        violation.FineAmount,
		Currency:      paymentCurrency,
		PaymentMethod: input.PaymentMethod,
		TransactionID: transactionID,
		// Provisional until the provider assigns the real order id. Keeps
		// the unique constraint satisfied and the row traceable on failure.
		GatewayOrderID: "local_" + transactionID,
		Status:         model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	orderID, err := s.gateway.CreateOrder(ctx, client.OrderRequest{
		Amount:   int64(math.Round(violation.FineAmount * 100)),
		Currency: paymentCurrency,
		Receipt:  transactionID,
		Notes: map[string]string{
			"violation_id":   violation.ID.String(),
			"challan_number": violation.ChallanNumber,
			"vehicle_number": violation.VehicleNumber,
		},
	})
	if err != nil {
		if markErr := s.paymentRepo.MarkFailed(ctx, payment.ID, err.Error()); markErr != nil {
			return nil, fmt.Errorf("record provider failure: %w", markErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if err := s.db.WithContext(ctx).Model(payment).
		Update("gateway_order_id", orderID).Error; err != nil {
		return nil, fmt.Errorf("store gateway order id: %w", err)
	}

	return &CreateIntentResult{
		PaymentID:      payment.ID,
		GatewayOrderID: orderID,
		TransactionID:  transactionID,
		Amount:         payment.Amount,
		Currency:       payment.Currency,
		ChallanNumber:  violation.ChallanNumber,
		VehicleNumber:  violation.VehicleNumber,
	}, nil
}

type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

type VerifyResult struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Amount        float64   `json:"amount"`
	PaidAt        time.Time `json:"paid_at"`
	ChallanNumber string    `json:"challan_number"`
	VehicleNumber string    `json:"vehicle_number"`
}

var errDuplicateCallback = errors.New("duplicate completion callback")

// Verify settles a provider completion callback. The signature check comes
// first and an invalid signature leaves every row untouched. Completion of
// the payment and the approved -> paid transition of the violation commit in
// one transaction, so the pair can never diverge. Re-verification of an
// already-completed payment is idempotent and returns the stored receipt.
func (s *PaymentService) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.GatewaySignature == "" {
		return nil, fmt.Errorf("%w: missing payment verification data", ErrInvalidInput)
	}

	if !client.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature, s.gatewaySecret) {
		return nil, ErrSignatureInvalid
	}

	payment, err := s.paymentRepo.GetByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if payment.Status == model.PaymentStatusCompleted {
		return s.completedResult(ctx, payment)
	}
	if payment.Status != model.PaymentStatusPending {
		return nil, ErrConflict
	}

	paidAt := time.Now()
	receipt := utils.ReceiptNumber(payment.TransactionID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completed, err := s.paymentRepo.WithTx(tx).Complete(ctx, payment.ID, repository.CompletePaymentParams{
			GatewayPaymentID: input.GatewayPaymentID,
			GatewaySignature: input.GatewaySignature,
			ReceiptNumber:    receipt,
			PaidAt:           paidAt,
		})
		if err != nil {
			return err
		}
		if !completed {
			return errDuplicateCallback
		}

		if _, err := s.violationRepo.WithTx(tx).Transition(ctx, payment.ViolationID, repository.TransitionParams{
			Target:    model.ViolationStatusPaid,
			PaymentID: &payment.ID,
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateCallback) {
			// Lost a race with a concurrent verify; hand back its result.
			current, readErr := s.paymentRepo.GetByID(ctx, payment.ID)
			if readErr != nil {
				return nil, readErr
			}
			if current.Status == model.PaymentStatusCompleted {
				return s.completedResult(ctx, current)
			}
			return nil, ErrConflict
		}
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrConflict
		}
		return nil, err
	}

	violation, err := s.violationRepo.GetByID(ctx, payment.ViolationID)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		ReceiptNumber: receipt,
		Amount:        payment.Amount,
		PaidAt:        paidAt,
		ChallanNumber: violation.ChallanNumber,
		VehicleNumber: violation.VehicleNumber,
	}, nil
}

func (s *PaymentService) completedResult(ctx context.Context, payment *model.Payment) (*VerifyResult, error) {
	violation, err := s.violationRepo.GetByID(ctx, payment.ViolationID)
	if err != nil {
		return nil, err
	}
	result := &VerifyResult{
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		ChallanNumber: violation.ChallanNumber,
		VehicleNumber: violation.VehicleNumber,
	}
	if payment.ReceiptNumber != nil {
		result.ReceiptNumber = *payment.ReceiptNumber
	}
	if payment.PaidAt != nil {
		result.PaidAt = *payment.PaidAt
	}
	return result, nil
}
