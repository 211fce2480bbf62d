package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"challan-service/internal/model"
)

// ErrInvalidTransition is returned when a requested status change is not
// allowed by the violation state machine, including when a concurrent
// transition won the race for the same row.
var ErrInvalidTransition = errors.New("invalid status transition")

type ViolationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) *ViolationRepository {
	return &ViolationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ViolationRepository) WithTx(tx *gorm.DB) *ViolationRepository {
	return &ViolationRepository{db: tx}
}

// Create inserts a new violation. Status is forced to pending regardless of
// what the caller set.
func (r *ViolationRepository) Create(ctx context.Context, violation *model.Violation) error {
	violation.Status = model.ViolationStatusPending
	return r.db.WithContext(ctx).Create(violation).Error
}

func (r *ViolationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Violation, error) {
	var violation model.Violation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&violation).Error
	if err != nil {
		return nil, err
	}
	return &violation, nil
}

func (r *ViolationRepository) GetByChallan(ctx context.Context, challanNumber string) (*model.Violation, error) {
	var violation model.Violation
	err := r.db.WithContext(ctx).Where("challan_number = ?", challanNumber).First(&violation).Error
	if err != nil {
		return nil, err
	}
	return &violation, nil
}

// ListByPlate returns an owner's violations, newest detection first.
func (r *ViolationRepository) ListByPlate(ctx context.Context, plate string, status *model.ViolationStatus) ([]model.Violation, error) {
	var violations []model.Violation
	query := r.db.WithContext(ctx).Where("vehicle_number = ?", plate)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("detection_timestamp DESC").Find(&violations).Error
	return violations, err
}

// List returns the most recent violations across all vehicles, for review.
func (r *ViolationRepository) List(ctx context.Context, limit int) ([]model.Violation, error) {
	var violations []model.Violation
	err := r.db.WithContext(ctx).
		Order("detection_timestamp DESC").
		Limit(limit).
		Find(&violations).Error
	return violations, err
}

// HasOpenByPlate reports whether the plate has violations still awaiting
// review or payment.
func (r *ViolationRepository) HasOpenByPlate(ctx context.Context, plate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Violation{}).
		Where("vehicle_number = ? AND status IN ?", plate,
			[]model.ViolationStatus{model.ViolationStatusPending, model.ViolationStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

// FindRecentByPlateCamera looks for a violation for the same plate and camera
// created after since. Used to collapse repeat webhook deliveries of one
// physical event.
func (r *ViolationRepository) FindRecentByPlateCamera(ctx context.Context, plate, cameraID string, since time.Time) (*model.Violation, error) {
	var violation model.Violation
	err := r.db.WithContext(ctx).
		Where("vehicle_number = ? AND camera_id = ? AND created_at >= ?", plate, cameraID, since).
		Order("created_at DESC").
		First(&violation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &violation, nil
}

// LinkVehicle attaches every unlinked violation for the plate to the vehicle
// and returns the number of rows touched.
func (r *ViolationRepository) LinkVehicle(ctx context.Context, plate string, vehicleID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Violation{}).
		Where("vehicle_number = ? AND vehicle_id IS NULL", plate).
		Update("vehicle_id", vehicleID)
	return res.RowsAffected, res.Error
}

type TransitionParams struct {
	Target    model.ViolationStatus
	Reviewer  *string
	Notes     *string
	PaymentID *uuid.UUID
}

// Transition moves a violation to params.Target, enforcing the state machine.
// The update is a compare-and-swap on the current status, so two concurrent
// decisions on the same row cannot both succeed. Reviewer fields are stamped
// only on the pending edge; PaymentID only on approved -> paid.
func (r *ViolationRepository) Transition(ctx context.Context, id uuid.UUID, params TransitionParams) (*model.Violation, error) {
	if !params.Target.IsValid() {
		return nil, ErrInvalidTransition
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(params.Target) {
		return nil, ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":     params.Target,
		"updated_at": time.Now(),
	}
	if current.Status == model.ViolationStatusPending {
		now := time.Now()
		updates["reviewed_by"] = params.Reviewer
		updates["reviewed_at"] = &now
		updates["review_notes"] = params.Notes
	}
	if params.Target == model.ViolationStatusPaid && params.PaymentID != nil {
		updates["payment_id"] = params.PaymentID
	}

	res := r.db.WithContext(ctx).Model(&model.Violation{}).
		Where("id = ? AND status = ?", id, current.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Someone else transitioned the row between the read and the update.
		return nil, ErrInvalidTransition
	}

	return r.GetByID(ctx, id)
}
