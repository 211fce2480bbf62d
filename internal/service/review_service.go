package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"challan-service/internal/model"
	"challan-service/internal/repository"
)

type ReviewService struct {
	violationRepo *repository.ViolationRepository
}

func NewReviewService(violationRepo *repository.ViolationRepository) *ReviewService {
	return &ReviewService{violationRepo: violationRepo}
}

func decisionTarget(action string) (model.ViolationStatus, error) {
	switch action {
	case "approve":
		return model.ViolationStatusApproved, nil
	case "reject":
		return model.ViolationStatusRejected, nil
	default:
		return "", ErrInvalidInput
	}
}

// Decide applies a reviewer's approve/reject to one pending violation. A
// violation that is no longer pending yields ErrAlreadyDecided, which callers
// treat as routine, not as a failure.
func (s *ReviewService) Decide(ctx context.Context, principal model.Principal, id uuid.UUID, action string, notes *string) (*model.Violation, error) {
	if !principal.IsReviewer() {
		return nil, ErrUnauthorized
	}

	target, err := decisionTarget(action)
	if err != nil {
		return nil, err
	}

	reviewer := principal.AdminID
	violation, err := s.violationRepo.Transition(ctx, id, repository.TransitionParams{
		Target:   target,
		Reviewer: &reviewer,
		Notes:    notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrAlreadyDecided
		}
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return violation, nil
}

type BulkDecisionResult struct {
	Succeeded []uuid.UUID `json:"succeeded"`
	Skipped   []uuid.UUID `json:"skipped"`
}

// BulkDecide applies one action across many violations. Partial success is
// the expected outcome: ids that are missing or already decided land in
// Skipped, the rest transition. Only infrastructure errors abort the batch.
func (s *ReviewService) BulkDecide(ctx context.Context, principal model.Principal, ids []uuid.UUID, action string) (*BulkDecisionResult, error) {
	if !principal.IsReviewer() {
		return nil, ErrUnauthorized
	}
	if _, err := decisionTarget(action); err != nil {
		return nil, err
	}

	result := &BulkDecisionResult{
		Succeeded: []uuid.UUID{},
		Skipped:   []uuid.UUID{},
	}
	for _, id := range ids {
		_, err := s.Decide(ctx, principal, id, action, nil)
		switch {
		case err == nil:
			result.Succeeded = append(result.Succeeded, id)
		case errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrNotFound):
			result.Skipped = append(result.Skipped, id)
		default:
			return nil, err
		}
	}
	return result, nil
}
