package service

import (
	"context"

	"challan-service/internal/model"
	"challan-service/internal/repository"
)

const reviewListLimit = 100

// ViolationService serves read-side queries for the owner dashboard and the
// reviewer console. All writes go through DetectionService, ReviewService and
// PaymentService.
type ViolationService struct {
	violationRepo *repository.ViolationRepository
}

func NewViolationService(violationRepo *repository.ViolationRepository) *ViolationService {
	return &ViolationService{violationRepo: violationRepo}
}

type OwnerStats struct {
	TotalFines    float64 `json:"total_fines"`
	PendingAmount float64 `json:"pending_amount"`
	PaidAmount    float64 `json:"paid_amount"`
}

type OwnerViolationsResult struct {
	Violations []model.Violation `json:"violations"`
	Stats      OwnerStats        `json:"stats"`
}

// ListForOwner returns the authenticated owner's violations with fine totals.
func (s *ViolationService) ListForOwner(ctx context.Context, principal model.Principal, status *model.ViolationStatus) (*OwnerViolationsResult, error) {
	if !principal.IsOwner() {
		return nil, ErrUnauthorized
	}

	violations, err := s.violationRepo.ListByPlate(ctx, principal.VehicleNumber, status)
	if err != nil {
		return nil, err
	}

	result := &OwnerViolationsResult{Violations: violations}
	for _, v := range violations {
		result.Stats.TotalFines += v.FineAmount
		switch v.Status {
		case model.ViolationStatusPending, model.ViolationStatusApproved:
			result.Stats.PendingAmount += v.FineAmount
		case model.ViolationStatusPaid:
			result.Stats.PaidAmount += v.FineAmount
		}
	}
	return result, nil
}

type ReviewStats struct {
	TotalViolations int     `json:"total_violations"`
	PendingApproval int     `json:"pending_approval"`
	Approved        int     `json:"approved"`
	TotalRevenue    float64 `json:"total_revenue"`
}

type ReviewListResult struct {
	Violations []model.Violation `json:"violations"`
	Stats      ReviewStats       `json:"stats"`
}

// ListForReview returns recent violations across all vehicles plus the
// console's headline stats.
func (s *ViolationService) ListForReview(ctx context.Context, principal model.Principal) (*ReviewListResult, error) {
	if !principal.IsReviewer() {
		return nil, ErrUnauthorized
	}

	violations, err := s.violationRepo.List(ctx, reviewListLimit)
	if err != nil {
		return nil, err
	}

	result := &ReviewListResult{Violations: violations}
	result.Stats.TotalViolations = len(violations)
	for _, v := range violations {
		switch v.Status {
		case model.ViolationStatusPending:
			result.Stats.PendingApproval++
		case model.ViolationStatusApproved:
			result.Stats.Approved++
		case model.ViolationStatusPaid:
			result.Stats.TotalRevenue += v.FineAmount
		}
	}
	return result, nil
}
