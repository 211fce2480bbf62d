package service

import (
	"context"
	"fmt"

	"challan-service/internal/auth"
	"challan-service/internal/model"
	"challan-service/internal/repository"
	"challan-service/internal/utils"
)

// OwnerService owns vehicle creation and claiming, and reconciles violations
// logged before the owner existed.
type OwnerService struct {
	vehicleRepo   *repository.VehicleRepository
	violationRepo *repository.ViolationRepository
	issuer        *auth.Issuer
}

func NewOwnerService(
	vehicleRepo *repository.VehicleRepository,
	violationRepo *repository.ViolationRepository,
	issuer *auth.Issuer,
) *OwnerService {
	return &OwnerService{
		vehicleRepo:   vehicleRepo,
		violationRepo: violationRepo,
		issuer:        issuer,
	}
}

type RegisterInput struct {
	VehicleNumber string
	OwnerName     string
	OwnerDOB      string
	PhoneNumber   *string
	Email         *string
	Address       *string
}

type RegisterResult struct {
	Vehicle          *model.Vehicle `json:"vehicle"`
	LinkedViolations int64          `json:"linked_violations"`
}

// Register creates (or claims) the vehicle for a plate and links any orphan
// violations already logged against it. The returned count is how many
// violations became visible in the owner's dashboard.
func (s *OwnerService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if input.VehicleNumber == "" || input.OwnerName == "" || input.OwnerDOB == "" {
		return nil, fmt.Errorf("%w: vehicle number, owner name and date of birth are required", ErrInvalidInput)
	}

	plate := utils.NormalizePlate(input.VehicleNumber)

	dobHash, err := auth.HashSecret(input.OwnerDOB)
	if err != nil {
		return nil, fmt.Errorf("hash owner dob: %w", err)
	}

	existing, err := s.vehicleRepo.GetByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	var vehicle *model.Vehicle
	switch {
	case existing == nil:
		vehicle = &model.Vehicle{
			VehicleNumber: plate,
			OwnerName:     input.OwnerName,
			OwnerDOBHash:  dobHash,
			PhoneNumber:   input.PhoneNumber,
			Email:         input.Email,
			Address:       input.Address,
		}
		if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
			return nil, fmt.Errorf("create vehicle: %w", err)
		}
	case existing.IsPlaceholder():
		// A login before registration left a placeholder; the real owner
		// claims it in place so the vehicle id stays stable.
		existing.OwnerName = input.OwnerName
		existing.OwnerDOBHash = dobHash
		existing.PhoneNumber = input.PhoneNumber
		existing.Email = input.Email
		existing.Address = input.Address
		if err := s.vehicleRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("claim vehicle: %w", err)
		}
		vehicle = existing
	default:
		return nil, ErrAlreadyRegistered
	}

	linked, err := s.violationRepo.LinkVehicle(ctx, plate, vehicle.ID)
	if err != nil {
		return nil, fmt.Errorf("link violations: %w", err)
	}

	return &RegisterResult{Vehicle: vehicle, LinkedViolations: linked}, nil
}

type LoginResult struct {
	Token            string `json:"token"`
	VehicleNumber    string `json:"vehicle_number"`
	OwnerName        string `json:"owner_name"`
	HasOpenViolation bool   `json:"has_violations"`
}

// Login authenticates an owner by plate and date of birth. An unknown plate
// is treated as a first-time registration: the vehicle is created from the
// supplied DOB and orphan violations are linked, matching how the system has
// always behaved for first-time users.
func (s *OwnerService) Login(ctx context.Context, vehicleNumber, dob string) (*LoginResult, error) {
	if vehicleNumber == "" || dob == "" {
		return nil, fmt.Errorf("%w: vehicle number and date of birth are required", ErrInvalidInput)
	}

	plate := utils.NormalizePlate(vehicleNumber)

	vehicle, err := s.vehicleRepo.GetByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	if vehicle == nil {
		dobHash, err := auth.HashSecret(dob)
		if err != nil {
			return nil, fmt.Errorf("hash owner dob: %w", err)
		}
		vehicle = &model.Vehicle{
			VehicleNumber: plate,
			OwnerName:     model.PlaceholderOwnerName,
			OwnerDOBHash:  dobHash,
		}
		if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
			return nil, fmt.Errorf("create vehicle: %w", err)
		}
		if _, err := s.violationRepo.LinkVehicle(ctx, plate, vehicle.ID); err != nil {
			return nil, fmt.Errorf("link violations: %w", err)
		}
	} else if err := auth.VerifySecret(dob, vehicle.OwnerDOBHash); err != nil {
		return nil, ErrAuthFailed
	}

	hasOpen, err := s.violationRepo.HasOpenByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.IssueOwnerToken(plate)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:            token,
		VehicleNumber:    plate,
		OwnerName:        vehicle.OwnerName,
		HasOpenViolation: hasOpen,
	}, nil
}
