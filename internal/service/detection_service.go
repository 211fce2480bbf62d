package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"

	"challan-service/internal/config"
	"challan-service/internal/model"
	"challan-service/internal/repository"
	"challan-service/internal/utils"
)

const unknownCameraID = "UNKNOWN"

// DetectionService is the trust boundary between the edge camera pipeline and
// the system of record. Every inbound call leaves a detection_logs row, even
// when validation fails.
type DetectionService struct {
	webhook       config.WebhookConfig
	fines         config.FineConfig
	logRepo       *repository.DetectionLogRepository
	violationRepo *repository.ViolationRepository
	vehicleRepo   *repository.VehicleRepository
}

func NewDetectionService(
	cfg *config.Config,
	logRepo *repository.DetectionLogRepository,
	violationRepo *repository.ViolationRepository,
	vehicleRepo *repository.VehicleRepository,
) *DetectionService {
	return &DetectionService{
		webhook:       cfg.Webhook,
		fines:         cfg.Fines,
		logRepo:       logRepo,
		violationRepo: violationRepo,
		vehicleRepo:   vehicleRepo,
	}
}

// IngestInput carries one webhook payload plus request metadata.
type IngestInput struct {
	RawPayload           string
	VehicleNumber        string
	BeamIntensity        int
	ExtractionConfidence *float64
	ImageURL             *string
	CameraID             string
	DeviceID             *string
	Latitude             *float64
	Longitude            *float64
	Address              string
	Timestamp            *time.Time
	SourceIP             string
}

type IngestResult struct {
	ViolationID   uuid.UUID
	ChallanNumber string
	VehicleNumber string
	FineAmount    float64
	Status        model.ViolationStatus
	OwnerFound    bool
	OwnerName     string
	Duplicate     bool
}

// Ingest validates one detection webhook call and records a pending violation.
// Order matters: the API-key check runs before any persistence, the audit row
// is written before field validation, and the audit row is always finalized
// with either a violation link or an error message.
func (s *DetectionService) Ingest(ctx context.Context, apiKey string, input IngestInput) (*IngestResult, error) {
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.webhook.APIKey)) != 1 {
		return nil, ErrUnauthorized
	}

	log := &model.DetectionLog{
		RawPayload:           input.RawPayload,
		ExtractionConfidence: input.ExtractionConfidence,
		SourceIP:             input.SourceIP,
	}
	if input.VehicleNumber != "" {
		plate := input.VehicleNumber
		log.ExtractedPlate = &plate
	}
	if input.CameraID != "" {
		camera := input.CameraID
		log.CameraID = &camera
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("write detection log: %w", err)
	}

	if input.VehicleNumber == "" {
		s.failLog(ctx, log.ID, "Missing vehicle_number")
		return nil, fmt.Errorf("%w: missing vehicle identifier", ErrInvalidInput)
	}
	if input.BeamIntensity <= 0 {
		s.failLog(ctx, log.ID, "Missing beam_intensity")
		return nil, fmt.Errorf("%w: missing beam intensity", ErrInvalidInput)
	}
	if input.BeamIntensity < s.webhook.IntensityFloor {
		s.failLog(ctx, log.ID, "Beam intensity too low")
		return nil, ErrLowIntensity
	}

	plate := utils.NormalizePlate(input.VehicleNumber)

	cameraID := input.CameraID
	if cameraID == "" {
		cameraID = unknownCameraID
	}

	// Repeat deliveries of the same physical event (same plate, same camera,
	// inside the dedup window) collapse onto the original violation.
	since := time.Now().Add(-s.webhook.DedupWindow)
	if existing, err := s.violationRepo.FindRecentByPlateCamera(ctx, plate, cameraID, since); err != nil {
		s.failLog(ctx, log.ID, err.Error())
		return nil, fmt.Errorf("dedup lookup: %w", err)
	} else if existing != nil {
		if err := s.logRepo.MarkProcessed(ctx, log.ID, &existing.ID, nil); err != nil {
			return nil, fmt.Errorf("link detection log: %w", err)
		}
		return &IngestResult{
			ViolationID:   existing.ID,
			ChallanNumber: existing.ChallanNumber,
			VehicleNumber: existing.VehicleNumber,
			FineAmount:    existing.FineAmount,
			Status:        existing.Status,
			Duplicate:     true,
		}, nil
	}

	// A violation is creatable even when the owner never registered; the
	// vehicle link stays null and gets backfilled at registration.
	vehicle, err := s.vehicleRepo.GetByPlate(ctx, plate)
	if err != nil {
		s.failLog(ctx, log.ID, err.Error())
		return nil, fmt.Errorf("vehicle lookup: %w", err)
	}

	detectedAt := time.Now()
	if input.Timestamp != nil {
		detectedAt = *input.Timestamp
	}
	confidence := 0.9
	if input.ExtractionConfidence != nil {
		confidence = *input.ExtractionConfidence
	}
	address := input.Address
	if address == "" {
		address = "Detection Zone"
	}

	violation := &model.Violation{
		VehicleNumber:      plate,
		DetectionTimestamp: detectedAt,
		BeamIntensity:      input.BeamIntensity,
		AIConfidence:       confidence,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		LocationAddress:    address,
		EvidenceImageURL:   input.ImageURL,
		CameraID:           cameraID,
		DeviceID:           input.DeviceID,
		FineAmount:         ComputeFine(s.fines, input.BeamIntensity),
		ChallanNumber:      utils.GenerateChallanNumber(),
	}
	if vehicle != nil {
		violation.VehicleID = &vehicle.ID
	}

	if err := s.violationRepo.Create(ctx, violation); err != nil {
		s.failLog(ctx, log.ID, err.Error())
		return nil, fmt.Errorf("create violation: %w", err)
	}

	if err := s.logRepo.MarkProcessed(ctx, log.ID, &violation.ID, nil); err != nil {
		return nil, fmt.Errorf("link detection log: %w", err)
	}

	result := &IngestResult{
		ViolationID:   violation.ID,
		ChallanNumber: violation.ChallanNumber,
		VehicleNumber: plate,
		FineAmount:    violation.FineAmount,
		Status:        violation.Status,
	}
	if vehicle != nil {
		result.OwnerFound = true
		result.OwnerName = vehicle.OwnerName
	}
	return result, nil
}

// failLog finalizes the audit row with an error outcome. Best effort: the
// original error is what the caller needs to see.
func (s *DetectionService) failLog(ctx context.Context, logID uuid.UUID, message string) {
	_ = s.logRepo.MarkProcessed(ctx, logID, nil, &message)
}
