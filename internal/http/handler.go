package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"challan-service/internal/http/middleware"
	"challan-service/internal/model"
	"challan-service/internal/service"
)

type Handler struct {
	detectionService *service.DetectionService
	violationService *service.ViolationService
	reviewService    *service.ReviewService
	paymentService   *service.PaymentService
	ownerService     *service.OwnerService
	authService      *service.AuthService
	log              zerolog.Logger
}

func NewHandler(
	detectionService *service.DetectionService,
	violationService *service.ViolationService,
	reviewService *service.ReviewService,
	paymentService *service.PaymentService,
	ownerService *service.OwnerService,
	authService *service.AuthService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		detectionService: detectionService,
		violationService: violationService,
		reviewService:    reviewService,
		paymentService:   paymentService,
		ownerService:     ownerService,
		authService:      authService,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Sensor webhook and gateway callback authenticate by key/signature,
	// not by session token.
	r.POST("/webhook/detection", h.ingestDetection)
	r.POST("/payments/verify", h.verifyPayment)

	r.POST("/auth/login", h.login)
	r.POST("/auth/admin/login", h.adminLogin)
	r.POST("/vehicles", h.registerVehicle)

	protected := r.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/violations", h.listMyViolations)
		protected.POST("/payments", h.createPayment)
	}

	admin := protected.Group("/admin")
	{
		admin.GET("/violations", h.listViolationsForReview)
		admin.PUT("/violations", h.decideViolation)
		admin.POST("/violations/bulk", h.bulkDecideViolations)
	}
}

type detectionWebhookRequest struct {
	VehicleNumber        string   `json:"vehicle_number"`
	BeamIntensity        float64  `json:"beam_intensity"`
	ExtractionConfidence *float64 `json:"extraction_confidence"`
	ImageURL             *string  `json:"image_url"`
	CameraID             string   `json:"camera_id"`
	DeviceID             *string  `json:"device_id"`
	Location             *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Address   string   `json:"address"`
	} `json:"location"`
	Timestamp *time.Time `json:"timestamp"`
}

func (h *Handler) ingestDetection(c *gin.Context) {
	apiKey := c.GetHeader("x-api-key")
	if apiKey == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			apiKey = strings.TrimPrefix(header, "Bearer ")
		}
	}

	// The raw body is kept verbatim for the audit trail.
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("unreadable body", "invalid_input"))
		return
	}

	var req detectionWebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid JSON payload", "invalid_input"))
		return
	}

	input := service.IngestInput{
		RawPayload:           string(raw),
		VehicleNumber:        req.VehicleNumber,
		BeamIntensity:        int(req.BeamIntensity),
		ExtractionConfidence: req.ExtractionConfidence,
		ImageURL:             req.ImageURL,
		CameraID:             req.CameraID,
		DeviceID:             req.DeviceID,
		Timestamp:            req.Timestamp,
		SourceIP:             c.ClientIP(),
	}
	if req.Location != nil {
		input.Latitude = req.Location.Latitude
		input.Longitude = req.Location.Longitude
		input.Address = req.Location.Address
	}

	result, err := h.detectionService.Ingest(c.Request.Context(), apiKey, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"violation_id":   result.ViolationID,
		"challan_number": result.ChallanNumber,
		"vehicle_number": result.VehicleNumber,
		"fine_amount":    result.FineAmount,
		"status":         result.Status,
		"owner_found":    result.OwnerFound,
		"duplicate":      result.Duplicate,
	}))
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		VehicleNumber string `json:"vehicle_number" binding:"required"`
		DOB           string `json:"dob" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
		return
	}

	result, err := h.ownerService.Login(c.Request.Context(), req.VehicleNumber, req.DOB)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) adminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
		return
	}

	result, err := h.authService.ReviewerLogin(req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) registerVehicle(c *gin.Context) {
	var req struct {
		VehicleNumber string  `json:"vehicle_number" binding:"required"`
		OwnerName     string  `json:"owner_name" binding:"required"`
		OwnerDOB      string  `json:"owner_dob" binding:"required"`
		PhoneNumber   *string `json:"phone_number"`
		Email         *string `json:"email"`
		Address       *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
		return
	}

	result, err := h.ownerService.Register(c.Request.Context(), service.RegisterInput{
		VehicleNumber: req.VehicleNumber,
		OwnerName:     req.OwnerName,
		OwnerDOB:      req.OwnerDOB,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) listMyViolations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal", "unauthorized"))
		return
	}

	var status *model.ViolationStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := model.ViolationStatus(strings.ToLower(raw))
		if !s.IsValid() {
			c.JSON(http.StatusBadRequest, errorResponse("invalid status filter", "invalid_input"))
			return
		}
		status = &s
	}

	result, err := h.violationService.ListForOwner(c.Request.Context(), principal, status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) listViolationsForReview(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal", "unauthorized"))
		return
	}

	result, err := h.violationService.ListForReview(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) decideViolation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal", "unauthorized"))
		return
	}

	var req struct {
		ViolationID string  `json:"violation_id" binding:"required"`
		Action      string  `json:"action" binding:"required"`
		Notes       *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
		return
	}

	id, err := uuid.Parse(req.ViolationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid violation id", "invalid_input"))
		return
	}

	violation, err := h.reviewService.Decide(c.Request.Context(), principal, id, req.Action, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"violation_id":   violation.ID,
		"challan_number": violation.ChallanNumber,
		"status":         violation.Status,
	}))
}

func (h *Handler) bulkDecideViolations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal", "unauthorized"))
		return
	}

	var req struct {
		ViolationIDs []string `json:"violation_ids" binding:"required"`
		Action       string   `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ViolationIDs))
	for _, raw := range req.ViolationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid violation id: "+raw, "invalid_input"))
			return
		}
		ids = append(ids, id)
	}

	result, err := h.reviewService.BulkDecide(c.Request.Context(), principal, ids, req.Action)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) createPayment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal", "unauthorized"))
		return
	}

	var req struct {
		ViolationID   string `json:"violation_id" binding:"required"`
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
		return
	}

	id, err := uuid.Parse(req.ViolationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid violation id", "invalid_input"))
		return
	}

	result, err := h.paymentService.CreateIntent(c.Request.Context(), principal, service.CreateIntentInput{
		ViolationID:   id,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) verifyPayment(c *gin.Context) {
	var req struct {
		GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
		GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		GatewaySignature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("missing payment verification data", "invalid_input"))
		return
	}

	result, err := h.paymentService.Verify(c.Request.Context(), service.VerifyInput{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error(), "unauthorized"))
	case errors.Is(err, service.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, errorResponse("invalid credentials", "auth_failed"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error(), "not_found"))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "invalid_input"))
	case errors.Is(err, service.ErrLowIntensity):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "low_intensity"))
	case errors.Is(err, service.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, errorResponse(err.Error(), "already_processed"))
	case errors.Is(err, service.ErrAlreadyPaid):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "already_paid"))
	case errors.Is(err, service.ErrNotApproved):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "not_approved"))
	case errors.Is(err, service.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, errorResponse(err.Error(), "already_registered"))
	case errors.Is(err, service.ErrSignatureInvalid):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), "signature_invalid"))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error(), "conflict"))
	case errors.Is(err, service.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, errorResponse(err.Error(), "provider_unavailable"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error", "internal"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"success": true,
		"data":    data,
	}
}

func errorResponse(message, code string) gin.H {
	return gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	}
}
