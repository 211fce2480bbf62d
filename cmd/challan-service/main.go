package main

import (
	"fmt"
	"os"

	"challan-service/internal/auth"
	"challan-service/internal/client"
	"challan-service/internal/config"
	"challan-service/internal/db"
	httphandler "challan-service/internal/http"
	"challan-service/internal/http/middleware"
	"challan-service/internal/logger"
	"challan-service/internal/repository"
	"challan-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	vehicleRepo := repository.NewVehicleRepository(database)
	violationRepo := repository.NewViolationRepository(database)
	detectionLogRepo := repository.NewDetectionLogRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)

	tokenIssuer := auth.NewIssuer(cfg.Auth.AccessSecret)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	gateway := client.NewRazorpayClient(cfg)

	detectionService := service.NewDetectionService(cfg, detectionLogRepo, violationRepo, vehicleRepo)
	violationService := service.NewViolationService(violationRepo)
	reviewService := service.NewReviewService(violationRepo)
	paymentService := service.NewPaymentService(database, paymentRepo, violationRepo, gateway, cfg.Razorpay.KeySecret)
	ownerService := service.NewOwnerService(vehicleRepo, violationRepo, tokenIssuer)
	authService := service.NewAuthService(cfg.Auth, tokenIssuer)

	handler := httphandler.NewHandler(detectionService, violationService, reviewService, paymentService, ownerService, authService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting challan service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
