package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_number VARCHAR(32) NOT NULL UNIQUE,
		owner_name VARCHAR(128) NOT NULL,
		owner_dob_hash VARCHAR(128) NOT NULL,
		phone_number VARCHAR(32),
		email VARCHAR(128),
		address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS violations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID REFERENCES vehicles(id),
		vehicle_number VARCHAR(32) NOT NULL,
		detection_timestamp TIMESTAMPTZ NOT NULL,
		beam_intensity INTEGER NOT NULL,
		ai_confidence DOUBLE PRECISION NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		location_address TEXT,
		evidence_image_url TEXT,
		camera_id VARCHAR(64),
		device_id VARCHAR(64),
		fine_amount NUMERIC(10,2) NOT NULL,
		challan_number VARCHAR(32) NOT NULL UNIQUE,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		reviewed_by VARCHAR(64),
		reviewed_at TIMESTAMPTZ,
		review_notes TEXT,
		payment_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_vehicle_number ON violations (vehicle_number);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_vehicle_id ON violations (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_status ON violations (status);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_detection_timestamp ON violations (detection_timestamp DESC);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		violation_id UUID NOT NULL REFERENCES violations(id),
		vehicle_number VARCHAR(32) NOT NULL,
		amount NUMERIC(10,2) NOT NULL,
		currency VARCHAR(8) NOT NULL DEFAULT 'INR',
		payment_method VARCHAR(32) NOT NULL,
		transaction_id VARCHAR(64) NOT NULL UNIQUE,
		gateway_order_id VARCHAR(64) NOT NULL UNIQUE,
		gateway_payment_id VARCHAR(64),
		gateway_signature VARCHAR(128),
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		receipt_number VARCHAR(64),
		failure_reason TEXT,
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_violation_id ON payments (violation_id);`,
	`CREATE TABLE IF NOT EXISTS detection_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		raw_payload JSONB NOT NULL,
		extracted_plate VARCHAR(64),
		extraction_confidence DOUBLE PRECISION,
		source_ip VARCHAR(64),
		camera_id VARCHAR(64),
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		violation_id UUID,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_detection_logs_created_at ON detection_logs (created_at);`,
	// At most one completed payment per violation, enforced at the store level
	// on top of the service-side compare-and-swap.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_completed_violation
		ON payments (violation_id) WHERE status = 'completed';`,
}

func RunMigrations(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
