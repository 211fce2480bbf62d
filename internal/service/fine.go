package service

import "challan-service/internal/config"

// ComputeFine maps beam intensity onto the tiered fine schedule. Deterministic
// and computed exactly once, at violation creation; the stored amount is never
// recomputed afterwards.
func ComputeFine(fines config.FineConfig, beamIntensity int) float64 {
	switch {
	case beamIntensity > fines.HighThreshold:
		return fines.HighAmount
	case beamIntensity > fines.MidThreshold:
		return fines.MidAmount
	default:
		return fines.BaseAmount
	}
}
