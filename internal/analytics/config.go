// Package analytics estimates how likely a proposal is to be won from the
// owning company's history and profile, and suggests improvements.
package analytics

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-cli/internal/config"
)

// Factor impact thresholds. A rate strictly above the positive bound is
// positive, strictly below the negative bound is negative.
const (
	overallPositiveAbove = 40.0
	overallNegativeBelow = 20.0

	clientPositiveAbove = 50.0
	clientNegativeBelow = 30.0

	recencyPositiveAbove = 40.0
	recencyNegativeBelow = 20.0

	// Completeness is positive at or above its bound.
	completenessPositiveMin   = 75
	completenessNegativeBelow = 50
)

// Recommendation triggers.
const (
	minActiveTeamMembers = 3
	minProjects          = 3
)

// completenessCategoryPoints is the value of each of the four profile checks.
const completenessCategoryPoints = 25

// DefaultConfig returns the engine weights and thresholds.
func DefaultConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		// Deliberately not normalized to 1.0; Combine divides by the
		// weights actually used.
		BaseRateWeight:    0.3,
		ClientRateWeight:  0.3,
		RecencyRateWeight: 0.2,

		// Up to 10 points for a fully complete profile.
		CompletenessBonus: 0.10,
		FallbackFloor:     20,

		RecencyWindowMonths: 3,
		HighConfidenceMin:   20,
		MediumConfidenceMin: 10,
		LowScoreThreshold:   30,
	}
}

// WeightSum returns the sum of the three rate weights.
func WeightSum(c config.AnalyticsConfig) float64 {
	return c.BaseRateWeight + c.ClientRateWeight + c.RecencyRateWeight
}

// ValidateConfig checks that an AnalyticsConfig is internally consistent.
func ValidateConfig(c config.AnalyticsConfig) error {
	var errs []string

	weights := []struct {
		name  string
		value float64
	}{
		{"base_rate_weight", c.BaseRateWeight},
		{"client_rate_weight", c.ClientRateWeight},
		{"recency_rate_weight", c.RecencyRateWeight},
		{"completeness_bonus", c.CompletenessBonus},
	}
	for _, w := range weights {
		if w.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", w.name))
		}
	}
	if WeightSum(c) <= 0 {
		errs = append(errs, "rate weights must sum to > 0")
	}
	if c.FallbackFloor < 0 || c.FallbackFloor > 100 {
		errs = append(errs, "fallback_floor must be between 0 and 100")
	}
	if c.RecencyWindowMonths < 1 {
		errs = append(errs, "recency_window_months must be >= 1")
	}
	if c.MediumConfidenceMin < 0 {
		errs = append(errs, "medium_confidence_min must be >= 0")
	}
	if c.HighConfidenceMin < c.MediumConfidenceMin {
		errs = append(errs, "high_confidence_min must be >= medium_confidence_min")
	}
	if c.LowScoreThreshold < 0 || c.LowScoreThreshold > 100 {
		errs = append(errs, "low_score_threshold must be between 0 and 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("analytics: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
