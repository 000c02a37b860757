package analytics

import "github.com/sells-group/proposal-cli/internal/config"

// Confidence labels how much history backs an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ClassifyConfidence maps the company's total proposal volume, resolved or
// not, to a confidence label.
func ClassifyConfidence(cfg config.AnalyticsConfig, total int) Confidence {
	switch {
	case total >= cfg.HighConfidenceMin:
		return ConfidenceHigh
	case total >= cfg.MediumConfidenceMin:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
