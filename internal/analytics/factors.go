package analytics

import (
	"fmt"
	"math"

	"github.com/sells-group/proposal-cli/internal/config"
)

// Impact is the direction a factor pushes the estimate.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"
)

// Factor labels.
const (
	FactorHistoricalWinRate   = "Historical Win Rate"
	FactorClientRelationship  = "Client Relationship"
	FactorProfileCompleteness = "Profile Completeness"
	FactorRecentPerformance   = "Recent Performance"
)

// Factor is one display row explaining an input to the estimate.
type Factor struct {
	Factor string `json:"factor" yaml:"factor"`
	Value  string `json:"value" yaml:"value"`
	Impact Impact `json:"impact" yaml:"impact"`
}

// ExplainFactors lists the inputs to Combine in display order: overall
// rate, client rate, completeness, recency. Completeness is always present;
// a rate appears only when Combine used it.
func ExplainFactors(cfg config.AnalyticsConfig, base, client, recency Rate, completeness int) []Factor {
	factors := make([]Factor, 0, 4)

	if usable(cfg, base) {
		factors = append(factors, Factor{
			Factor: FactorHistoricalWinRate,
			Value:  percent(base.Value),
			Impact: rateImpact(base.Value, overallPositiveAbove, overallNegativeBelow),
		})
	}
	if usable(cfg, client) {
		factors = append(factors, Factor{
			Factor: FactorClientRelationship,
			Value:  percent(client.Value),
			Impact: rateImpact(client.Value, clientPositiveAbove, clientNegativeBelow),
		})
	}

	factors = append(factors, Factor{
		Factor: FactorProfileCompleteness,
		Value:  percent(float64(completeness)),
		Impact: completenessImpact(completeness),
	})

	if usable(cfg, recency) {
		factors = append(factors, Factor{
			Factor: FactorRecentPerformance,
			Value:  percent(recency.Value),
			Impact: rateImpact(recency.Value, recencyPositiveAbove, recencyNegativeBelow),
		})
	}

	return factors
}

func rateImpact(v, positiveAbove, negativeBelow float64) Impact {
	switch {
	case v > positiveAbove:
		return ImpactPositive
	case v < negativeBelow:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

func completenessImpact(score int) Impact {
	switch {
	case score >= completenessPositiveMin:
		return ImpactPositive
	case score < completenessNegativeBelow:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}
