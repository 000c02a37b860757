package analytics

import (
	"math"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
)

// Rate is a win percentage together with the sample it was computed from.
type Rate struct {
	Value   float64 // 0-100
	Samples int
	Wins    int
}

// WinRate computes the share of won proposals among the given resolved
// proposals. An empty slice yields the zero Rate.
func WinRate(proposals []model.Proposal) Rate {
	r := Rate{Samples: len(proposals)}
	for _, p := range proposals {
		if p.Status == model.ProposalStatusWon {
			r.Wins++
		}
	}
	if r.Samples > 0 {
		r.Value = float64(r.Wins) / float64(r.Samples) * 100
	}
	return r
}

// HasData reports whether the rate was computed from at least one proposal.
func (r Rate) HasData() bool {
	return r.Samples > 0
}

// usable decides whether a rate takes part in the weighted mean. By default
// a 0% rate is treated the same as no history at all.
func usable(cfg config.AnalyticsConfig, r Rate) bool {
	if cfg.ZeroRateIsData {
		return r.Samples > 0
	}
	return r.Value > 0
}

// Combine folds the three rates and the completeness score into a single
// integer percentage in [0, 100].
func Combine(cfg config.AnalyticsConfig, base, client, recency Rate, completeness int) int {
	weighted := []struct {
		rate   Rate
		weight float64
	}{
		{base, cfg.BaseRateWeight},
		{client, cfg.ClientRateWeight},
		{recency, cfg.RecencyRateWeight},
	}

	var sum, weights float64
	for _, w := range weighted {
		if w.weight <= 0 || !usable(cfg, w.rate) {
			continue
		}
		sum += w.rate.Value * w.weight
		weights += w.weight
	}

	bonus := float64(completeness) * cfg.CompletenessBonus

	var score float64
	if weights > 0 {
		score = sum/weights + bonus
	} else {
		score = cfg.FallbackFloor + bonus
	}

	return int(math.Round(clamp(score, 0, 100)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
