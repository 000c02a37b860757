package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/resilience"
)

// DataPoints are the raw counts behind a report.
type DataPoints struct {
	TotalProposals     int `json:"total_proposals" yaml:"total_proposals"`
	WonProposals       int `json:"won_proposals" yaml:"won_proposals"`
	// SubmittedProposals counts every resolved proposal: submitted, won or lost.
	SubmittedProposals int `json:"submitted_proposals" yaml:"submitted_proposals"`
	RecentProposals    int `json:"recent_proposals" yaml:"recent_proposals"`
}

// ScoreReport is the engine's output for one proposal.
type ScoreReport struct {
	SuccessRate     int              `json:"success_rate" yaml:"success_rate"`
	ConfidenceLevel Confidence       `json:"confidence_level" yaml:"confidence_level"`
	Factors         []Factor         `json:"factors" yaml:"factors"`
	DataPoints      DataPoints       `json:"data_points" yaml:"data_points"`
	BestPractices   []Recommendation `json:"best_practices" yaml:"best_practices"`
	GeneratedAt     time.Time        `json:"generated_at" yaml:"generated_at"`
	Error           string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Degraded reports whether the report stands in for a failed computation.
func (r *ScoreReport) Degraded() bool {
	return r.Error != ""
}

// DegradedReport is returned in place of a report that could not be
// computed. It renders the same as a company with no history.
func DegradedReport(now time.Time) *ScoreReport {
	return &ScoreReport{
		SuccessRate:     0,
		ConfidenceLevel: ConfidenceLow,
		Factors:         []Factor{},
		BestPractices:   []Recommendation{},
		GeneratedAt:     now,
		Error:           ComputationFailed,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine builds ScoreReports. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	agg *Aggregator
	cfg config.AnalyticsConfig
	now func() time.Time
}

// NewEngine creates an Engine reading from src.
func NewEngine(src Source, cfg config.AnalyticsConfig, retry resilience.RetryConfig, opts ...Option) *Engine {
	e := &Engine{
		agg: NewAggregator(src, cfg.RecencyWindowMonths, retry),
		cfg: cfg,
		now: time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Report scores a proposal owned by companyID. Only ErrNotFound and context
// errors are returned; every other failure yields a degraded report.
func (e *Engine) Report(ctx context.Context, companyID, proposalID string) (*ScoreReport, error) {
	now := e.now().UTC()

	set, err := e.agg.Collect(ctx, companyID, proposalID, now)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		zap.L().Error("analytics: collect history failed, returning degraded report",
			zap.String("company_id", companyID),
			zap.String("proposal_id", proposalID),
			zap.Error(err),
		)
		return DegradedReport(now), nil
	}

	report, err := e.Build(set)
	if err != nil {
		zap.L().Error("analytics: scoring failed, returning degraded report",
			zap.String("company_id", companyID),
			zap.String("proposal_id", proposalID),
			zap.Error(err),
		)
		return DegradedReport(now), nil
	}
	return report, nil
}

// Build runs the pure scoring stages over a collected HistoricalSet.
// Panics in any stage are recovered and returned as errors.
func (e *Engine) Build(set HistoricalSet) (report *ScoreReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = eris.Errorf("analytics: panic while scoring: %v", r)
		}
	}()

	if err := validateSet(set); err != nil {
		return nil, err
	}

	base := WinRate(set.Resolved)
	client := WinRate(set.Client)
	recency := WinRate(set.Recent)
	checks := Checks(set.Profile)
	completeness := checks.Score()

	score := Combine(e.cfg, base, client, recency, completeness)

	return &ScoreReport{
		SuccessRate:     score,
		ConfidenceLevel: ClassifyConfidence(e.cfg, set.TotalProposals),
		Factors:         ExplainFactors(e.cfg, base, client, recency, completeness),
		DataPoints: DataPoints{
			TotalProposals:     set.TotalProposals,
			WonProposals:       base.Wins,
			SubmittedProposals: base.Samples,
			RecentProposals:    recency.Samples,
		},
		BestPractices: Recommend(score, e.cfg.LowScoreThreshold, set.Profile, set.Proposal, set.Client),
		GeneratedAt:   set.Now,
	}, nil
}

func validateSet(set HistoricalSet) error {
	if set.TotalProposals < 0 {
		return eris.Wrapf(errMalformedHistory, "analytics: negative proposal count %d", set.TotalProposals)
	}
	histories := []struct {
		name string
		rows []model.Proposal
	}{
		{"resolved", set.Resolved},
		{"client", set.Client},
		{"recent", set.Recent},
	}
	for _, h := range histories {
		for _, p := range h.rows {
			if !p.Status.IsResolved() {
				return eris.Wrapf(errMalformedHistory, "analytics: %s history has proposal %s with status %q", h.name, p.ID, p.Status)
			}
		}
	}
	return nil
}
