package analytics

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/resilience"
)

// Source is the read-only view of proposal storage the engine needs.
type Source interface {
	// GetProposal returns the proposal only if it belongs to companyID.
	// A missing or foreign proposal yields (nil, nil).
	GetProposal(ctx context.Context, companyID, proposalID string) (*model.Proposal, error)
	// GetCompanyProfile returns (nil, nil) when the company does not exist.
	GetCompanyProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error)
	// ListResolvedProposals returns submitted, won and lost proposals
	// matching the filter.
	ListResolvedProposals(ctx context.Context, f model.ProposalFilter) ([]model.Proposal, error)
	// CountProposals counts every proposal of the company, any status.
	CountProposals(ctx context.Context, companyID string) (int, error)
}

// HistoricalSet is the request-scoped snapshot every scoring stage reads.
// It is built once by the Aggregator and passed by value afterwards.
type HistoricalSet struct {
	Proposal model.Proposal
	Profile  model.CompanyProfile

	// Resolved holds every resolved proposal of the company.
	Resolved []model.Proposal
	// Client holds resolved proposals for Proposal.ClientName; empty when
	// the proposal names no client.
	Client []model.Proposal
	// Recent holds resolved proposals updated at or after Since.
	Recent []model.Proposal
	// TotalProposals counts all proposals regardless of status.
	TotalProposals int

	Now   time.Time
	Since time.Time
}

// Aggregator gathers a HistoricalSet from a Source.
type Aggregator struct {
	src          Source
	windowMonths int
	retry        resilience.RetryConfig
}

// NewAggregator creates an Aggregator with a trailing recency window of
// windowMonths calendar months.
func NewAggregator(src Source, windowMonths int, retry resilience.RetryConfig) *Aggregator {
	if windowMonths < 1 {
		windowMonths = DefaultConfig().RecencyWindowMonths
	}
	return &Aggregator{src: src, windowMonths: windowMonths, retry: retry}
}

// Collect loads the target proposal and the history needed to score it.
// The four historical reads and the profile read run concurrently.
func (a *Aggregator) Collect(ctx context.Context, companyID, proposalID string, now time.Time) (HistoricalSet, error) {
	if companyID == "" || proposalID == "" {
		return HistoricalSet{}, ErrNotFound
	}

	proposal, err := read(ctx, a, "get_proposal", func(ctx context.Context) (*model.Proposal, error) {
		return a.src.GetProposal(ctx, companyID, proposalID)
	})
	if err != nil {
		return HistoricalSet{}, eris.Wrapf(err, "analytics: get proposal %s", proposalID)
	}
	if proposal == nil || proposal.CompanyID != companyID {
		return HistoricalSet{}, ErrNotFound
	}

	since := now.AddDate(0, -a.windowMonths, 0)

	var (
		profile  *model.CompanyProfile
		resolved []model.Proposal
		client   []model.Proposal
		recent   []model.Proposal
		total    int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := read(gctx, a, "get_company_profile", func(ctx context.Context) (*model.CompanyProfile, error) {
			return a.src.GetCompanyProfile(ctx, companyID)
		})
		if err != nil {
			return eris.Wrap(err, "analytics: company profile")
		}
		if p == nil {
			return eris.Wrapf(errMalformedHistory, "analytics: proposal %s references missing company", proposalID)
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		rows, err := read(gctx, a, "list_resolved", func(ctx context.Context) ([]model.Proposal, error) {
			return a.src.ListResolvedProposals(ctx, model.ProposalFilter{CompanyID: companyID})
		})
		resolved = rows
		return eris.Wrap(err, "analytics: resolved proposals")
	})

	if proposal.HasClient() {
		g.Go(func() error {
			rows, err := read(gctx, a, "list_resolved_client", func(ctx context.Context) ([]model.Proposal, error) {
				return a.src.ListResolvedProposals(ctx, model.ProposalFilter{
					CompanyID:  companyID,
					ClientName: proposal.ClientName,
				})
			})
			client = rows
			return eris.Wrap(err, "analytics: client proposals")
		})
	}

	g.Go(func() error {
		rows, err := read(gctx, a, "list_resolved_recent", func(ctx context.Context) ([]model.Proposal, error) {
			return a.src.ListResolvedProposals(ctx, model.ProposalFilter{
				CompanyID:    companyID,
				UpdatedSince: since,
			})
		})
		recent = rows
		return eris.Wrap(err, "analytics: recent proposals")
	})

	g.Go(func() error {
		n, err := read(gctx, a, "count_proposals", func(ctx context.Context) (int, error) {
			return a.src.CountProposals(ctx, companyID)
		})
		total = n
		return eris.Wrap(err, "analytics: count proposals")
	})

	if err := g.Wait(); err != nil {
		return HistoricalSet{}, err
	}

	return HistoricalSet{
		Proposal:       *proposal,
		Profile:        *profile,
		Resolved:       resolved,
		Client:         client,
		Recent:         recent,
		TotalProposals: total,
		Now:            now,
		Since:          since,
	}, nil
}

func read[T any](ctx context.Context, a *Aggregator, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg := a.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(op)
	}
	return resilience.DoVal(ctx, cfg, fn)
}
