package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/resilience"
)

// fakeSource is an in-memory Source that filters the way the stores do.
type fakeSource struct {
	mu        sync.Mutex
	profiles  map[string]model.CompanyProfile
	proposals []model.Proposal

	// failures returns an error for the named operation on each call
	// until it returns nil.
	failures func(op string) error
	calls    map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		profiles: make(map[string]model.CompanyProfile),
		calls:    make(map[string]int),
	}
}

func (f *fakeSource) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.failures != nil {
		return f.failures(op)
	}
	return nil
}

func (f *fakeSource) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeSource) GetProposal(_ context.Context, companyID, proposalID string) (*model.Proposal, error) {
	if err := f.record("get_proposal"); err != nil {
		return nil, err
	}
	for _, p := range f.proposals {
		if p.ID == proposalID && p.CompanyID == companyID {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetCompanyProfile(_ context.Context, companyID string) (*model.CompanyProfile, error) {
	if err := f.record("get_company_profile"); err != nil {
		return nil, err
	}
	p, ok := f.profiles[companyID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeSource) ListResolvedProposals(_ context.Context, filter model.ProposalFilter) ([]model.Proposal, error) {
	op := "list_resolved"
	switch {
	case filter.ClientName != "":
		op = "list_resolved_client"
	case !filter.UpdatedSince.IsZero():
		op = "list_resolved_recent"
	}
	if err := f.record(op); err != nil {
		return nil, err
	}

	var out []model.Proposal
	for _, p := range f.proposals {
		if p.CompanyID != filter.CompanyID || !p.Status.IsResolved() {
			continue
		}
		if filter.ClientName != "" && p.ClientName != filter.ClientName {
			continue
		}
		if !filter.UpdatedSince.IsZero() && p.UpdatedAt.Before(filter.UpdatedSince) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeSource) CountProposals(_ context.Context, companyID string) (int, error) {
	if err := f.record("count_proposals"); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range f.proposals {
		if p.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSource) addProposal(p model.Proposal) {
	f.proposals = append(f.proposals, p)
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func fullProfile(companyID string) model.CompanyProfile {
	return model.CompanyProfile{
		CompanyID:         companyID,
		Name:              "Acme Builders",
		TaxID:             "12-3456789",
		Address:           "1 Main St",
		ActiveTeamMembers: 5,
		Projects:          4,
		Awards:            2,
	}
}

func proposal(id, companyID, client string, status model.ProposalStatus, updated time.Time) model.Proposal {
	return model.Proposal{
		ID:         id,
		CompanyID:  companyID,
		ClientName: client,
		Status:     status,
		UpdatedAt:  updated,
		Title:      "Proposal " + id,
	}
}

func proposalsWithStatus(status model.ProposalStatus, n int) []model.Proposal {
	out := make([]model.Proposal, n)
	for i := range out {
		out[i] = model.Proposal{Status: status}
	}
	return out
}
