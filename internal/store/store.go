// Package store persists companies and proposals and serves the read
// queries the analytics engine needs.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
)

// DefaultSQLitePath is used when the sqlite driver has no database_url.
const DefaultSQLitePath = "proposal.db"

// SeedStats counts the rows written by Seed.
type SeedStats struct {
	Companies   int `json:"companies"`
	TeamMembers int `json:"team_members"`
	Projects    int `json:"projects"`
	Awards      int `json:"awards"`
	Proposals   int `json:"proposals"`
}

// Store defines the persistence interface for proposal analytics.
type Store interface {
	// Reads
	GetProposal(ctx context.Context, companyID, proposalID string) (*model.Proposal, error)
	GetCompanyProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error)
	ListResolvedProposals(ctx context.Context, filter model.ProposalFilter) ([]model.Proposal, error)
	CountProposals(ctx context.Context, companyID string) (int, error)

	// Seed replaces every company in the fixture, and all rows it owns,
	// with the fixture contents.
	Seed(ctx context.Context, f *model.Fixture) (SeedStats, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	case "sqlite", "":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}

// seedRows flattens a fixture company into per-table rows.
type seedRows struct {
	team      [][]any
	projects  [][]any
	awards    [][]any
	proposals []model.Proposal
}

func flatten(c model.FixtureCompany, newID func() string, now time.Time) seedRows {
	var r seedRows
	for _, m := range c.TeamMembers {
		r.team = append(r.team, []any{c.ID, m.Name, m.Role, m.IsActive()})
	}
	for _, p := range c.Projects {
		r.projects = append(r.projects, []any{c.ID, p.Name})
	}
	for _, a := range c.Awards {
		r.awards = append(r.awards, []any{c.ID, a.Name})
	}
	for _, p := range c.Proposals {
		if p.ID == "" {
			p.ID = newID()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		p.CompanyID = c.ID
		r.proposals = append(r.proposals, p)
	}
	return r
}

func (s *SeedStats) add(r seedRows) {
	s.Companies++
	s.TeamMembers += len(r.team)
	s.Projects += len(r.projects)
	s.Awards += len(r.awards)
	s.Proposals += len(r.proposals)
}
