package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	return newTestSQLiteStore(t)
}

func suiteFixture() *model.Fixture {
	inactive := false
	return &model.Fixture{Companies: []model.FixtureCompany{
		{
			ID:      "c1",
			Name:    "Acme Builders",
			TaxID:   "12-3456789",
			Address: "1 Main St",
			TeamMembers: []model.FixtureTeamMember{
				{Name: "Dana", Role: "PM"},
				{Name: "Lee", Role: "Estimator"},
				{Name: "Sam", Role: "Former", Active: &inactive},
			},
			Projects: []model.FixtureNamed{{Name: "Bridge"}, {Name: "School"}},
			Proposals: []model.Proposal{
				{ID: "p-target", ClientName: "City", Status: model.ProposalStatusDraft, UpdatedAt: seedNow},
				{ID: "p-won", ClientName: "City", Status: model.ProposalStatusWon, UpdatedAt: seedNow.AddDate(0, -1, 0), EstimatedAmount: 5000},
				{ID: "p-lost", ClientName: "County", Status: model.ProposalStatusLost, UpdatedAt: seedNow.AddDate(0, -6, 0)},
				{ID: "p-sub", Status: model.ProposalStatusSubmitted, UpdatedAt: seedNow.AddDate(0, -2, 0)},
				{ID: "p-done", ClientName: "City", Status: model.ProposalStatusCompleted, UpdatedAt: seedNow},
			},
		},
		{
			ID:   "c2",
			Name: "Other Co",
			Proposals: []model.Proposal{
				{ID: "p-other", ClientName: "City", Status: model.ProposalStatusWon, UpdatedAt: seedNow},
			},
		},
	}}
}

func ids(ps []model.Proposal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	seeded := func(t *testing.T) Store {
		s := newStore(t)
		_, err := s.Seed(context.Background(), suiteFixture())
		require.NoError(t, err)
		return s
	}

	t.Run("SeedStats", func(t *testing.T) {
		s := newStore(t)
		stats, err := s.Seed(context.Background(), suiteFixture())
		require.NoError(t, err)
		assert.Equal(t, SeedStats{Companies: 2, TeamMembers: 3, Projects: 2, Proposals: 6}, stats)
	})

	t.Run("SeedNil", func(t *testing.T) {
		s := newStore(t)
		stats, err := s.Seed(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, SeedStats{}, stats)
	})

	t.Run("GetProposal", func(t *testing.T) {
		s := seeded(t)

		p, err := s.GetProposal(context.Background(), "c1", "p-won")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "c1", p.CompanyID)
		assert.Equal(t, model.ProposalStatusWon, p.Status)
		assert.Equal(t, 5000.0, p.EstimatedAmount)
		assert.True(t, seedNow.AddDate(0, -1, 0).Equal(p.UpdatedAt))
	})

	t.Run("GetProposalScopedByCompany", func(t *testing.T) {
		s := seeded(t)

		p, err := s.GetProposal(context.Background(), "c1", "p-other")
		require.NoError(t, err)
		assert.Nil(t, p)

		p, err = s.GetProposal(context.Background(), "c1", "missing")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("GetCompanyProfile", func(t *testing.T) {
		s := seeded(t)

		c, err := s.GetCompanyProfile(context.Background(), "c1")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Acme Builders", c.Name)
		assert.Equal(t, 2, c.ActiveTeamMembers)
		assert.Equal(t, 2, c.Projects)
		assert.Equal(t, 0, c.Awards)

		c, err = s.GetCompanyProfile(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("ListResolvedProposals", func(t *testing.T) {
		s := seeded(t)
		ctx := context.Background()

		all, err := s.ListResolvedProposals(ctx, model.ProposalFilter{CompanyID: "c1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p-won", "p-sub", "p-lost"}, ids(all))

		client, err := s.ListResolvedProposals(ctx, model.ProposalFilter{CompanyID: "c1", ClientName: "City"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p-won"}, ids(client))

		recent, err := s.ListResolvedProposals(ctx, model.ProposalFilter{
			CompanyID:    "c1",
			UpdatedSince: seedNow.AddDate(0, -3, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"p-won", "p-sub"}, ids(recent))
	})

	t.Run("CountProposals", func(t *testing.T) {
		s := seeded(t)

		n, err := s.CountProposals(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		n, err = s.CountProposals(context.Background(), "none")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("ReseedReplacesCompanyRows", func(t *testing.T) {
		s := seeded(t)
		ctx := context.Background()

		_, err := s.Seed(ctx, &model.Fixture{Companies: []model.FixtureCompany{{
			ID:        "c1",
			Name:      "Acme Renamed",
			Awards:    []model.FixtureNamed{{Name: "Safety"}},
			Proposals: []model.Proposal{{ID: "p-new", Status: model.ProposalStatusLost, UpdatedAt: seedNow}},
		}}})
		require.NoError(t, err)

		c, err := s.GetCompanyProfile(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "Acme Renamed", c.Name)
		assert.Equal(t, 0, c.ActiveTeamMembers)
		assert.Equal(t, 1, c.Awards)

		n, err := s.CountProposals(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		other, err := s.CountProposals(ctx, "c2")
		require.NoError(t, err)
		assert.Equal(t, 1, other)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func TestSQLiteStoreSuite(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")
	s, err := Open(context.Background(), config.StoreConfig{Driver: "sqlite", DatabaseURL: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck

	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpen_PostgresBadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Open(ctx, config.StoreConfig{Driver: "postgres", DatabaseURL: "://not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
