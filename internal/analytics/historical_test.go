package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/resilience"
)

func seededSource() *fakeSource {
	src := newFakeSource()
	src.profiles["c1"] = fullProfile("c1")
	src.profiles["c2"] = fullProfile("c2")

	src.addProposal(proposal("p-target", "c1", "Acme Corp", model.ProposalStatusDraft, testNow))
	src.addProposal(proposal("p-1", "c1", "Acme Corp", model.ProposalStatusWon, testNow.AddDate(0, -1, 0)))
	src.addProposal(proposal("p-2", "c1", "Other", model.ProposalStatusLost, testNow.AddDate(0, -5, 0)))
	src.addProposal(proposal("p-3", "c1", "", model.ProposalStatusSubmitted, testNow.AddDate(0, -2, 0)))
	src.addProposal(proposal("p-4", "c1", "Acme Corp", model.ProposalStatusInProgress, testNow))
	src.addProposal(proposal("p-5", "c1", "Other", model.ProposalStatusLost, testNow.AddDate(0, 0, -10)))
	src.addProposal(proposal("p-foreign", "c2", "Acme Corp", model.ProposalStatusWon, testNow))
	return src
}

func TestAggregatorCollect(t *testing.T) {
	src := seededSource()
	agg := NewAggregator(src, 3, fastRetry())

	set, err := agg.Collect(context.Background(), "c1", "p-target", testNow)
	require.NoError(t, err)

	assert.Equal(t, "p-target", set.Proposal.ID)
	assert.Equal(t, "Acme Builders", set.Profile.Name)
	assert.Len(t, set.Resolved, 4)
	assert.Len(t, set.Client, 1)
	assert.Len(t, set.Recent, 3)
	assert.Equal(t, 6, set.TotalProposals)
	assert.Equal(t, testNow, set.Now)
	assert.Equal(t, testNow.AddDate(0, -3, 0), set.Since)
}

func TestAggregatorCollect_NoClientSkipsClientRead(t *testing.T) {
	src := seededSource()
	src.addProposal(proposal("p-noclient", "c1", "   ", model.ProposalStatusDraft, testNow))
	agg := NewAggregator(src, 3, fastRetry())

	set, err := agg.Collect(context.Background(), "c1", "p-noclient", testNow)
	require.NoError(t, err)

	assert.Empty(t, set.Client)
	assert.Equal(t, 0, src.callCount("list_resolved_client"))
}

func TestAggregatorCollect_NotFound(t *testing.T) {
	src := seededSource()
	agg := NewAggregator(src, 3, fastRetry())
	ctx := context.Background()

	_, errMissing := agg.Collect(ctx, "c1", "does-not-exist", testNow)
	_, errForeign := agg.Collect(ctx, "c1", "p-foreign", testNow)
	_, errEmpty := agg.Collect(ctx, "", "p-target", testNow)

	assert.ErrorIs(t, errMissing, ErrNotFound)
	assert.ErrorIs(t, errForeign, ErrNotFound)
	assert.ErrorIs(t, errEmpty, ErrNotFound)
	assert.Equal(t, errMissing, errForeign)
}

func TestAggregatorCollect_RetriesTransient(t *testing.T) {
	src := seededSource()
	failed := false
	src.failures = func(op string) error {
		if op == "count_proposals" && !failed {
			failed = true
			return resilience.NewTransientError(errors.New("connection reset by peer"))
		}
		return nil
	}
	agg := NewAggregator(src, 3, fastRetry())

	set, err := agg.Collect(context.Background(), "c1", "p-target", testNow)
	require.NoError(t, err)
	assert.Equal(t, 6, set.TotalProposals)
	assert.Equal(t, 2, src.callCount("count_proposals"))
}

func TestAggregatorCollect_PermanentError(t *testing.T) {
	src := seededSource()
	src.failures = func(op string) error {
		if op == "list_resolved_recent" {
			return errors.New("syntax error")
		}
		return nil
	}
	agg := NewAggregator(src, 3, fastRetry())

	_, err := agg.Collect(context.Background(), "c1", "p-target", testNow)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "recent proposals")
	assert.Equal(t, 1, src.callCount("list_resolved_recent"))
}

func TestAggregatorCollect_MissingProfile(t *testing.T) {
	src := seededSource()
	delete(src.profiles, "c1")
	agg := NewAggregator(src, 3, fastRetry())

	_, err := agg.Collect(context.Background(), "c1", "p-target", testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, errMalformedHistory)
}

func TestNewAggregator_DefaultWindow(t *testing.T) {
	agg := NewAggregator(newFakeSource(), 0, fastRetry())
	assert.Equal(t, 3, agg.windowMonths)
}
