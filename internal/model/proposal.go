package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ProposalStatus represents where a proposal sits in its lifecycle.
type ProposalStatus string

const (
	ProposalStatusDraft      ProposalStatus = "draft"
	ProposalStatusInProgress ProposalStatus = "in_progress"
	ProposalStatusSubmitted  ProposalStatus = "submitted"
	ProposalStatusCompleted  ProposalStatus = "completed"
	ProposalStatusWon        ProposalStatus = "won"
	ProposalStatusLost       ProposalStatus = "lost"
)

// ResolvedStatuses lists the statuses counted as resolved outcomes.
var ResolvedStatuses = []ProposalStatus{
	ProposalStatusSubmitted,
	ProposalStatusWon,
	ProposalStatusLost,
}

// IsResolved reports whether the status counts toward win-rate history.
func (s ProposalStatus) IsResolved() bool {
	switch s {
	case ProposalStatusSubmitted, ProposalStatusWon, ProposalStatusLost:
		return true
	default:
		return false
	}
}

// ParseProposalStatus normalizes a raw status string. Both "in-progress"
// and "in_progress" are accepted.
func ParseProposalStatus(raw string) (ProposalStatus, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	switch ProposalStatus(s) {
	case ProposalStatusDraft, ProposalStatusInProgress, ProposalStatusSubmitted,
		ProposalStatusCompleted, ProposalStatusWon, ProposalStatusLost:
		return ProposalStatus(s), nil
	}
	return "", eris.Errorf("model: unknown proposal status %q", raw)
}

// ResolvedStatusStrings returns ResolvedStatuses as plain strings for use
// as query parameters.
func ResolvedStatusStrings() []string {
	out := make([]string, len(ResolvedStatuses))
	for i, s := range ResolvedStatuses {
		out[i] = string(s)
	}
	return out
}

// Proposal is a bid owned by exactly one company.
type Proposal struct {
	ID              string         `json:"id" yaml:"id"`
	CompanyID       string         `json:"company_id" yaml:"-"`
	ClientName      string         `json:"client_name,omitempty" yaml:"client_name"`
	Status          ProposalStatus `json:"status" yaml:"status"`
	UpdatedAt       time.Time      `json:"updated_at" yaml:"updated_at"`
	EstimatedAmount float64        `json:"estimated_amount" yaml:"estimated_amount"`
	Title           string         `json:"title" yaml:"title"`
}

// HasClient reports whether the proposal names a client.
func (p Proposal) HasClient() bool {
	return strings.TrimSpace(p.ClientName) != ""
}

// ProposalFilter narrows a resolved-proposal listing for one company.
// Zero-valued fields are not applied.
type ProposalFilter struct {
	CompanyID    string
	ClientName   string
	UpdatedSince time.Time
}
