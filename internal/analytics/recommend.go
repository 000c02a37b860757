package analytics

import (
	"fmt"

	"github.com/sells-group/proposal-cli/internal/model"
)

// Priority orders recommendations for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is one suggested improvement.
type Recommendation struct {
	Category   string   `json:"category" yaml:"category"`
	Suggestion string   `json:"suggestion" yaml:"suggestion"`
	Priority   Priority `json:"priority" yaml:"priority"`
}

// recommendInput is everything a rule may inspect.
type recommendInput struct {
	score             int
	lowScoreThreshold int
	profile           model.CompanyProfile
	clientName        string
	hasClient         bool
	wonWithClient     bool
}

type rule struct {
	name    string
	applies func(in recommendInput) bool
	emit    func(in recommendInput) Recommendation
}

// rules are evaluated in order; every rule that applies contributes one
// recommendation.
var rules = []rule{
	{
		name:    "track_record",
		applies: func(in recommendInput) bool { return in.score < in.lowScoreThreshold },
		emit: func(recommendInput) Recommendation {
			return Recommendation{
				Category:   "Track Record",
				Suggestion: "Strengthen your track record by highlighting relevant past wins and measurable outcomes.",
				Priority:   PriorityHigh,
			}
		},
	},
	{
		name:    "team",
		applies: func(in recommendInput) bool { return in.profile.ActiveTeamMembers < minActiveTeamMembers },
		emit: func(recommendInput) Recommendation {
			return Recommendation{
				Category:   "Team",
				Suggestion: "Showcase your team: add key personnel with their roles and qualifications.",
				Priority:   PriorityMedium,
			}
		},
	},
	{
		name:    "case_studies",
		applies: func(in recommendInput) bool { return in.profile.Projects < minProjects },
		emit: func(recommendInput) Recommendation {
			return Recommendation{
				Category:   "Case Studies",
				Suggestion: "Add case studies from completed projects to demonstrate relevant experience.",
				Priority:   PriorityHigh,
			}
		},
	},
	{
		name:    "differentiation",
		applies: func(in recommendInput) bool { return in.profile.Awards == 0 },
		emit: func(recommendInput) Recommendation {
			return Recommendation{
				Category:   "Differentiation",
				Suggestion: "Add awards, certifications or recognitions that set you apart from competitors.",
				Priority:   PriorityLow,
			}
		},
	},
	{
		name:    "client_leverage",
		applies: func(in recommendInput) bool { return in.hasClient && in.wonWithClient },
		emit: func(in recommendInput) Recommendation {
			return Recommendation{
				Category:   "Client Relationship",
				Suggestion: fmt.Sprintf("Leverage your existing relationship with %s: reference previous successful work together.", in.clientName),
				Priority:   PriorityHigh,
			}
		},
	},
	{
		name:    "client_strategy",
		applies: func(in recommendInput) bool { return in.hasClient && !in.wonWithClient },
		emit: func(in recommendInput) Recommendation {
			return Recommendation{
				Category:   "Client Strategy",
				Suggestion: fmt.Sprintf("Research %s's priorities and tailor the proposal to their stated goals.", in.clientName),
				Priority:   PriorityMedium,
			}
		},
	},
}

// fallbackRecommendations are returned when no rule applies.
var fallbackRecommendations = []Recommendation{
	{
		Category:   "Content Quality",
		Suggestion: "Review the proposal for clarity and make sure every requirement is addressed explicitly.",
		Priority:   PriorityMedium,
	},
	{
		Category:   "Format Compliance",
		Suggestion: "Check the submission against the client's formatting and page-limit requirements.",
		Priority:   PriorityMedium,
	},
	{
		Category:   "Pricing Strategy",
		Suggestion: "Benchmark your pricing against comparable awards to stay competitive.",
		Priority:   PriorityMedium,
	},
}

// Recommend produces the ordered improvement list for a proposal. The
// result is never empty.
func Recommend(score, lowScoreThreshold int, profile model.CompanyProfile, proposal model.Proposal, clientHistory []model.Proposal) []Recommendation {
	in := recommendInput{
		score:             score,
		lowScoreThreshold: lowScoreThreshold,
		profile:           profile,
		clientName:        proposal.ClientName,
		hasClient:         proposal.HasClient(),
		wonWithClient:     anyWon(clientHistory),
	}

	out := make([]Recommendation, 0, len(rules))
	for _, r := range rules {
		if r.applies(in) {
			out = append(out, r.emit(in))
		}
	}
	if len(out) == 0 {
		out = append(out, fallbackRecommendations...)
	}
	return out
}

func anyWon(proposals []model.Proposal) bool {
	for _, p := range proposals {
		if p.Status == model.ProposalStatusWon {
			return true
		}
	}
	return false
}
