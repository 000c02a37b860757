package analytics

import "github.com/sells-group/proposal-cli/internal/model"

// CompletenessChecks holds the four profile categories the score is built
// from. The recommendation rules read the same flags.
type CompletenessChecks struct {
	Identity bool
	Team     bool
	Projects bool
	Awards   bool
}

// Checks evaluates the four categories for a profile.
func Checks(p model.CompanyProfile) CompletenessChecks {
	return CompletenessChecks{
		Identity: p.HasIdentity(),
		Team:     p.ActiveTeamMembers > 0,
		Projects: p.Projects > 0,
		Awards:   p.Awards > 0,
	}
}

// Score returns 25 points per satisfied category.
func (c CompletenessChecks) Score() int {
	score := 0
	for _, ok := range []bool{c.Identity, c.Team, c.Projects, c.Awards} {
		if ok {
			score += completenessCategoryPoints
		}
	}
	return score
}

// CompletenessScore converts a profile into a 0-100 score with no partial
// credit within a category.
func CompletenessScore(p model.CompanyProfile) int {
	return Checks(p).Score()
}
