package model

import "strings"

// CompanyProfile is the completeness-relevant snapshot of a company: its
// identity fields and the sizes of its owned collections.
type CompanyProfile struct {
	CompanyID         string `json:"company_id"`
	Name              string `json:"name"`
	TaxID             string `json:"tax_id"`
	Address           string `json:"address"`
	ActiveTeamMembers int    `json:"active_team_members"`
	Projects          int    `json:"projects"`
	Awards            int    `json:"awards"`
}

// HasIdentity reports whether name, tax id and address are all set.
func (c CompanyProfile) HasIdentity() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.TaxID) != "" &&
		strings.TrimSpace(c.Address) != ""
}
