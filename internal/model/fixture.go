package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk shape of a seed file.
type Fixture struct {
	Companies []FixtureCompany `yaml:"companies"`
}

// FixtureCompany holds a company and everything it owns.
type FixtureCompany struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	TaxID       string              `yaml:"tax_id"`
	Address     string              `yaml:"address"`
	TeamMembers []FixtureTeamMember `yaml:"team_members"`
	Projects    []FixtureNamed      `yaml:"projects"`
	Awards      []FixtureNamed      `yaml:"awards"`
	Proposals   []Proposal          `yaml:"proposals"`
}

// FixtureTeamMember is a team member row. Active defaults to true.
type FixtureTeamMember struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Active *bool  `yaml:"active"`
}

// IsActive reports whether the member counts as active.
func (m FixtureTeamMember) IsActive() bool {
	return m.Active == nil || *m.Active
}

// FixtureNamed is a project or award row; only the name is stored.
type FixtureNamed struct {
	Name string `yaml:"name"`
}

// LoadFixture reads and validates a YAML seed file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read fixture %s", path)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML seed document, normalizes proposal statuses
// and stamps each proposal with its owning company id.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "model: decode fixture")
	}
	for i := range f.Companies {
		c := &f.Companies[i]
		if c.ID == "" {
			return nil, eris.Errorf("model: fixture company %d has no id", i)
		}
		for j := range c.Proposals {
			p := &c.Proposals[j]
			status, err := ParseProposalStatus(string(p.Status))
			if err != nil {
				return nil, eris.Wrapf(err, "model: company %s proposal %d", c.ID, j)
			}
			p.Status = status
			p.CompanyID = c.ID
		}
	}
	return &f, nil
}
