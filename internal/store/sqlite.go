package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/proposal-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// stored as unix seconds.
type SQLiteStore struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, newID: uuid.NewString, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL DEFAULT '',
	tax_id  TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS team_members (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id TEXT NOT NULL REFERENCES companies(id),
	name       TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT '',
	is_active  INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS projects (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id TEXT NOT NULL REFERENCES companies(id),
	name       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS awards (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id TEXT NOT NULL REFERENCES companies(id),
	name       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS proposals (
	id               TEXT PRIMARY KEY,
	company_id       TEXT NOT NULL REFERENCES companies(id),
	client_name      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL CHECK (status IN ('draft', 'in_progress', 'submitted', 'completed', 'won', 'lost')),
	updated_at       INTEGER NOT NULL,
	estimated_amount REAL NOT NULL DEFAULT 0,
	title            TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_team_members_company ON team_members(company_id);
CREATE INDEX IF NOT EXISTS idx_projects_company ON projects(company_id);
CREATE INDEX IF NOT EXISTS idx_awards_company ON awards(company_id);
CREATE INDEX IF NOT EXISTS idx_proposals_company_status ON proposals(company_id, status);
CREATE INDEX IF NOT EXISTS idx_proposals_company_client ON proposals(company_id, client_name);
CREATE INDEX IF NOT EXISTS idx_proposals_company_updated ON proposals(company_id, updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetProposal(ctx context.Context, companyID, proposalID string) (*model.Proposal, error) {
	p, err := scanSQLiteProposal(s.db.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = ? AND company_id = ?`,
		proposalID, companyID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get proposal %s", proposalID)
	}
	return p, nil
}

func (s *SQLiteStore) GetCompanyProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	var c model.CompanyProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.name, c.tax_id, c.address,
			(SELECT count(*) FROM team_members t WHERE t.company_id = c.id AND t.is_active = 1),
			(SELECT count(*) FROM projects p WHERE p.company_id = c.id),
			(SELECT count(*) FROM awards a WHERE a.company_id = c.id)
		 FROM companies c WHERE c.id = ?`,
		companyID,
	).Scan(&c.CompanyID, &c.Name, &c.TaxID, &c.Address, &c.ActiveTeamMembers, &c.Projects, &c.Awards)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get company profile %s", companyID)
	}
	return &c, nil
}

func (s *SQLiteStore) ListResolvedProposals(ctx context.Context, filter model.ProposalFilter) ([]model.Proposal, error) {
	query, args := resolvedQuery(sqliteDialect, filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list resolved proposals")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Proposal
	for rows.Next() {
		p, err := scanSQLiteProposal(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan proposal")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate proposals")
}

func (s *SQLiteStore) CountProposals(ctx context.Context, companyID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM proposals WHERE company_id = ?`, companyID).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count proposals %s", companyID)
	}
	return n, nil
}

// Seed writes the fixture in one transaction, replacing each company's
// existing rows.
func (s *SQLiteStore) Seed(ctx context.Context, f *model.Fixture) (SeedStats, error) {
	var stats SeedStats
	if f == nil {
		return stats, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, eris.Wrap(err, "sqlite: begin seed")
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now().UTC()
	for _, c := range f.Companies {
		for _, table := range []string{"proposals", "team_members", "projects", "awards"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE company_id = ?`, c.ID); err != nil {
				return stats, eris.Wrapf(err, "sqlite: clear %s for %s", table, c.ID)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (id, name, tax_id, address) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, tax_id = excluded.tax_id, address = excluded.address`,
			c.ID, c.Name, c.TaxID, c.Address,
		); err != nil {
			return stats, eris.Wrapf(err, "sqlite: upsert company %s", c.ID)
		}

		r := flatten(c, s.newID, now)
		for _, row := range r.team {
			active := 0
			if row[3].(bool) {
				active = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO team_members (company_id, name, role, is_active) VALUES (?, ?, ?, ?)`,
				row[0], row[1], row[2], active,
			); err != nil {
				return stats, eris.Wrapf(err, "sqlite: insert team member for %s", c.ID)
			}
		}
		for _, owned := range []struct {
			table string
			rows  [][]any
		}{{"projects", r.projects}, {"awards", r.awards}} {
			for _, row := range owned.rows {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO `+owned.table+` (company_id, name) VALUES (?, ?)`,
					row[0], row[1],
				); err != nil {
					return stats, eris.Wrapf(err, "sqlite: insert %s for %s", owned.table, c.ID)
				}
			}
		}
		for _, p := range r.proposals {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO proposals (`+proposalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.CompanyID, p.ClientName, string(p.Status), p.UpdatedAt.UTC().Unix(), p.EstimatedAmount, p.Title,
			); err != nil {
				return stats, eris.Wrapf(err, "sqlite: insert proposal %s", p.ID)
			}
		}
		stats.add(r)
	}

	if err := tx.Commit(); err != nil {
		return stats, eris.Wrap(err, "sqlite: commit seed")
	}
	return stats, nil
}

func scanSQLiteProposal(row scannable) (*model.Proposal, error) {
	var p model.Proposal
	var status string
	var updated int64
	if err := row.Scan(&p.ID, &p.CompanyID, &p.ClientName, &status, &updated, &p.EstimatedAmount, &p.Title); err != nil {
		return nil, err
	}
	p.Status = model.ProposalStatus(status)
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return &p, nil
}
