package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/db"
	"github.com/sells-group/proposal-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	newID   func() string
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	sqlGetProposal = `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1 AND company_id = $2`

	sqlGetCompanyProfile = `SELECT c.id, c.name, c.tax_id, c.address,
		(SELECT count(*) FROM team_members t WHERE t.company_id = c.id AND t.is_active),
		(SELECT count(*) FROM projects p WHERE p.company_id = c.id),
		(SELECT count(*) FROM awards a WHERE a.company_id = c.id)
		FROM companies c WHERE c.id = $1`

	sqlCountProposals = `SELECT count(*) FROM proposals WHERE company_id = $1`
)

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"get_proposal":        sqlGetProposal,
	"get_company_profile": sqlGetCompanyProfile,
	"count_proposals":     sqlCountProposals,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Tables do not exist before the first migrate, so a failed prepare
	// does not reject the connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				zap.L().Debug("postgres: prepare skipped", zap.String("statement", name), zap.Error(err))
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresStore(pool, pool.Close), nil
}

func newPostgresStore(pool db.Pool, closeFn func()) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		closeFn: closeFn,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return migratePostgres(ctx, s.pool)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetProposal(ctx context.Context, companyID, proposalID string) (*model.Proposal, error) {
	p, err := scanProposal(s.pool.QueryRow(ctx, sqlGetProposal, proposalID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get proposal %s", proposalID)
	}
	return p, nil
}

func (s *PostgresStore) GetCompanyProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	var c model.CompanyProfile
	err := s.pool.QueryRow(ctx, sqlGetCompanyProfile, companyID).Scan(
		&c.CompanyID, &c.Name, &c.TaxID, &c.Address,
		&c.ActiveTeamMembers, &c.Projects, &c.Awards,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get company profile %s", companyID)
	}
	return &c, nil
}

func (s *PostgresStore) ListResolvedProposals(ctx context.Context, filter model.ProposalFilter) ([]model.Proposal, error) {
	query, args := resolvedQuery(postgresDialect, filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list resolved proposals")
	}
	defer rows.Close()

	var out []model.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan proposal")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate proposals")
}

func (s *PostgresStore) CountProposals(ctx context.Context, companyID string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, sqlCountProposals, companyID).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "postgres: count proposals %s", companyID)
	}
	return n, nil
}

// Seed writes the fixture in one transaction. Owned rows are bulk loaded
// with COPY.
func (s *PostgresStore) Seed(ctx context.Context, f *model.Fixture) (SeedStats, error) {
	var stats SeedStats
	if f == nil {
		return stats, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return stats, eris.Wrap(err, "postgres: begin seed")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := s.now().UTC()
	for _, c := range f.Companies {
		if _, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, c.ID); err != nil {
			return stats, eris.Wrapf(err, "postgres: clear company %s", c.ID)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO companies (id, name, tax_id, address) VALUES ($1, $2, $3, $4)`,
			c.ID, c.Name, c.TaxID, c.Address,
		); err != nil {
			return stats, eris.Wrapf(err, "postgres: insert company %s", c.ID)
		}

		r := flatten(c, s.newID, now)
		proposals := make([][]any, len(r.proposals))
		for i, p := range r.proposals {
			proposals[i] = []any{p.ID, p.CompanyID, p.ClientName, string(p.Status), p.UpdatedAt, p.EstimatedAmount, p.Title}
		}

		copies := []struct {
			table   string
			columns []string
			rows    [][]any
		}{
			{"team_members", []string{"company_id", "name", "role", "is_active"}, r.team},
			{"projects", []string{"company_id", "name"}, r.projects},
			{"awards", []string{"company_id", "name"}, r.awards},
			{"proposals", []string{"id", "company_id", "client_name", "status", "updated_at", "estimated_amount", "title"}, proposals},
		}
		for _, cp := range copies {
			if _, err := db.CopyFrom(ctx, tx, cp.table, cp.columns, cp.rows); err != nil {
				return stats, eris.Wrapf(err, "postgres: seed company %s", c.ID)
			}
		}
		stats.add(r)
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, eris.Wrap(err, "postgres: commit seed")
	}
	return stats, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProposal(row scannable) (*model.Proposal, error) {
	var p model.Proposal
	var status string
	if err := row.Scan(&p.ID, &p.CompanyID, &p.ClientName, &status, &p.UpdatedAt, &p.EstimatedAmount, &p.Title); err != nil {
		return nil, err
	}
	p.Status = model.ProposalStatus(status)
	return &p, nil
}
