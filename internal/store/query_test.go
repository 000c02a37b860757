package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/proposal-cli/internal/model"
)

func TestResolvedQuery_Postgres(t *testing.T) {
	since := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	q, args := resolvedQuery(postgresDialect, model.ProposalFilter{
		CompanyID:    "c1",
		ClientName:   "Acme Corp",
		UpdatedSince: since,
	})

	assert.Equal(t,
		`SELECT id, company_id, client_name, status, updated_at, estimated_amount, title FROM proposals `+
			`WHERE company_id = $1 AND status IN ($2, $3, $4) AND client_name = $5 AND updated_at >= $6 `+
			`ORDER BY updated_at DESC, id`, q)
	assert.Equal(t, []any{"c1", "submitted", "won", "lost", "Acme Corp", since}, args)
}

func TestResolvedQuery_SQLiteCompanyOnly(t *testing.T) {
	q, args := resolvedQuery(sqliteDialect, model.ProposalFilter{CompanyID: "c1"})

	assert.Contains(t, q, `WHERE company_id = ? AND status IN (?, ?, ?) ORDER BY`)
	assert.NotContains(t, q, "client_name =")
	assert.NotContains(t, q, "updated_at >=")
	assert.Equal(t, []any{"c1", "submitted", "won", "lost"}, args)
}

func TestResolvedQuery_SQLiteSinceIsUnixSeconds(t *testing.T) {
	since := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	_, args := resolvedQuery(sqliteDialect, model.ProposalFilter{CompanyID: "c1", UpdatedSince: since})
	assert.Equal(t, since.Unix(), args[len(args)-1])
}
