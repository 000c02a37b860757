package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/proposal-cli/internal/model"
)

const proposalColumns = `id, company_id, client_name, status, updated_at, estimated_amount, title`

// dialect captures the differences between the two SQL backends.
type dialect struct {
	placeholder func(n int) string
	timeArg     func(t time.Time) any
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	timeArg:     func(t time.Time) any { return t },
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	timeArg:     func(t time.Time) any { return t.UTC().Unix() },
}

// resolvedQuery builds the SELECT for ListResolvedProposals. Filters with
// zero values are omitted.
func resolvedQuery(d dialect, f model.ProposalFilter) (string, []any) {
	args := []any{f.CompanyID}
	next := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + proposalColumns + ` FROM proposals WHERE company_id = ` + d.placeholder(1))

	statuses := model.ResolvedStatusStrings()
	marks := make([]string, len(statuses))
	for i, s := range statuses {
		marks[i] = next(s)
	}
	b.WriteString(` AND status IN (` + strings.Join(marks, ", ") + `)`)

	if f.ClientName != "" {
		b.WriteString(` AND client_name = ` + next(f.ClientName))
	}
	if !f.UpdatedSince.IsZero() {
		b.WriteString(` AND updated_at >= ` + next(d.timeArg(f.UpdatedSince)))
	}
	b.WriteString(` ORDER BY updated_at DESC, id`)

	return b.String(), args
}
