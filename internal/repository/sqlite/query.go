package sqlite

import (
	"strings"
)

// QueryBuilder assembles a statement from a base clause plus AND-ed
// conditions. It satisfies tenancy.Filter so tenant scoping is applied
// through the same path as every other predicate.
type QueryBuilder struct {
	base       string
	args       []any
	conditions []string
	orderBy    string
	limit      int
}

// NewQueryBuilder starts a statement. args bind placeholders in base.
func NewQueryBuilder(base string, args ...any) *QueryBuilder {
	return &QueryBuilder{base: strings.TrimSpace(base), args: args}
}

// Where adds a condition joined with AND.
func (b *QueryBuilder) Where(condition string, args ...any) {
	b.conditions = append(b.conditions, condition)
	b.args = append(b.args, args...)
}

// OrderBy sets the ORDER BY clause.
func (b *QueryBuilder) OrderBy(clause string) *QueryBuilder {
	b.orderBy = clause
	return b
}

// Limit caps the number of returned rows; zero means unlimited.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.limit = n
	return b
}

// Build returns the final SQL and its bound arguments.
func (b *QueryBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(b.base)
	if len(b.conditions) > 0 {
		sb.WriteString(" WHERE ")
		for i, c := range b.conditions {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString("(")
			sb.WriteString(c)
			sb.WriteString(")")
		}
	}
	args := b.args
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(append([]any{}, args...), b.limit)
	}
	return sb.String(), args
}
