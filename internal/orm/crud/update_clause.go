package crud

import (
	"fmt"
	"strings"
)

// SetClause accumulates the column assignments of a partial UPDATE.
// Columns are emitted in the order they were added, placeholders are
// numbered from 1.
type SetClause struct {
	columns []string
	args    []interface{}
}

// Set adds "column = $n" unconditionally
func (s *SetClause) Set(column string, value interface{}) {
	s.args = append(s.args, value)
	s.columns = append(s.columns, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

// Len returns the number of assignments
func (s *SetClause) Len() int {
	return len(s.columns)
}

// Build renders "UPDATE table SET ... WHERE <key> = $n" and appends the key
// argument. The caller supplies the RETURNING list, if any.
func (s *SetClause) Build(table, keyColumn string, key interface{}) (string, []interface{}) {
	args := append(append([]interface{}{}, s.args...), key)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(s.columns, ", "), keyColumn, len(args))
	return query, args
}

// SetIf adds the assignment only when ptr is non-nil. The dereferenced value
// is bound.
func SetIf[T any](s *SetClause, column string, ptr *T) {
	if ptr != nil {
		s.Set(column, *ptr)
	}
}
