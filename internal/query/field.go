package query

import "fmt"

// Field is one column/value pair.
type Field struct {
	Column string
	Value  any
}

// F is shorthand for Field{Column: column, Value: value}.
func F(column string, value any) Field {
	return Field{Column: column, Value: value}
}

// Criteria is an AND-joined WHERE clause. An empty Criteria means no filter.
type Criteria []Field

// Values are the column assignments of an INSERT or UPDATE, in order.
type Values []Field

// Lookup returns the value assigned to column, if any.
func (v Values) Lookup(column string) (any, bool) {
	for _, f := range v {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// MatchMode selects the comparison used by Criteria in a SELECT.
type MatchMode int

const (
	MatchExact MatchMode = iota // col = ?
	MatchLike                   // col LIKE ?
)

func (m MatchMode) operator() string {
	if m == MatchLike {
		return "LIKE"
	}
	return "="
}

// Dialect is the placeholder style of the target store.
type Dialect int

const (
	Postgres Dialect = iota // $1, $2, ...
	SQLite                  // ?
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// placeholder returns the n-th (1-based) bind marker.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SelectStmt describes a SELECT. Columns is the projection and also the
// field order of every returned Record. Descending applies to every
// OrderBy column. A zero Limit means no limit.
type SelectStmt struct {
	Table      Table
	Where      Criteria
	OrderBy    []string
	Descending bool
	Limit      int
	Columns    []string
	Match      MatchMode
}

// Statement is rendered SQL with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}
