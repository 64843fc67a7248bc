package query

import (
	"strings"
)

// binder hands out placeholders and collects arguments together, so the
// n-th placeholder in the SQL text always corresponds to Args[n-1].
type binder struct {
	dialect Dialect
	args    []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

func configErr(t Table, column, reason string) *ConfigurationError {
	return &ConfigurationError{Table: t.name, Column: column, Reason: reason}
}

func checkTable(t Table) error {
	if !t.valid() {
		return configErr(t, "", "unknown table")
	}
	return nil
}

// checkColumns verifies every column is allowed on t and appears only once.
func checkColumns(t Table, what string, columns ...string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if !t.has(col) {
			return configErr(t, col, "unknown "+what+" column")
		}
		if _, dup := seen[col]; dup {
			return configErr(t, col, "duplicate "+what+" column")
		}
		seen[col] = struct{}{}
	}
	return nil
}

func fieldColumns(fields []Field) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return cols
}

// writeWhere appends " WHERE a = ? AND b = ?" for non-empty criteria.
func writeWhere(sb *strings.Builder, b *binder, where Criteria, mode MatchMode) {
	if len(where) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	for i, f := range where {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(f.Column)
		sb.WriteByte(' ')
		sb.WriteString(mode.operator())
		sb.WriteByte(' ')
		sb.WriteString(b.bind(f.Value))
	}
}

// RenderSelect renders
//
//	SELECT <columns> FROM <table> [WHERE ...] [ORDER BY ...]
//
// An empty Where selects every row.
func RenderSelect(d Dialect, s SelectStmt) (Statement, error) {
	t := s.Table
	if err := checkTable(t); err != nil {
		return Statement{}, err
	}
	if len(s.Columns) == 0 {
		return Statement{}, configErr(t, "", "empty projection")
	}
	if err := checkColumns(t, "projection", s.Columns...); err != nil {
		return Statement{}, err
	}
	if err := checkColumns(t, "criteria", fieldColumns(s.Where)...); err != nil {
		return Statement{}, err
	}
	if err := checkColumns(t, "ordering", s.OrderBy...); err != nil {
		return Statement{}, err
	}
	if s.Limit < 0 {
		return Statement{}, configErr(t, "", "negative limit")
	}
	if s.Descending && len(s.OrderBy) == 0 {
		return Statement{}, configErr(t, "", "descending without ordering")
	}

	b := &binder{dialect: d}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(s.Columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(t.name)
	writeWhere(&sb, b, s.Where, s.Match)
	if len(s.OrderBy) > 0 {
		sep := ", "
		if s.Descending {
			sep = " DESC, "
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(s.OrderBy, sep))
		if s.Descending {
			sb.WriteString(" DESC")
		}
	}
	if s.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.bind(s.Limit))
	}

	return Statement{SQL: sb.String(), Args: b.args}, nil
}

// RenderInsert renders
//
//	INSERT INTO <table> (<columns>) VALUES (<placeholders>)
//
// with columns and placeholders produced in the same loop. When the key
// column is absent from a SequentialKey table, " RETURNING <key>" is added.
func RenderInsert(d Dialect, t Table, values Values) (Statement, error) {
	if err := checkTable(t); err != nil {
		return Statement{}, err
	}
	if len(values) == 0 {
		return Statement{}, &ValidationError{Table: t.name, Reason: "no values to insert"}
	}
	if err := checkColumns(t, "insert", fieldColumns(values)...); err != nil {
		return Statement{}, err
	}

	b := &binder{dialect: d}
	cols := make([]string, 0, len(values))
	marks := make([]string, 0, len(values))
	for _, f := range values {
		cols = append(cols, f.Column)
		marks = append(marks, b.bind(f.Value))
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(t.name)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(marks, ", "))
	sb.WriteString(")")
	if _, hasKey := values.Lookup(t.key); t.policy == SequentialKey && !hasKey {
		sb.WriteString(" RETURNING ")
		sb.WriteString(t.key)
	}

	return Statement{SQL: sb.String(), Args: b.args}, nil
}

// RenderUpdate renders
//
//	UPDATE <table> SET a = ?, b = ? WHERE ...
//
// SET values are bound before WHERE values. Empty criteria is rejected with
// ErrUnconditional.
func RenderUpdate(d Dialect, t Table, where Criteria, set Values) (Statement, error) {
	return renderUpdate(d, t, where, set, false)
}

// RenderDelete renders
//
//	DELETE FROM <table> WHERE ...
//
// Empty criteria is rejected with ErrUnconditional.
func RenderDelete(d Dialect, t Table, where Criteria) (Statement, error) {
	return renderDelete(d, t, where, false)
}

func unconditional(t Table) *ConfigurationError {
	return &ConfigurationError{Table: t.name, Reason: "no criteria", Err: ErrUnconditional}
}

func renderUpdate(d Dialect, t Table, where Criteria, set Values, all bool) (Statement, error) {
	if err := checkTable(t); err != nil {
		return Statement{}, err
	}
	if len(where) == 0 && !all {
		return Statement{}, unconditional(t)
	}
	if len(set) == 0 {
		return Statement{}, &ValidationError{Table: t.name, Reason: "no values to update"}
	}
	if err := checkColumns(t, "update", fieldColumns(set)...); err != nil {
		return Statement{}, err
	}
	if err := checkColumns(t, "criteria", fieldColumns(where)...); err != nil {
		return Statement{}, err
	}

	b := &binder{dialect: d}
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(t.name)
	sb.WriteString(" SET ")
	for i, f := range set {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Column)
		sb.WriteString(" = ")
		sb.WriteString(b.bind(f.Value))
	}
	writeWhere(&sb, b, where, MatchExact)

	return Statement{SQL: sb.String(), Args: b.args}, nil
}

func renderDelete(d Dialect, t Table, where Criteria, all bool) (Statement, error) {
	if err := checkTable(t); err != nil {
		return Statement{}, err
	}
	if len(where) == 0 && !all {
		return Statement{}, unconditional(t)
	}
	if err := checkColumns(t, "criteria", fieldColumns(where)...); err != nil {
		return Statement{}, err
	}

	b := &binder{dialect: d}
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(t.name)
	writeWhere(&sb, b, where, MatchExact)

	return Statement{SQL: sb.String(), Args: b.args}, nil
}
