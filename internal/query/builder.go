package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/sqlerr"
)

// DefaultStatementTimeout bounds a statement when no timeout is configured.
const DefaultStatementTimeout = 5 * time.Second

// Executor runs rendered statements against a store.
//
// Query calls scan once per row with the row's values in SELECT order and
// must consume (and close) the rows before returning, so the underlying
// connection is released on every path.
type Executor interface {
	Dialect() Dialect
	Query(ctx context.Context, sql string, args []any, scan func(values []any) error) error
	Exec(ctx context.Context, sql string, args []any) (int64, error)
}

// Builder renders and executes statements. It never retries.
type Builder struct {
	exec    Executor
	log     *zerolog.Logger
	timeout time.Duration
	newID   func() string
}

// NewBuilder returns a Builder over exec. A non-positive timeout falls back to
// DefaultStatementTimeout.
func NewBuilder(exec Executor, logger *zerolog.Logger, timeout time.Duration) *Builder {
	if timeout <= 0 {
		timeout = DefaultStatementTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Builder{
		exec:    exec,
		log:     logger,
		timeout: timeout,
		newID:   NewID,
	}
}

// Select returns every row matching s, in s.Columns order. No match is an
// empty, non-nil slice.
func (b *Builder) Select(ctx context.Context, s SelectStmt) ([]Record, error) {
	stmt, err := RenderSelect(b.exec.Dialect(), s)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	err = b.query(ctx, s.Table, stmt, func(row []any) error {
		rec, err := newRecord(s.Columns, row)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// SelectOne returns the first row matching s, or an error wrapping
// ErrNotFound. Which row is first is only defined when s.OrderBy is set.
func (b *Builder) SelectOne(ctx context.Context, s SelectStmt) (Record, error) {
	records, err := b.Select(ctx, s)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("table:%s: %w", s.Table.name, ErrNotFound)
	}
	return records[0], nil
}

// Insert adds a row to t and returns its key.
//
// A key supplied in values is used verbatim. Otherwise GeneratedULIDKey
// tables get a new ULID, SequentialKey tables get the store-assigned value,
// and NaturalKey tables fail with a ValidationError.
func (b *Builder) Insert(ctx context.Context, t Table, values Values) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}

	// Key first, then the caller's columns in their order.
	keyValue, hasKey := values.Lookup(t.key)
	row := make(Values, 0, len(values)+1)
	switch {
	case hasKey:
		row = append(row, F(t.key, keyValue))
	case t.policy == GeneratedULIDKey:
		keyValue = b.newID()
		row = append(row, F(t.key, keyValue))
	case t.policy == NaturalKey:
		return "", &ValidationError{Table: t.name, Column: t.key, Reason: "key is required"}
	}
	for _, f := range values {
		if f.Column != t.key {
			row = append(row, f)
		}
	}

	stmt, err := RenderInsert(b.exec.Dialect(), t, row)
	if err != nil {
		return "", err
	}

	if t.policy == SequentialKey && !hasKey {
		var assigned any
		err = b.query(ctx, t, stmt, func(r []any) error {
			assigned = r[0]
			return nil
		})
		if err != nil {
			return "", err
		}
		if assigned == nil {
			return "", &QueryError{Statement: stmt.SQL, Err: errors.New("no key returned")}
		}
		return fmt.Sprint(assigned), nil
	}

	if _, err := b.execute(ctx, t, stmt); err != nil {
		return "", err
	}
	return fmt.Sprint(keyValue), nil
}

// Update sets values on the rows matching where and returns the number of
// rows affected. Empty criteria is rejected; see UpdateAll.
func (b *Builder) Update(ctx context.Context, t Table, where Criteria, values Values) (int64, error) {
	stmt, err := RenderUpdate(b.exec.Dialect(), t, where, values)
	if err != nil {
		return 0, err
	}
	return b.execute(ctx, t, stmt)
}

// UpdateAll sets values on every row of t.
func (b *Builder) UpdateAll(ctx context.Context, t Table, values Values) (int64, error) {
	stmt, err := renderUpdate(b.exec.Dialect(), t, nil, values, true)
	if err != nil {
		return 0, err
	}
	b.log.Warn().Str("table", t.name).Msg("unconditional update")
	return b.execute(ctx, t, stmt)
}

// Delete removes the rows matching where and returns the number of rows
// affected. Empty criteria is rejected; see DeleteAll.
func (b *Builder) Delete(ctx context.Context, t Table, where Criteria) (int64, error) {
	stmt, err := RenderDelete(b.exec.Dialect(), t, where)
	if err != nil {
		return 0, err
	}
	return b.execute(ctx, t, stmt)
}

// DeleteAll removes every row of t.
func (b *Builder) DeleteAll(ctx context.Context, t Table) (int64, error) {
	stmt, err := renderDelete(b.exec.Dialect(), t, nil, true)
	if err != nil {
		return 0, err
	}
	b.log.Warn().Str("table", t.name).Msg("unconditional delete")
	return b.execute(ctx, t, stmt)
}

func (b *Builder) query(ctx context.Context, t Table, stmt Statement, scan func([]any) error) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	b.trace(t, stmt)
	if err := b.exec.Query(ctx, stmt.SQL, stmt.Args, scan); err != nil {
		return b.fail(t, stmt, err)
	}
	return nil
}

func (b *Builder) execute(ctx context.Context, t Table, stmt Statement) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	b.trace(t, stmt)
	n, err := b.exec.Exec(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return 0, b.fail(t, stmt, err)
	}
	return n, nil
}

func (b *Builder) trace(t Table, stmt Statement) {
	b.log.Debug().
		Str("table", t.name).
		Str("sql", stmt.SQL).
		Int("args", len(stmt.Args)).
		Msg("executing statement")
}

// fail turns a driver error into a ConflictError or QueryError.
func (b *Builder) fail(t Table, stmt Statement, err error) error {
	if sqlErr, ok := sqlerr.Classify(err); ok && sqlErr.Code == sqlerr.UniqueViolation {
		b.log.Debug().
			Str("table", t.name).
			Str("constraint", sqlErr.ConstraintName).
			Msg("unique constraint violated")
		return &ConflictError{Table: t.name, Constraint: sqlErr.ConstraintName, Err: err}
	}

	b.log.Error().
		Err(err).
		Str("table", t.name).
		Str("sql", stmt.SQL).
		Msg("statement failed")
	return &QueryError{Statement: stmt.SQL, Err: err}
}
