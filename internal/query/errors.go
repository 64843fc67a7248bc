package query

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by SelectOne when no row matched.
	// It wraps sql.ErrNoRows so HTTP error mapping treats it as a 404.
	ErrNotFound = fmt.Errorf("query: no matching row: %w", sql.ErrNoRows)

	// ErrUnconditional is returned when an UPDATE or DELETE has no criteria.
	// Use UpdateAll or DeleteAll to affect every row.
	ErrUnconditional = errors.New("query: statement without criteria requires explicit opt-in")
)

// ValidationError reports input rejected before any SQL was sent.
type ValidationError struct {
	Table  string
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("query: invalid input for %s.%s: %s", e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("query: invalid input for %s: %s", e.Table, e.Reason)
}

// ConflictError is a uniqueness violation reported by the store.
type ConflictError struct {
	Table      string
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("query: conflict on %s (%s)", e.Table, e.Constraint)
	}
	return fmt.Sprintf("query: conflict on %s", e.Table)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// QueryError is any other execution failure. Statement is for logs only.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query: executing %q: %v", e.Statement, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ConfigurationError is a programming error: an unknown table or column, a
// duplicate column, or an unconditional write without opt-in.
type ConfigurationError struct {
	Table  string
	Column string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "query: misconfigured statement"
	if e.Table != "" {
		msg += " on " + e.Table
	}
	if e.Column != "" {
		msg += " column " + e.Column
	}
	return msg + ": " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
