package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumrocket/quantumrocket/internal/errs"
)

// sqliteError runs stmt against a small in-memory schema and returns the
// driver error it produces.
func sqliteError(t *testing.T, stmts ...string) error {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE users (user_ulid TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE);
		CREATE TABLE widgets (
			widget_ulid TEXT PRIMARY KEY,
			widget_name TEXT NOT NULL CHECK (widget_name <> ''),
			user_ulid TEXT NOT NULL,
			CONSTRAINT widgets_user_ulid_widget_name_key UNIQUE (user_ulid, widget_name)
		);
		INSERT INTO users VALUES ('u1', 'a@b.com');
		INSERT INTO widgets VALUES ('w1', 'gizmo', 'u1');`)
	require.NoError(t, err)

	for _, stmt := range stmts {
		if _, err = db.Exec(stmt); err != nil {
			return err
		}
	}
	t.Fatal("expected a driver error")
	return nil
}

func TestClassify_SQLiteUnique(t *testing.T) {
	err := sqliteError(t, "INSERT INTO users VALUES ('u2', 'a@b.com')")

	sqlErr, ok := Classify(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, UniqueViolation, sqlErr.Code)
	assert.Equal(t, "users", sqlErr.TableName)
	assert.Equal(t, "email", sqlErr.ColumnName)
	assert.Equal(t, "users_email_key", sqlErr.ConstraintName)
}

func TestClassify_SQLiteCompositeUnique(t *testing.T) {
	err := sqliteError(t, "INSERT INTO widgets VALUES ('w2', 'gizmo', 'u1')")

	sqlErr, ok := Classify(err)
	require.True(t, ok)
	assert.Equal(t, UniqueViolation, sqlErr.Code)
	assert.Equal(t, "widgets_user_ulid_widget_name_key", sqlErr.ConstraintName)
}

func TestClassify_SQLiteNotNullAndCheck(t *testing.T) {
	err := sqliteError(t, "INSERT INTO users (user_ulid) VALUES ('u3')")
	assert.Equal(t, NotNullViolation, ErrCode(err))

	err = sqliteError(t, "INSERT INTO widgets VALUES ('w3', '', 'u1')")
	assert.Equal(t, CheckViolation, ErrCode(err))
}

func TestClassify_Postgres(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		TableName:      "widgets",
		ConstraintName: "widgets_user_ulid_widget_name_key",
	}

	sqlErr, ok := Classify(fmt.Errorf("insert: %w", pgErr))
	require.True(t, ok)
	assert.Equal(t, UniqueViolation, sqlErr.Code)
	assert.Equal(t, SeverityError, sqlErr.Severity)
	assert.Equal(t, "23505", sqlErr.DatabaseCode)
	assert.ErrorIs(t, sqlErr, pgErr)
}

func TestClassify_NonDriverError(t *testing.T) {
	_, ok := Classify(errors.New("boom"))
	assert.False(t, ok)
	assert.Equal(t, Other, ErrCode(nil))
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, ForeignKeyViolation, MapCode("23503"))
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, CheckViolation, MapCode("23514"))
	assert.Equal(t, QueryCanceled, MapCode("57014"))
	assert.Equal(t, ConnectionFailure, MapCode("08006"))
	assert.Equal(t, Other, MapCode("42P01"))
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("users", "users_email_key"))
	assert.Equal(t, "widget_name", extractColumnForUniqueViolation("widgets", "widgets_user_ulid_widget_name_key"))
	assert.Equal(t, "email", extractColumnForUniqueViolation("users", "unique_users_email"))
	assert.Equal(t, "", extractColumnForUniqueViolation("users", "users_pkey"))
}

func TestHandleError(t *testing.T) {
	t.Run("unique violation is a friendly 400", func(t *testing.T) {
		err := HandleError(sqliteError(t, "INSERT INTO widgets VALUES ('w2', 'gizmo', 'u1')"))

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "WIDGET_ALREADY_EXISTS", httpErr.Code)
		assert.Equal(t, "A Widget with this Widget Name already exists", httpErr.Message)
	})

	t.Run("not found names the table", func(t *testing.T) {
		err := HandleError(fmt.Errorf("table:widgets: %w", sql.ErrNoRows))

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, "Widget not found", httpErr.Message)
	})

	t.Run("pgx no rows", func(t *testing.T) {
		var httpErr *errs.HTTPError
		require.ErrorAs(t, HandleError(pgx.ErrNoRows), &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
	})

	t.Run("anything else is a generic 500", func(t *testing.T) {
		err := HandleError(errors.New(`executing "SELECT secret FROM users": boom`))

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.NotContains(t, httpErr.Message, "SELECT")
	})

	t.Run("http errors pass through", func(t *testing.T) {
		in := errs.NewForbiddenError("nope", false)
		assert.Same(t, in, HandleError(in))
	})
}
