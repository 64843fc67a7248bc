package query_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumrocket/quantumrocket/internal/database"
	"github.com/quantumrocket/quantumrocket/internal/query"
)

func newTestBuilder(t *testing.T) *query.Builder {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "query.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return query.NewBuilder(db, nil, time.Second)
}

func insertOwner(t *testing.T, b *query.Builder, email string) string {
	t.Helper()
	id, err := b.Insert(context.Background(), query.Users, query.Values{
		query.F("email", email),
		query.F("display_email", email),
		query.F("password", "not-a-real-hash"),
	})
	require.NoError(t, err)
	return id
}

func insertWidget(t *testing.T, b *query.Builder, owner, name string) string {
	t.Helper()
	id, err := b.Insert(context.Background(), query.Widgets, query.Values{
		query.F("widget_name", name),
		query.F("user_ulid", owner),
		query.F("user_email", "owner@example.com"),
		query.F("description", "about "+name),
	})
	require.NoError(t, err)
	return id
}

var widgetColumns = []string{"widget_ulid", "widget_name", "user_ulid", "user_email", "description"}

func TestBuilder_InsertThenSelectRoundTrip(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()
	owner := insertOwner(t, b, "owner@example.com")

	id := insertWidget(t, b, owner, "gizmo")
	require.Len(t, id, 26)

	rec, err := b.SelectOne(ctx, query.SelectStmt{
		Table:   query.Widgets,
		Where:   query.Criteria{query.F("widget_ulid", id)},
		Columns: widgetColumns,
	})
	require.NoError(t, err)

	assert.Equal(t, widgetColumns, rec.Columns())
	assert.Equal(t, map[string]any{
		"widget_ulid": id,
		"widget_name": "gizmo",
		"user_ulid":   owner,
		"user_email":  "owner@example.com",
		"description": "about gizmo",
	}, rec.Map())
}

func TestBuilder_InsertUsesSuppliedKey(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()

	id, err := b.Insert(ctx, query.Users, query.Values{
		query.F("email", "known@example.com"),
		query.F("user_ulid", "01HZZZZZZZZZZZZZZZZZZZZZZZ"),
		query.F("display_email", "known@example.com"),
		query.F("password", "x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZZ", id)
}

func TestBuilder_InsertSequentialKey(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()

	values := query.Values{
		query.F("email", "a@b.com"),
		query.F("succeeded", "no"),
		query.F("attempted_at", "2024-01-01T00:00:00Z"),
	}
	first, err := b.Insert(ctx, query.SignIns, values)
	require.NoError(t, err)
	second, err := b.Insert(ctx, query.SignIns, values)
	require.NoError(t, err)

	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)
}

func TestBuilder_InsertNaturalKeyRequired(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Insert(context.Background(), query.Things, query.Values{query.F("value", "v")})
	var valErr *query.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "key", valErr.Column)
}

func TestBuilder_SelectAllReturnsEveryRow(t *testing.T) {
	b := newTestBuilder(t)
	owner := insertOwner(t, b, "owner@example.com")
	for _, name := range []string{"a", "b", "c"} {
		insertWidget(t, b, owner, name)
	}

	records, err := b.Select(context.Background(), query.SelectStmt{
		Table:   query.Widgets,
		Columns: []string{"widget_name"},
	})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestBuilder_SelectEmptyIsNotAnError(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()
	s := query.SelectStmt{
		Table:   query.Widgets,
		Where:   query.Criteria{query.F("widget_ulid", "missing")},
		Columns: widgetColumns,
	}

	records, err := b.Select(ctx, s)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = b.SelectOne(ctx, s)
	assert.ErrorIs(t, err, query.ErrNotFound)
}

func TestBuilder_SelectOrdered(t *testing.T) {
	b := newTestBuilder(t)
	owner := insertOwner(t, b, "owner@example.com")
	for _, name := range []string{"b", "a", "c"} {
		insertWidget(t, b, owner, name)
	}

	records, err := b.Select(context.Background(), query.SelectStmt{
		Table:   query.Widgets,
		Where:   query.Criteria{query.F("user_ulid", owner)},
		OrderBy: []string{"widget_name"},
		Columns: []string{"widget_name"},
	})
	require.NoError(t, err)

	var names []string
	for _, r := range records {
		names = append(names, r.String("widget_name"))
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestBuilder_DuplicateWidgetNameIsConflict(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()
	owner := insertOwner(t, b, "owner@example.com")
	other := insertOwner(t, b, "other@example.com")
	insertWidget(t, b, owner, "gizmo")

	_, err := b.Insert(ctx, query.Widgets, query.Values{
		query.F("widget_name", "gizmo"),
		query.F("user_ulid", owner),
		query.F("user_email", "owner@example.com"),
	})
	var conflict *query.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "widgets", conflict.Table)
	assert.Equal(t, "widgets_user_ulid_widget_name_key", conflict.Constraint)
	assert.True(t, query.IsConflict(err))

	// Same name under another owner is fine.
	insertWidget(t, b, other, "gizmo")
}

func TestBuilder_UnconditionalWritesRequireOptIn(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()
	owner := insertOwner(t, b, "owner@example.com")
	for _, name := range []string{"a", "b", "c"} {
		insertWidget(t, b, owner, name)
	}

	_, err := b.Delete(ctx, query.Widgets, query.Criteria{})
	var cfgErr *query.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, query.ErrUnconditional)

	_, err = b.Update(ctx, query.Widgets, nil, query.Values{query.F("description", "x")})
	assert.ErrorIs(t, err, query.ErrUnconditional)

	records, err := b.Select(ctx, query.SelectStmt{Table: query.Widgets, Columns: []string{"widget_ulid"}})
	require.NoError(t, err)
	assert.Len(t, records, 3, "rejected statements must not touch rows")

	n, err := b.UpdateAll(ctx, query.Widgets, query.Values{query.F("description", "x")})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = b.DeleteAll(ctx, query.Widgets)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestBuilder_UpdateAndDelete(t *testing.T) {
	b := newTestBuilder(t)
	ctx := context.Background()
	owner := insertOwner(t, b, "owner@example.com")
	id := insertWidget(t, b, owner, "gizmo")

	n, err := b.Update(ctx, query.Widgets,
		query.Criteria{query.F("widget_ulid", id)},
		query.Values{query.F("widget_name", "gadget")},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rec, err := b.SelectOne(ctx, query.SelectStmt{
		Table:   query.Widgets,
		Where:   query.Criteria{query.F("widget_ulid", id)},
		Columns: []string{"widget_name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gadget", rec.String("widget_name"))

	n, err = b.Delete(ctx, query.Widgets, query.Criteria{query.F("widget_ulid", id)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBuilder_LikeMatch(t *testing.T) {
	b := newTestBuilder(t)

	records, err := b.Select(context.Background(), query.SelectStmt{
		Table:   query.Things,
		Where:   query.Criteria{query.F("key", "page.%.help")},
		OrderBy: []string{"key"},
		Columns: []string{"key"},
		Match:   query.MatchLike,
	})
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "page.dashboard.help", records[0].String("key"))

	// A quote in the pattern is data, not SQL.
	records, err = b.Select(context.Background(), query.SelectStmt{
		Table:   query.Things,
		Where:   query.Criteria{query.F("key", "x' OR '1'='1")},
		Columns: []string{"key"},
		Match:   query.MatchLike,
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuilder_ExecutionFailureIsQueryError(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "closed.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	b := query.NewBuilder(db, nil, time.Second)
	_, err = b.Select(context.Background(), query.SelectStmt{Table: query.Things, Columns: []string{"key"}})

	var qErr *query.QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, "SELECT key FROM things", qErr.Statement)
	assert.False(t, errors.Is(err, query.ErrNotFound))
}

func TestBuilder_NotNullIsQueryError(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Insert(context.Background(), query.Users, query.Values{query.F("email", "x@y.z")})
	var qErr *query.QueryError
	require.ErrorAs(t, err, &qErr)
	assert.False(t, query.IsConflict(err))
}
