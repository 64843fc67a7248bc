package sqlerr

import (
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ConvertSQLiteError converts a go-sqlite3 error into our custom sqlerr.Error.
//
// SQLite does not report table/column metadata separately, it only embeds
// them in the message, e.g.
//
//	UNIQUE constraint failed: widgets.user_ulid, widgets.widget_name
//
// so they are parsed out of the message. The constraint name is synthesized
// in the PostgreSQL "<table>_<columns>_key" style so callers can treat both
// drivers the same way.
func ConvertSQLiteError(src sqlite3.Error) *Error {
	e := &Error{
		Code:         mapSQLiteCode(src),
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(int(src.ExtendedCode)),
		Message:      src.Error(),
		driverErr:    src,
	}

	table, columns := parseSQLiteConstraintTarget(e.Message)
	e.TableName = table
	if len(columns) == 1 {
		e.ColumnName = columns[0]
	}
	if table != "" && len(columns) > 0 && (e.Code == UniqueViolation || e.Code == NotNullViolation) {
		e.ConstraintName = table + "_" + strings.Join(columns, "_") + "_key"
	}

	return e
}

func mapSQLiteCode(src sqlite3.Error) Code {
	switch src.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return UniqueViolation
	case sqlite3.ErrConstraintNotNull:
		return NotNullViolation
	case sqlite3.ErrConstraintForeignKey:
		return ForeignKeyViolation
	case sqlite3.ErrConstraintCheck:
		return CheckViolation
	}

	switch src.Code {
	case sqlite3.ErrInterrupt:
		return QueryCanceled
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		return ConnectionFailure
	}

	return Other
}

// parseSQLiteConstraintTarget extracts "table" and ["col", ...] from
// "<KIND> constraint failed: table.col, table.col2".
func parseSQLiteConstraintTarget(msg string) (string, []string) {
	_, target, ok := strings.Cut(msg, "constraint failed: ")
	if !ok {
		return "", nil
	}

	var table string
	var columns []string
	for _, part := range strings.Split(target, ",") {
		t, col, found := strings.Cut(strings.TrimSpace(part), ".")
		if !found {
			continue
		}
		table = t
		columns = append(columns, col)
	}

	return table, columns
}
