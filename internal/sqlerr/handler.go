package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/quantumrocket/quantumrocket/internal/errs"
)

// Classify walks the error chain looking for a driver error and returns its
// normalized form.
//
// Supported drivers:
//   - pgx (*pgconn.PgError)
//   - go-sqlite3 (sqlite3.Error)
//
// An already-normalized *Error anywhere in the chain is returned as is.
func Classify(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr), true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return ConvertSQLiteError(liteErr), true
	}

	return nil, false
}

// ErrCode reports the mapped sqlerr.Code for a given error, or Other when
// the chain holds no driver error.
func ErrCode(err error) Code {
	if sqlErr, ok := Classify(err); ok {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into our custom sqlerr.Error.
//
// SQLSTATE and severity are mapped onto our enums for easier switching; the
// original SQLSTATE is kept in DatabaseCode.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode creates "application error codes" from DB errors.
//
// Output format is <DOMAIN>_<ACTION>, e.g.
//
//	widgets + UniqueViolation => WIDGET_ALREADY_EXISTS
//
// These codes are meant for machines (frontend logic), not humans.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces an end-user-facing error message.
// It never includes the statement text or the driver message.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced later if the column can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", getEntityName(sqlErr.TableName, ""))

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers an entity name from table/column data.
//
// Priority:
//  1. a reference column ("user_ulid", "user_id") names the referenced entity
//  2. the table name, naively singularized
//  3. "record"
func getEntityName(tableName, columnName string) string {
	lower := strings.ToLower(columnName)
	for _, suffix := range []string{"_ulid", "_id"} {
		if columnName != "" && strings.HasSuffix(lower, suffix) {
			return humanizeText(strings.TrimSuffix(lower, suffix))
		}
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case, e.g. "widget_name" -> "Widget Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the offending column from a unique
// constraint name.
//
// Supported conventions:
//
//	unique_<table>_<column>          unique_users_email -> "email"
//	<table>_<columns>_key|ukey       users_email_key -> "email"
//
// For composite constraints scoped by an owner reference the column after
// the reference is returned:
//
//	widgets_user_ulid_widget_name_key -> "widget_name"
func extractColumnForUniqueViolation(tableName, constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	columns := constraintName
	if tableName != "" {
		columns = strings.TrimPrefix(columns, tableName+"_")
	}
	switch {
	case strings.HasSuffix(columns, "_ukey"):
		columns = strings.TrimSuffix(columns, "_ukey")
	case strings.HasSuffix(columns, "_key"):
		columns = strings.TrimSuffix(columns, "_key")
	default:
		return ""
	}

	for _, ref := range []string{"_ulid_", "_id_"} {
		if i := strings.LastIndex(columns, ref); i >= 0 {
			return columns[i+len(ref):]
		}
	}

	return columns
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - *errs.HTTPError: returned unchanged
//   - driver errors: mapped to a 400 (constraint violations) or a generic 500
//   - ErrNoRows (pgx, database/sql, or anything wrapping them): 404
//   - anything else: generic 500
//
// Statement text and driver messages never leave this function; callers log
// the original error themselves.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if sqlErr, ok := Classify(err); ok {
		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, false, &errorCode, nil, nil)

		case UniqueViolation:
			columnName := extractColumnForUniqueViolation(sqlErr.TableName, sqlErr.ConstraintName)
			if columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case CheckViolation:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		// The query builder prefixes not-found errors with "table:<name>:".
		errMsg := err.Error()
		tablePrefix := "table:"
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			entityName := getEntityName(table, "")
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
