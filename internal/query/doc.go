// Package query builds and executes parameterized SQL for the application's
// tables.
//
// Every statement is assembled here, so there is exactly one place where
// values are turned into placeholders:
//
//   - identifiers (table, columns, ordering) come from the package-level
//     Table values and are checked against each table's allow-list
//   - values are always bound positionally, never formatted into SQL text
//   - the bind order is the clause order (Criteria and Values are slices)
//
// Rendering is pure (RenderSelect, RenderInsert, RenderUpdate, RenderDelete)
// and execution goes through an Executor, so the same statements run against
// PostgreSQL (pgxpool) and SQLite (database/sql).
package query
