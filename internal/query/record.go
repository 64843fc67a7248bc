package query

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Record is one row rehydrated against a projection. Field order is the
// projection order.
type Record struct {
	columns []string
	values  map[string]any
}

// newRecord zips row with columns. The store returns columns in SELECT order,
// so row[i] belongs to columns[i].
func newRecord(columns []string, row []any) (Record, error) {
	if len(row) != len(columns) {
		return Record{}, fmt.Errorf("row has %d values, projection has %d columns", len(row), len(columns))
	}

	values := make(map[string]any, len(columns))
	for i, col := range columns {
		v := row[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		values[col] = v
	}

	return Record{columns: columns, values: values}, nil
}

// Columns returns the field names in projection order.
func (r Record) Columns() []string { return slices.Clone(r.columns) }

// Len is the number of fields.
func (r Record) Len() int { return len(r.columns) }

// Get returns the raw value of col.
func (r Record) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// String returns col as a string. NULL and missing columns are "".
func (r Record) String(col string) string {
	switch v := r.values[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns col as an int64, or 0 when it is NULL or not numeric.
func (r Record) Int64(col string) int64 {
	switch v := r.values[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Map returns a copy of the fields as a plain map.
func (r Record) Map() map[string]any {
	return maps.Clone(r.values)
}
