package query

import "slices"

// KeyPolicy decides where a table's primary key value comes from.
type KeyPolicy int

const (
	// SequentialKey is assigned by the store and read back with RETURNING.
	SequentialKey KeyPolicy = iota
	// GeneratedULIDKey is generated by the Builder before the insert, unless
	// the caller already supplied one.
	GeneratedULIDKey
	// NaturalKey must always be supplied by the caller.
	NaturalKey
)

func (p KeyPolicy) String() string {
	switch p {
	case SequentialKey:
		return "sequential"
	case GeneratedULIDKey:
		return "ulid"
	case NaturalKey:
		return "natural"
	default:
		return "unknown"
	}
}

// Table describes one table: its name, key column, key policy and the
// columns statements may reference. Tables can only be declared inside this
// package, so referencing an unknown table does not compile.
type Table struct {
	name    string
	key     string
	policy  KeyPolicy
	columns []string
}

// Known tables.
var (
	Users = Table{
		name:   "users",
		key:    "user_ulid",
		policy: GeneratedULIDKey,
		columns: []string{
			"user_ulid", "email", "display_email", "password",
			"full_name", "phone", "status", "pref_show_page_help",
		},
	}

	Widgets = Table{
		name:   "widgets",
		key:    "widget_ulid",
		policy: GeneratedULIDKey,
		columns: []string{
			"widget_ulid", "widget_name", "user_ulid", "user_email", "description",
		},
	}

	Things = Table{
		name:    "things",
		key:     "key",
		policy:  NaturalKey,
		columns: []string{"key", "value"},
	}

	SignIns = Table{
		name:    "sign_in_attempts",
		key:     "attempt_id",
		policy:  SequentialKey,
		columns: []string{"attempt_id", "email", "succeeded", "attempted_at"},
	}
)

func (t Table) Name() string        { return t.name }
func (t Table) Key() string         { return t.key }
func (t Table) Policy() KeyPolicy   { return t.policy }
func (t Table) Columns() []string   { return slices.Clone(t.columns) }
func (t Table) has(col string) bool { return slices.Contains(t.columns, col) }

// valid reports whether t was declared in this package (the zero Table is not).
func (t Table) valid() bool {
	return t.name != "" && t.key != "" && t.has(t.key)
}
