package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/quantumrocket/quantumrocket/internal/query"
)

// SignInRepository is the sign-in audit trail.
type SignInRepository struct {
	q *query.Builder
}

func NewSignInRepository(b *query.Builder) *SignInRepository {
	return &SignInRepository{q: b}
}

// Record stores one sign-in attempt and returns its store-assigned id.
func (r *SignInRepository) Record(ctx context.Context, email string, succeeded bool, at time.Time) (int64, error) {
	id, err := r.q.Insert(ctx, query.SignIns, query.Values{
		query.F("email", normalizeEmail(email)),
		query.F("succeeded", yesNo(succeeded)),
		query.F("attempted_at", at.UTC().Format(time.RFC3339)),
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(id, 10, 64)
}

// CountFailures returns the failed attempts for email since the given time,
// capped at limit. At most limit rows are read, newest first.
func (r *SignInRepository) CountFailures(ctx context.Context, email string, since time.Time, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	records, err := r.q.Select(ctx, query.SelectStmt{
		Table: query.SignIns,
		Where: query.Criteria{
			query.F("email", normalizeEmail(email)),
			query.F("succeeded", "no"),
		},
		OrderBy:    []string{"attempted_at"},
		Descending: true,
		Limit:      limit,
		Columns:    []string{"attempted_at"},
	})
	if err != nil {
		return 0, err
	}

	cutoff := since.UTC().Format(time.RFC3339)
	n := 0
	for _, rec := range records {
		// RFC 3339 timestamps in UTC sort lexically.
		if rec.String("attempted_at") < cutoff {
			break
		}
		n++
	}
	return n, nil
}
