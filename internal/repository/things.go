package repository

import (
	"context"

	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/query"
)

var thingColumns = []string{"key", "value"}

// ThingRepository reads the things reference table.
type ThingRepository struct {
	q *query.Builder
}

func NewThingRepository(b *query.Builder) *ThingRepository {
	return &ThingRepository{q: b}
}

func (r *ThingRepository) Get(ctx context.Context, key string) (*model.Thing, error) {
	rec, err := r.q.SelectOne(ctx, query.SelectStmt{
		Table:   query.Things,
		Where:   query.Criteria{query.F("key", key)},
		Columns: thingColumns,
	})
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.Thing{Key: rec.String("key"), Value: rec.String("value")}, nil
}

// GetLike returns the things whose key matches the LIKE pattern, ordered by
// key. The pattern is bound as is; callers add their own wildcards.
// Matching is case-sensitive on both stores.
func (r *ThingRepository) GetLike(ctx context.Context, pattern string) ([]model.Thing, error) {
	records, err := r.q.Select(ctx, query.SelectStmt{
		Table:   query.Things,
		Where:   query.Criteria{query.F("key", pattern)},
		OrderBy: []string{"key"},
		Columns: thingColumns,
		Match:   query.MatchLike,
	})
	if err != nil {
		return nil, err
	}

	things := make([]model.Thing, 0, len(records))
	for _, rec := range records {
		things = append(things, model.Thing{Key: rec.String("key"), Value: rec.String("value")})
	}
	return things, nil
}
