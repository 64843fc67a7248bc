package repository

import (
	"context"

	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/query"
)

var widgetColumns = []string{"widget_ulid", "widget_name", "user_ulid", "user_email", "description"}

type WidgetRepository struct {
	q *query.Builder
}

func NewWidgetRepository(b *query.Builder) *WidgetRepository {
	return &WidgetRepository{q: b}
}

func widgetFromRecord(r query.Record) *model.Widget {
	return &model.Widget{
		ID:          r.String("widget_ulid"),
		Name:        r.String("widget_name"),
		OwnerID:     r.String("user_ulid"),
		OwnerEmail:  r.String("user_email"),
		Description: r.String("description"),
	}
}

func (r *WidgetRepository) getOne(ctx context.Context, where query.Criteria) (*model.Widget, error) {
	rec, err := r.q.SelectOne(ctx, query.SelectStmt{
		Table:   query.Widgets,
		Where:   where,
		Columns: widgetColumns,
	})
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return widgetFromRecord(rec), nil
}

// GetByOwner lists the owner's widgets ordered by name.
func (r *WidgetRepository) GetByOwner(ctx context.Context, ownerID string) ([]model.Widget, error) {
	records, err := r.q.Select(ctx, query.SelectStmt{
		Table:   query.Widgets,
		Where:   query.Criteria{query.F("user_ulid", ownerID)},
		OrderBy: []string{"widget_name"},
		Columns: widgetColumns,
	})
	if err != nil {
		return nil, err
	}

	widgets := make([]model.Widget, 0, len(records))
	for _, rec := range records {
		widgets = append(widgets, *widgetFromRecord(rec))
	}
	return widgets, nil
}

func (r *WidgetRepository) GetByID(ctx context.Context, id string) (*model.Widget, error) {
	return r.getOne(ctx, query.Criteria{query.F("widget_ulid", id)})
}

// GetByOwnerAndName finds the owner's widget called name.
func (r *WidgetRepository) GetByOwnerAndName(ctx context.Context, ownerID, name string) (*model.Widget, error) {
	return r.getOne(ctx, query.Criteria{
		query.F("user_ulid", ownerID),
		query.F("widget_name", name),
	})
}

// OwnerOf returns the owner id of a widget, or "" when it does not exist.
func (r *WidgetRepository) OwnerOf(ctx context.Context, widgetID string) (string, error) {
	rec, err := r.q.SelectOne(ctx, query.SelectStmt{
		Table:   query.Widgets,
		Where:   query.Criteria{query.F("widget_ulid", widgetID)},
		Columns: []string{"user_ulid"},
	})
	if absent(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.String("user_ulid"), nil
}

// Insert stores w and returns it with its new id.
func (r *WidgetRepository) Insert(ctx context.Context, w model.Widget) (*model.Widget, error) {
	existing, err := r.GetByOwnerAndName(ctx, w.OwnerID, w.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWidgetNameTaken
	}

	values := query.Values{
		query.F("widget_name", w.Name),
		query.F("user_ulid", w.OwnerID),
		query.F("user_email", w.OwnerEmail),
		query.F("description", w.Description),
	}
	if w.ID != "" {
		values = append(values, query.F("widget_ulid", w.ID))
	}

	w.ID, err = r.q.Insert(ctx, query.Widgets, values)
	if query.IsConflict(err) {
		return nil, ErrWidgetNameTaken
	}
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// Update renames/re-describes w. Only the owner's row can match, so a
// foreign widget id reports false.
func (r *WidgetRepository) Update(ctx context.Context, w model.Widget) (bool, error) {
	existing, err := r.GetByOwnerAndName(ctx, w.OwnerID, w.Name)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.ID != w.ID {
		return false, ErrWidgetNameTaken
	}

	n, err := r.q.Update(ctx, query.Widgets,
		query.Criteria{
			query.F("widget_ulid", w.ID),
			query.F("user_ulid", w.OwnerID),
		},
		query.Values{
			query.F("widget_name", w.Name),
			query.F("description", w.Description),
		},
	)
	if query.IsConflict(err) {
		return false, ErrWidgetNameTaken
	}
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Delete removes the owner's widget. It reports false when nothing matched.
func (r *WidgetRepository) Delete(ctx context.Context, ownerID, widgetID string) (bool, error) {
	n, err := r.q.Delete(ctx, query.Widgets, query.Criteria{
		query.F("widget_ulid", widgetID),
		query.F("user_ulid", ownerID),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
