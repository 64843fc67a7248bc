package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/repository"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

var widgetTakenCode = "WIDGET_ALREADY_EXISTS"

// WidgetService manages a user's widgets. Every operation is scoped to the
// acting user; touching someone else's widget is forbidden.
type WidgetService struct {
	logger  *zerolog.Logger
	widgets *repository.WidgetRepository
}

func NewWidgetService(s *server.Server, repos *repository.Repositories) *WidgetService {
	return &WidgetService{logger: s.Logger, widgets: repos.Widgets}
}

func widgetTaken(name string) *errs.HTTPError {
	msg := fmt.Sprintf("You already have a Widget with the name '%s'. Please try a different name as Widget names are unique.", name)
	return errs.NewBadRequestError(msg, false, &widgetTakenCode,
		[]errs.FieldError{{Field: "widget_name", Error: "is already in use"}}, nil)
}

func (w *WidgetService) List(ctx context.Context, userID string) ([]model.Widget, error) {
	return w.widgets.GetByOwner(ctx, userID)
}

// authorize checks that widgetID exists and belongs to userID.
func (w *WidgetService) authorize(ctx context.Context, userID, widgetID string) error {
	owner, err := w.widgets.OwnerOf(ctx, widgetID)
	if err != nil {
		return err
	}
	switch owner {
	case "":
		return errs.NewNotFoundError("Widget not found", false, nil)
	case userID:
		return nil
	default:
		w.logger.Warn().
			Str("user_id", userID).
			Str("widget_id", widgetID).
			Msg("attempt to access another user's widget")
		return errs.NewForbiddenError("You do not have access to this widget", false)
	}
}

func (w *WidgetService) Get(ctx context.Context, userID, widgetID string) (*model.Widget, error) {
	if err := w.authorize(ctx, userID, widgetID); err != nil {
		return nil, err
	}
	widget, err := w.widgets.GetByID(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	if widget == nil {
		return nil, errs.NewNotFoundError("Widget not found", false, nil)
	}
	return widget, nil
}

func (w *WidgetService) Create(ctx context.Context, user *model.User, req *model.CreateWidgetRequest) (*model.Widget, error) {
	widget, err := w.widgets.Insert(ctx, model.Widget{
		Name:        req.Name,
		OwnerID:     user.ID,
		OwnerEmail:  user.Email,
		Description: req.Description,
	})
	if errors.Is(err, repository.ErrWidgetNameTaken) {
		return nil, widgetTaken(req.Name)
	}
	if err != nil {
		return nil, err
	}

	w.logger.Debug().Str("widget_id", widget.ID).Msg("added new widget")
	return widget, nil
}

func (w *WidgetService) Update(ctx context.Context, user *model.User, req *model.UpdateWidgetRequest) (*model.Widget, error) {
	if err := w.authorize(ctx, user.ID, req.ID); err != nil {
		return nil, err
	}

	widget := model.Widget{
		ID:          req.ID,
		Name:        req.Name,
		OwnerID:     user.ID,
		OwnerEmail:  user.Email,
		Description: req.Description,
	}
	ok, err := w.widgets.Update(ctx, widget)
	if errors.Is(err, repository.ErrWidgetNameTaken) {
		return nil, widgetTaken(req.Name)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		// Deleted between the ownership check and the update.
		return nil, errs.NewNotFoundError("Widget not found", false, nil)
	}
	return &widget, nil
}

func (w *WidgetService) Delete(ctx context.Context, userID, widgetID string) error {
	if err := w.authorize(ctx, userID, widgetID); err != nil {
		return err
	}
	ok, err := w.widgets.Delete(ctx, userID, widgetID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewNotFoundError("Widget not found", false, nil)
	}

	w.logger.Debug().Str("widget_id", widgetID).Msg("deleted widget")
	return nil
}
