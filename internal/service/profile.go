package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/repository"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

type ProfileService struct {
	logger *zerolog.Logger
	users  *repository.UserRepository
}

func NewProfileService(s *server.Server, repos *repository.Repositories) *ProfileService {
	return &ProfileService{logger: s.Logger, users: repos.Users}
}

// errNoUser is returned when a live session points at a deleted account.
func errNoUser() *errs.HTTPError {
	return errs.NewUnauthorizedError("Please sign in. If you are not already a user, please sign up.", false).
		WithAction(&errs.Action{Type: errs.ActionTypeRedirect, Message: "Sign in", Value: "/"})
}

// Get loads the signed-in user.
func (p *ProfileService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		p.logger.Error().Str("user_id", userID).Msg("session refers to a missing user")
		return nil, errNoUser()
	}
	return user, nil
}

// Update rewrites the profile. Changing the email to one held by another
// account is rejected.
func (p *ProfileService) Update(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error) {
	ok, err := p.users.Update(ctx, userID, req.Email, req.FullName, req.Phone, req.ShowPageHelp)
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, emailTaken(req.Email)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoUser()
	}
	return p.Get(ctx, userID)
}
