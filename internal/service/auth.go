package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/config"
	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/repository"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/session"
)

var emailTakenCode = "EMAIL_ALREADY_EXISTS"

// AuthService signs users up, in and out. A successful sign-up or sign-in
// returns the id of a freshly created session.
type AuthService struct {
	cfg      config.AuthConfig
	logger   *zerolog.Logger
	users    *repository.UserRepository
	signIns  *repository.SignInRepository
	sessions session.Store
	mailer   WelcomeMailer
	now      clock
}

func NewAuthService(s *server.Server, repos *repository.Repositories, mailer WelcomeMailer) *AuthService {
	return &AuthService{
		cfg:      s.Config.Auth,
		logger:   s.Logger,
		users:    repos.Users,
		signIns:  repos.SignIns,
		sessions: s.Sessions,
		mailer:   mailer,
		now:      time.Now,
	}
}

func emailTaken(email string) *errs.HTTPError {
	return errs.NewBadRequestError(
		"A user with that email address already exists. Please try another email address.",
		false, &emailTakenCode,
		[]errs.FieldError{{Field: "email", Error: "is already registered"}},
		nil,
	)
}

func passwordTooLong() *errs.HTTPError {
	return errs.NewBadRequestError("Validation failed", true, nil,
		[]errs.FieldError{{Field: "password", Error: fmt.Sprintf("must not exceed %d bytes", repository.MaxPasswordBytes)}},
		nil,
	)
}

// SignUp creates the account, starts a session and queues the welcome
// email. A failure to queue the email is logged, not returned.
func (a *AuthService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, string, error) {
	user, err := a.users.Insert(ctx, req.Email, req.Password, req.FullName)
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, "", emailTaken(req.Email)
	}
	if errors.Is(err, repository.ErrPasswordTooLong) {
		return nil, "", passwordTooLong()
	}
	if err != nil {
		return nil, "", err
	}

	sessionID, err := a.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if a.mailer != nil {
		if err := a.mailer.EnqueueWelcomeEmail(ctx, user.DisplayEmail, user.FullName); err != nil {
			a.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to enqueue welcome email")
		}
	}

	a.logger.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, sessionID, nil
}

// SignIn checks the credentials and records the attempt. Unknown emails
// and wrong passwords get the same answer.
func (a *AuthService) SignIn(ctx context.Context, req *model.SignInRequest) (*model.User, string, error) {
	now := a.now()

	failures, err := a.signIns.CountFailures(ctx, req.Email, now.Add(-a.cfg.FailureWindow), a.cfg.MaxFailedSignIns)
	if err != nil {
		return nil, "", err
	}
	if a.cfg.MaxFailedSignIns > 0 && failures >= a.cfg.MaxFailedSignIns {
		a.logger.Warn().
			Str("email", req.Email).
			Int("failures", failures).
			Msg("sign in refused, too many failed attempts")
		return nil, "", errs.NewTooManyRequestsError("Too many failed sign in attempts. Please try again later.")
	}

	user, err := a.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, "", err
	}

	if _, err := a.signIns.Record(ctx, req.Email, user != nil, now); err != nil {
		a.logger.Error().Err(err).Msg("failed to record sign in attempt")
	}

	if user == nil {
		a.logger.Warn().Str("email", req.Email).Msg("failed sign in attempt")
		return nil, "", errs.NewUnauthorizedError(
			"Could not sign you in. Are you already a user? If not, please sign up.", false)
	}

	sessionID, err := a.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, sessionID, nil
}

// SignOut destroys the session; an empty id is a no-op.
func (a *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return a.sessions.Destroy(ctx, sessionID)
}

func (a *AuthService) startSession(ctx context.Context, user *model.User) (string, error) {
	return a.sessions.Create(ctx, session.Data{
		Authenticated: true,
		UserEmail:     user.Email,
		UserID:        user.ID,
	})
}
