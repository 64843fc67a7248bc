package service

import (
	"context"
	"time"

	"github.com/quantumrocket/quantumrocket/internal/repository"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

// WelcomeMailer schedules the welcome email for a new account.
type WelcomeMailer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

type Services struct {
	Auth    *AuthService
	Profile *ProfileService
	Widgets *WidgetService
	Pages   *PageService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var mailer WelcomeMailer
	if s.Job != nil {
		mailer = s.Job
	}

	return &Services{
		Auth:    NewAuthService(s, repos, mailer),
		Profile: NewProfileService(s, repos),
		Widgets: NewWidgetService(s, repos),
		Pages:   NewPageService(repos),
	}, nil
}

// clock is replaced in tests.
type clock func() time.Time
