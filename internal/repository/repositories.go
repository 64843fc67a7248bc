package repository

import (
	"github.com/quantumrocket/quantumrocket/internal/query"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users   *UserRepository
	Widgets *WidgetRepository
	Things  *ThingRepository
	SignIns *SignInRepository
}

// NewRepositories builds the repositories over the server's store.
func NewRepositories(s *server.Server) *Repositories {
	return New(query.NewBuilder(s.DB, s.Logger, s.Config.Database.StatementTimeout))
}

// New builds the repositories over an existing Builder.
func New(b *query.Builder) *Repositories {
	return &Repositories{
		Users:   NewUserRepository(b),
		Widgets: NewWidgetRepository(b),
		Things:  NewThingRepository(b),
		SignIns: NewSignInRepository(b),
	}
}
