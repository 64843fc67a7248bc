package service

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumrocket/quantumrocket/internal/config"
	"github.com/quantumrocket/quantumrocket/internal/database"
	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/query"
	"github.com/quantumrocket/quantumrocket/internal/repository"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/session"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type fixture struct {
	srv      *server.Server
	services *Services
	mailer   *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "service.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	srv := &server.Server{
		Config: &config.Config{
			Auth: config.AuthConfig{
				SessionTTL:       time.Hour,
				MaxFailedSignIns: 3,
				FailureWindow:    15 * time.Minute,
			},
		},
		Logger:   &log,
		DB:       db,
		Sessions: session.NewMemoryStore(time.Hour),
	}

	repos := repository.New(query.NewBuilder(db, &log, time.Second))
	services, err := NewServices(srv, repos)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	services.Auth.mailer = mailer

	return &fixture{srv: srv, services: services, mailer: mailer}
}

func (f *fixture) signUp(t *testing.T, email string) *model.User {
	t.Helper()
	user, _, err := f.services.Auth.SignUp(context.Background(), &model.SignUpRequest{
		Email:    email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func requireHTTPStatus(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	return httpErr
}

func TestAuth_SignUpStartsSessionAndQueuesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, sid, err := f.services.Auth.SignUp(ctx, &model.SignUpRequest{
		Email:    "Ada@Example.com",
		Password: "correct horse",
		FullName: "Ada Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName)

	stored, err := f.services.Profile.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.FullName)

	data, err := f.srv.Sessions.Get(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, session.Data{Authenticated: true, UserEmail: "ada@example.com", UserID: user.ID}, *data)

	assert.Equal(t, []string{"Ada@Example.com"}, f.mailer.sent)
}

func TestAuth_SignUpDuplicateIsFriendly(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "a@b.com")

	_, _, err := f.services.Auth.SignUp(context.Background(), &model.SignUpRequest{
		Email:    "A@B.com",
		Password: "another password",
	})
	httpErr := requireHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", httpErr.Code)
}

func TestAuth_SignUpPasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.services.Auth.SignUp(context.Background(), &model.SignUpRequest{
		Email:    "a@b.com",
		Password: strings.Repeat("é", 40),
	})
	httpErr := requireHTTPStatus(t, err, http.StatusBadRequest)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "password", httpErr.Errors[0].Field)
	assert.Empty(t, f.mailer.sent)
}

func TestAuth_SignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signUp(t, "a@b.com")

	got, sid, err := f.services.Auth.SignIn(ctx, &model.SignInRequest{Email: "A@b.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, sid)

	_, _, err = f.services.Auth.SignIn(ctx, &model.SignInRequest{Email: "a@b.com", Password: "wrong"})
	requireHTTPStatus(t, err, http.StatusUnauthorized)

	_, _, err = f.services.Auth.SignIn(ctx, &model.SignInRequest{Email: "ghost@b.com", Password: "correct horse"})
	requireHTTPStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, f.services.Auth.SignOut(ctx, sid))
	data, err := f.srv.Sessions.Get(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestAuth_SignInLocksOutAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "a@b.com")

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.services.Auth.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, _, err := f.services.Auth.SignIn(ctx, &model.SignInRequest{Email: "a@b.com", Password: "wrong"})
		requireHTTPStatus(t, err, http.StatusUnauthorized)
	}

	_, _, err := f.services.Auth.SignIn(ctx, &model.SignInRequest{Email: "a@b.com", Password: "correct horse"})
	requireHTTPStatus(t, err, http.StatusTooManyRequests)

	now = now.Add(time.Hour)
	_, _, err = f.services.Auth.SignIn(ctx, &model.SignInRequest{Email: "a@b.com", Password: "correct horse"})
	assert.NoError(t, err)
}

func TestProfile_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signUp(t, "a@b.com")
	f.signUp(t, "taken@b.com")

	updated, err := f.services.Profile.Update(ctx, user.ID, &model.UpdateProfileRequest{
		Email:    "new@b.com",
		FullName: "Ada",
		Phone:    "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", updated.Email)
	assert.False(t, updated.ShowPageHelp)

	_, err = f.services.Profile.Update(ctx, user.ID, &model.UpdateProfileRequest{Email: "taken@b.com"})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.services.Profile.Get(ctx, "01HNOSUCHUSER0000000000000")
	httpErr := requireHTTPStatus(t, err, http.StatusUnauthorized)
	require.NotNil(t, httpErr.Action)
	assert.Equal(t, errs.ActionTypeRedirect, httpErr.Action.Type)
}

func TestWidgets_OwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "owner@b.com")
	intruder := f.signUp(t, "intruder@b.com")

	w, err := f.services.Widgets.Create(ctx, owner, &model.CreateWidgetRequest{Name: "gizmo", Description: "d"})
	require.NoError(t, err)

	_, err = f.services.Widgets.Create(ctx, owner, &model.CreateWidgetRequest{Name: "gizmo"})
	httpErr := requireHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "WIDGET_ALREADY_EXISTS", httpErr.Code)

	_, err = f.services.Widgets.Get(ctx, intruder.ID, w.ID)
	requireHTTPStatus(t, err, http.StatusForbidden)

	_, err = f.services.Widgets.Update(ctx, intruder, &model.UpdateWidgetRequest{ID: w.ID, Name: "mine"})
	requireHTTPStatus(t, err, http.StatusForbidden)

	err = f.services.Widgets.Delete(ctx, intruder.ID, w.ID)
	requireHTTPStatus(t, err, http.StatusForbidden)

	_, err = f.services.Widgets.Get(ctx, owner.ID, query.NewID())
	requireHTTPStatus(t, err, http.StatusNotFound)

	updated, err := f.services.Widgets.Update(ctx, owner, &model.UpdateWidgetRequest{ID: w.ID, Name: "gadget"})
	require.NoError(t, err)
	assert.Equal(t, "gadget", updated.Name)

	require.NoError(t, f.services.Widgets.Delete(ctx, owner.ID, w.ID))
	list, err := f.services.Widgets.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPages_Help(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	anon, err := f.services.Pages.Help(ctx, HelpIndex, nil)
	require.NoError(t, err)
	assert.True(t, anon.Show)
	assert.NotEmpty(t, anon.Text)

	quiet := &model.User{ShowPageHelp: false}
	help, err := f.services.Pages.Help(ctx, HelpDashboard, quiet)
	require.NoError(t, err)
	assert.False(t, help.Show)

	missing, err := f.services.Pages.Help(ctx, "page.unknown.help", nil)
	require.NoError(t, err)
	assert.Empty(t, missing.Text)

	all, err := f.services.Pages.AllHelp(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Contains(t, all, HelpMyWidgets)
}
