package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/query"
)

// userColumns is the read projection; it never includes the password.
var userColumns = []string{
	"user_ulid", "email", "display_email", "full_name", "phone", "status", "pref_show_page_help",
}

type UserRepository struct {
	q        *query.Builder
	hashCost int
}

func NewUserRepository(b *query.Builder) *UserRepository {
	return &UserRepository{q: b, hashCost: bcrypt.DefaultCost}
}

// normalizeEmail is the lookup form of an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userFromRecord(r query.Record) *model.User {
	return &model.User{
		ID:           r.String("user_ulid"),
		Email:        r.String("email"),
		DisplayEmail: r.String("display_email"),
		PasswordHash: r.String("password"),
		FullName:     r.String("full_name"),
		Phone:        r.String("phone"),
		Status:       r.String("status"),
		ShowPageHelp: r.String("pref_show_page_help") != "no",
	}
}

func (r *UserRepository) getOne(ctx context.Context, columns []string, where query.Criteria) (*model.User, error) {
	rec, err := r.q.SelectOne(ctx, query.SelectStmt{
		Table:   query.Users,
		Where:   where,
		Columns: columns,
	})
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return userFromRecord(rec), nil
}

// GetByEmail looks the user up case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, userColumns, query.Criteria{query.F("email", normalizeEmail(email))})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, userColumns, query.Criteria{query.F("user_ulid", id)})
}

// Authenticate returns the user when password matches the stored hash.
// An unknown email or a wrong password yields (nil, nil).
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := r.getOne(ctx,
		append([]string{"password"}, userColumns...),
		query.Criteria{query.F("email", normalizeEmail(email))},
	)
	if err != nil || user == nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	user.PasswordHash = ""
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("comparing password hash: %w", err)
	}

	return user, nil
}

// Insert creates an account. The existence pre-check gives the common case
// a friendly error; the unique index on email settles concurrent sign-ups.
// The account is written by a single statement, so a failed insert leaves
// nothing behind.
func (r *UserRepository) Insert(ctx context.Context, email, password, fullName string) (*model.User, error) {
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	existing, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        normalizeEmail(email),
		DisplayEmail: strings.TrimSpace(email),
		FullName:     strings.TrimSpace(fullName),
		Status:       model.UserStatusActive,
		ShowPageHelp: true,
	}

	user.ID, err = r.q.Insert(ctx, query.Users, query.Values{
		query.F("email", user.Email),
		query.F("display_email", user.DisplayEmail),
		query.F("password", string(hash)),
		query.F("full_name", user.FullName),
		query.F("status", user.Status),
		query.F("pref_show_page_help", yesNo(user.ShowPageHelp)),
	})
	if query.IsConflict(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update rewrites the profile fields of user id. It reports false when no
// such user exists.
func (r *UserRepository) Update(ctx context.Context, id, email, fullName, phone string, showPageHelp bool) (bool, error) {
	existing, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.ID != id {
		return false, ErrEmailTaken
	}

	n, err := r.q.Update(ctx, query.Users,
		query.Criteria{query.F("user_ulid", id)},
		query.Values{
			query.F("email", normalizeEmail(email)),
			query.F("display_email", strings.TrimSpace(email)),
			query.F("full_name", fullName),
			query.F("phone", phone),
			query.F("pref_show_page_help", yesNo(showPageHelp)),
		},
	)
	if query.IsConflict(err) {
		return false, ErrEmailTaken
	}
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
