// Package repository handles all interactions with the database.
//
// Each repository fixes a table, its projection and its key handling, and
// turns query.Records into model types. Absence is not an error: lookups
// return (nil, nil) when nothing matched.
package repository

import (
	"errors"

	"github.com/quantumrocket/quantumrocket/internal/query"
)

var (
	// ErrEmailTaken is returned when another account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWidgetNameTaken is returned when the owner already has a widget
	// with that name.
	ErrWidgetNameTaken = errors.New("widget name already in use")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// absent reports whether err only says "no row matched".
func absent(err error) bool {
	return errors.Is(err, query.ErrNotFound)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
