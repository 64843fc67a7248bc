// Package session keeps server-side sign-in state.
//
// A session is a small hash keyed by an opaque random id that travels in a
// cookie. It records whether the visitor authenticated and, if so, which
// user they are.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned by Refresh when the id is unknown or expired.
var ErrNoSession = errors.New("session: not found")

// Data is the state stored for a session.
type Data struct {
	Authenticated bool
	UserEmail     string
	UserID        string
}

// Store persists sessions for a fixed time-to-live.
//
// Get returns (nil, nil) for an unknown or expired id.
type Store interface {
	Create(ctx context.Context, data Data) (string, error)
	Get(ctx context.Context, id string) (*Data, error)
	Refresh(ctx context.Context, id string) error
	Destroy(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

func newID() string {
	return uuid.NewString()
}

const (
	fieldAuthenticated = "authenticated"
	fieldUserEmail     = "user_email"
	fieldUserID        = "user_ulid"
)

func (d Data) fields() map[string]any {
	auth := "no"
	if d.Authenticated {
		auth = "yes"
	}
	return map[string]any{
		fieldAuthenticated: auth,
		fieldUserEmail:     d.UserEmail,
		fieldUserID:        d.UserID,
	}
}

func dataFromFields(m map[string]string) *Data {
	return &Data{
		Authenticated: m[fieldAuthenticated] == "yes",
		UserEmail:     m[fieldUserEmail],
		UserID:        m[fieldUserID],
	}
}

// ttlOrDefault keeps a zero TTL from creating sessions that never expire.
func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}
