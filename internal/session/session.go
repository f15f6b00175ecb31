package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound signals a missing or expired session.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state bridging anonymous and authenticated
// flows. UserID is nil while the session is anonymous; CustomerID may be
// set either way (an anonymous customer, or the user's own customer).
type Session struct {
	ID         string    `json:"id"`
	UserID     *uint     `json:"user_id,omitempty"`
	CustomerID *uint     `json:"customer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// New creates a fresh anonymous session.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// IsAnonymous reports whether the session carries no authenticated user.
func (s *Session) IsAnonymous() bool {
	return s.UserID == nil
}

// Reset drops all identity-related keys, returning the session to the
// anonymous state while keeping its ID.
func (s *Session) Reset() {
	s.UserID = nil
	s.CustomerID = nil
}

// Store persists sessions keyed by session ID.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}
