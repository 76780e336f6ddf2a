package auth

import (
	"context"
	"errors"
	"time"
)

// CookieName is the client-held cookie carrying the raw session token.
const CookieName = "auth_token"

var ErrUnauthenticated = errors.New("unauthenticated")

// SessionStore is the registry surface Sessions needs. Kept small so tests can
// fake it with a map.
type SessionStore interface {
	Put(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// Sessions issues and resolves login sessions. A session is two representations
// of the same fact: a signed token the client holds, and a registry record the
// server holds. Issue writes both; Resolve requires both. The registry is the
// authority for revocation with the token exp as a secondary guard, and both
// expire on the codec's single TTL so neither can outlive the other.
type Sessions struct {
	jwt   *Manager
	store SessionStore
}

func NewSessions(jwt *Manager, store SessionStore) *Sessions {
	return &Sessions{jwt: jwt, store: store}
}

// Issue mints a signed token for the user and registers it. The returned token
// is ready for cookie transport.
func (s *Sessions) Issue(ctx context.Context, userID int64, email string) (string, error) {
	token, err := s.jwt.GenerateSessionToken(userID, email)

	if err != nil {
		return "", err
	}

	if err := s.store.Put(ctx, token, userID, s.jwt.TTL()); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve maps a raw token to the owning user id. Signature or exp failure,
// a missing registry record, and a record/claims mismatch all collapse into
// the same ErrUnauthenticated so callers cannot tell them apart.
func (s *Sessions) Resolve(ctx context.Context, token string) (int64, error) {
	claims, err := s.jwt.ParseAndValidate(token)

	if err != nil {
		return 0, ErrUnauthenticated
	}

	userID, err := s.store.Get(ctx, token)

	if err != nil {
		return 0, ErrUnauthenticated
	}

	if userID != claims.UserID {
		return 0, ErrUnauthenticated
	}

	return userID, nil
}

// Revoke drops the registry record. The token stays cryptographically valid
// until its exp, but Resolve will refuse it immediately.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}
