// Package identity models the signed-in user as seen by the core: a stable id
// plus an authenticated flag. Sign-in itself happens at an external provider.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
)

// Identity supplies the current user scope.
type Identity interface {
	// UserID is the scope all records are filtered by; uuid.Nil for the device collection.
	UserID() uuid.UUID
	// Authenticated reports whether writes are permitted.
	Authenticated() bool
}

type ident struct {
	id   uuid.UUID
	auth bool
}

func (i ident) UserID() uuid.UUID   { return i.id }
func (i ident) Authenticated() bool { return i.auth }

// Device is the local-only mode identity: one on-device collection, always writable.
func Device() Identity { return ident{id: uuid.Nil, auth: true} }

// Anonymous is a signed-out user: empty collections, no writes.
func Anonymous() Identity { return ident{} }

// User is an authenticated remote account.
func User(id uuid.UUID) Identity { return ident{id: id, auth: true} }

// FromToken verifies an HS256 access token issued by the identity provider and
// returns the user named by its subject.
func FromToken(token string, key []byte, leeway time.Duration) (Identity, error) {
	id, err := subjectFromToken(token, key, leeway)
	if err != nil {
		return nil, fmt.Errorf("identity: %v: %w", err, errs.ErrUnauthenticated)
	}
	return User(id), nil
}

// ExpiresAt returns the token expiry without verifying the signature. It is
// meant for local bookkeeping of a stored token only.
func ExpiresAt(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func subjectFromToken(token string, key []byte, leeway time.Duration) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errors.New("empty token")
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithLeeway(leeway))
	if err != nil || !parsed.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.New("bad subject")
	}
	return id, nil
}
