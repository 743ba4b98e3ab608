package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
)

func makeJWT(t *testing.T, sub string, key []byte, method jwt.SigningMethod, iat time.Time, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(iat),
		NotBefore: jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
	}
	token := jwt.NewWithClaims(method, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestDeviceAndAnonymous(t *testing.T) {
	t.Parallel()

	d := Device()
	if !d.Authenticated() || d.UserID() != uuid.Nil {
		t.Fatalf("device: auth=%v id=%s", d.Authenticated(), d.UserID())
	}
	a := Anonymous()
	if a.Authenticated() {
		t.Fatalf("anonymous must not be authenticated")
	}
	id := uuid.Must(uuid.NewV4())
	if u := User(id); !u.Authenticated() || u.UserID() != id {
		t.Fatalf("user: auth=%v id=%s", u.Authenticated(), u.UserID())
	}
}

func TestFromToken_Valid(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	sub := uuid.Must(uuid.NewV4())
	j := makeJWT(t, sub.String(), key, jwt.SigningMethodHS256, time.Now().UTC().Add(-time.Minute), 10*time.Minute)

	id, err := FromToken(j, key, 30*time.Second)
	if err != nil {
		t.Fatalf("FromToken: %v", err)
	}
	if id.UserID() != sub || !id.Authenticated() {
		t.Fatalf("identity mismatch: %s vs %s", id.UserID(), sub)
	}

	exp, ok := ExpiresAt(j)
	if !ok || exp.Before(time.Now()) {
		t.Fatalf("ExpiresAt: %v %v", exp, ok)
	}
}

func TestFromToken_Rejects(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	sub := uuid.Must(uuid.NewV4()).String()
	now := time.Now().UTC()

	cases := map[string]string{
		"empty":       "",
		"garbage":     "this-is-not-a-jwt",
		"expired":     makeJWT(t, sub, key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour),
		"wrong alg":   makeJWT(t, sub, key, jwt.SigningMethodHS384, now, time.Hour),
		"wrong key":   makeJWT(t, sub, []byte("other"), jwt.SigningMethodHS256, now, time.Hour),
		"bad subject": makeJWT(t, "not-a-uuid", key, jwt.SigningMethodHS256, now, time.Hour),
		"nil subject": makeJWT(t, uuid.Nil.String(), key, jwt.SigningMethodHS256, now, time.Hour),
	}
	for name, tok := range cases {
		if _, err := FromToken(tok, key, 0); !errors.Is(err, errs.ErrUnauthenticated) {
			t.Fatalf("%s: want ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestExpiresAt_Garbage(t *testing.T) {
	t.Parallel()

	if _, ok := ExpiresAt("nope"); ok {
		t.Fatalf("want !ok on garbage")
	}
}
