// internal/session/session.go
//
// Anonymous player identity.
//
// Every browser is given a random player ID carried in an HS256 JWT cookie.
// The ID scopes the player's single round; there are no accounts.
//
// Notes:
//   - The middleware never rejects a request. A missing, expired or
//     tampered token is replaced by a fresh identity and a new cookie.
//   - A bearer token in the Authorization header is honored as well, which
//     keeps the API usable from scripts.

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken is returned by Parse for any token that does not verify.
var ErrInvalidToken = errors.New("session: invalid token")

const issuer = "pathrecall"

// Manager signs and verifies player cookies.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager builds a Manager. secure marks cookies Secure/SameSite=None
// for production deployments behind TLS.
func NewManager(secret, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Issue creates a signed token for playerID and returns it with its expiry.
func (m *Manager) Issue(playerID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   playerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(m.secret)
	return ss, exp, err
}

// Parse verifies token and returns the player ID it carries.
func (m *Manager) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil || !t.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Middleware attaches a player ID to every request, minting one if needed.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := m.bearerOrCookie(r); tok != "" {
			if id, err := m.Parse(tok); err == nil {
				next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), id)))
				return
			}
		}

		id := uuid.NewString()
		tok, exp, err := m.Issue(id)
		if err != nil {
			log.Error().Err(err).Msg("sign player token")
			http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
			return
		}
		m.setCookie(w, tok, exp)
		log.Debug().Str("player", id).Msg("new player session")
		next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), id)))
	})
}

// setCookie writes the player cookie with appropriate security attributes.
func (m *Manager) setCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if m.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or cookie.
func (m *Manager) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(m.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ctxPlayerKey is the context key type for the player ID.
type ctxPlayerKey struct{}

// WithPlayer returns a copy of ctx carrying playerID.
func WithPlayer(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, ctxPlayerKey{}, playerID)
}

// PlayerID returns the player ID placed in ctx by the middleware.
func PlayerID(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(ctxPlayerKey{}).(string)
	return id, id != ""
}
