package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newManager() *Manager {
	return NewManager("test-secret", "player", time.Hour, false)
}

func TestIssueAndParse(t *testing.T) {
	m := newManager()
	tok, exp, err := m.Issue("p-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %s", exp)
	}
	id, err := m.Parse(tok)
	if err != nil || id != "p-1" {
		t.Fatalf("Parse = %q, %v", id, err)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := newManager()
	other := NewManager("other-secret", "player", time.Hour, false)
	foreign, _, _ := other.Issue("p-1")
	expired, _, _ := NewManager("test-secret", "player", -time.Minute, false).Issue("p-1")

	for name, tok := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": foreign,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestMiddlewareMintsAndReusesIdentity(t *testing.T) {
	m := newManager()
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PlayerID(r.Context())
	}))

	// First request: no cookie, one gets minted.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("expected a player id")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "player" || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	first := seen

	// Second request with the cookie keeps the same identity.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if seen != first {
		t.Fatalf("identity changed: %s -> %s", first, seen)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("valid cookie must not be re-issued")
	}

	// Bearer header works too.
	tok, _, _ := m.Issue("scripted")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "scripted" {
		t.Fatalf("bearer identity = %s", seen)
	}
}

func TestMiddlewareReplacesTamperedCookie(t *testing.T) {
	m := newManager()
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PlayerID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "player", Value: "forged"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("expected a fresh player id")
	}
	if len(w.Result().Cookies()) != 1 {
		t.Fatal("expected a replacement cookie")
	}
}
