package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/session"
)

func newTestRegistry(t *testing.T, sessionTTL time.Duration) *session.Registry {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	codec, err := jwt.NewCodec("middleware-test-secret")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	return session.NewRegistry(rdb, codec, sessionTTL, 24*time.Hour)
}

func issueToken(t *testing.T, reg *session.Registry, device string) string {
	t.Helper()

	token, err := reg.GenerateToken(context.Background(), jwt.Payload{
		ID:     7,
		Email:  "guard@example.com",
		Device: device,
	}, false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

func guardedHandler(t *testing.T, reg *session.Registry, threshold time.Duration) http.Handler {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from request context")
		} else if claims.Email != "guard@example.com" {
			t.Errorf("unexpected claims email %q", claims.Email)
		}
		w.WriteHeader(http.StatusOK)
	})
	return TokenAuth(reg, threshold, nil)(next)
}

func TestTokenAuthAllowsValidToken(t *testing.T) {
	reg := newTestRegistry(t, time.Hour)
	token := issueToken(t, reg, "firefox")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "firefox")
	rec := httptest.NewRecorder()

	guardedHandler(t, reg, 0).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(RefreshHeader); got != "" {
		t.Fatalf("no refresh expected far from expiry, got header %q", got)
	}
}

func TestTokenAuthRejectsMissingHeader(t *testing.T) {
	reg := newTestRegistry(t, time.Hour)

	for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		TokenAuth(reg, 0, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Errorf("handler must not run for header %q", header)
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestTokenAuthRejectsWrongDevice(t *testing.T) {
	reg := newTestRegistry(t, time.Hour)
	token := issueToken(t, reg, "firefox")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "chrome")
	rec := httptest.NewRecorder()

	TokenAuth(reg, 0, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run for a foreign device")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTokenAuthRejectsInvalidatedSession(t *testing.T) {
	reg := newTestRegistry(t, time.Hour)
	token := issueToken(t, reg, "firefox")

	if err := reg.DeleteActiveSessions(context.Background(), 7); err != nil {
		t.Fatalf("DeleteActiveSessions failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "firefox")
	rec := httptest.NewRecorder()

	TokenAuth(reg, 0, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run after logout")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after session invalidation, got %d", rec.Code)
	}
}

func TestTokenAuthRotatesNearExpiry(t *testing.T) {
	// 10 minute session with a 1 hour threshold puts every token inside
	// the rotation window immediately.
	reg := newTestRegistry(t, 10*time.Minute)
	token := issueToken(t, reg, "firefox")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "firefox")
	rec := httptest.NewRecorder()

	var notified *jwt.Claims
	TokenAuth(reg, time.Hour, func(claims *jwt.Claims) {
		notified = claims
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if notified == nil || notified.Email != "guard@example.com" {
		t.Fatalf("expected the refresh callback to fire with the claims, got %+v", notified)
	}
	refreshed := rec.Header().Get(RefreshHeader)
	if refreshed == "" {
		t.Fatal("expected a refreshed token in the response header")
	}
	if refreshed == token {
		t.Fatal("refreshed token must differ from the presented one")
	}

	// The rotated token is bound to the same session and verifies too.
	claims, _, err := reg.VerifyToken(context.Background(), refreshed, "firefox")
	if err != nil {
		t.Fatalf("refreshed token failed verification: %v", err)
	}
	original, _, err := reg.VerifyToken(context.Background(), token, "firefox")
	if err != nil {
		t.Fatalf("original token failed verification: %v", err)
	}
	if claims.SessionID == "" || claims.SessionID != original.SessionID {
		t.Fatal("rotation must reuse the session id")
	}
}
