package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/personvault/personvault/internal/auth"
	"github.com/personvault/personvault/internal/service"
	"github.com/personvault/personvault/internal/testutil"
)

func newTestAuth(t *testing.T) (func(http.Handler) http.Handler, *auth.Provider) {
	t.Helper()

	store := testutil.NewMemoryStore()

	hash, err := auth.HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	admin := testutil.NewTestAdmin(t, "609.350.354-27", hash)
	if err := store.CreatePerson(context.Background(), admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	provider, err := auth.NewProvider(auth.Config{
		Secret:    "test-secret",
		Algorithm: "HS256",
		TokenTTL:  time.Minute,
	}, service.NewPersonService(store, nil), nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	mw := Auth(AuthConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Provider: provider,
	})

	return mw, provider
}

func TestAuthInjectsPerson(t *testing.T) {
	t.Parallel()

	mw, provider := newTestAuth(t)

	token, err := provider.Authenticate(context.Background(), "609.350.354-27", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	var got string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.MustPersonFromContext(r.Context()).IdentityNumber
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got != "609.350.354-27" {
		t.Errorf("person in context = %q, want the token subject", got)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	mw, _ := newTestAuth(t)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", got)
	}
}

func TestAuthRejectsNonBearerScheme(t *testing.T) {
	t.Parallel()

	mw, _ := newTestAuth(t)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	mw, _ := newTestAuth(t)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer bogus.token.here")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
