package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type stubRoles map[string]string

func (s stubRoles) ResolveRole(_ context.Context, subject string) (string, error) {
	if subject == "broken" {
		return "", errors.New("database is down")
	}
	role, ok := s[subject]
	if !ok {
		return "", httpx.ErrUnknownSubject
	}
	return role, nil
}

func newKeyManager(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "test"})
	require.NoError(t, err)
	return km
}

func bearer(t *testing.T, km *jwtx.KeyManager, sub string) string {
	t.Helper()
	tok, _, err := km.Issue(sub, time.Now().UTC())
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		mw("first"), mw("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	km := newKeyManager(t)
	roles := stubRoles{"admin-1": "Admin", "user-1": "User"}

	var got httpx.Principal
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = httpx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), httpx.AuthnMiddleware(km.Verifier, roles))

	tests := []struct {
		name   string
		header string
		status int
		role   string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"foreign key", bearer(t, newKeyManager(t), "user-1"), http.StatusUnauthorized, ""},
		{"deleted account", bearer(t, km, "gone"), http.StatusUnauthorized, ""},
		{"resolver failure", bearer(t, km, "broken"), http.StatusInternalServerError, ""},
		{"user", bearer(t, km, "user-1"), http.StatusOK, "User"},
		{"admin lower-case scheme", strings.Replace(bearer(t, km, "admin-1"), "Bearer", "bearer", 1), http.StatusOK, "Admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = httpx.Principal{}
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.role, got.Role)
			if tt.status == http.StatusUnauthorized {
				require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
				var body httpx.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				require.Equal(t, "Unauthorized", body.Message)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := httpx.RequireRole("Admin")(okHandler)

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	for role, want := range map[string]int{"Admin": http.StatusOK, "User": http.StatusUnauthorized} {
		t.Run(role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(httpx.WithPrincipal(req.Context(), httpx.Principal{Subject: "x", Role: role}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, want, rec.Code)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"email":"a@x.com"}`, ""},
		{"empty", ``, "empty"},
		{"syntax", `{"email":`, "malformed"},
		{"wrong type", `{"email":42}`, "wrong type"},
		{"unknown field", `{"email":"a@x.com","admin":true}`, "unknown field"},
		{"trailing object", `{"email":"a@x.com"}{}`, "single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := httpx.DecodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, "a@x.com", p.Email)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWriteJSON_NoCache(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"message": "ok"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSecureHeaders(t *testing.T) {
	h := httpx.SecureHeaders(httpx.SecureHeadersOptions{})(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	require.Contains(t, rec.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}
