package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// ErrUnknownSubject is returned by a RoleResolver when the token subject no
// longer exists.
var ErrUnknownSubject = errors.New("httpx: unknown subject")

// RoleResolver looks up the current role of a token subject.
type RoleResolver interface {
	ResolveRole(ctx context.Context, subject string) (string, error)
}

// RoleResolverFunc adapts a function to RoleResolver.
type RoleResolverFunc func(ctx context.Context, subject string) (string, error)

func (f RoleResolverFunc) ResolveRole(ctx context.Context, subject string) (string, error) {
	return f(ctx, subject)
}

// AuthnMiddleware requires a valid bearer token and stores the caller's
// Principal in the request context. The role is read fresh through roles on
// every request, so a deleted account or a demotion takes effect immediately.
func AuthnMiddleware(v jwtx.Verifier, roles RoleResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				WriteUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				WriteUnauthorized(w, "token verification failed")
				return
			}

			role, err := roles.ResolveRole(ctx, claims.Subject)
			switch {
			case errors.Is(err, ErrUnknownSubject):
				log.Warn("token subject no longer exists", "sub", claims.Subject)
				WriteUnauthorized(w, "unknown subject")
				return
			case err != nil:
				log.Error("failed to resolve role", "sub", claims.Subject, "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
				return
			}

			ctx = WithPrincipal(ctx, Principal{Subject: claims.Subject, Role: role})
			ctx = slogx.With(ctx, "sub", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteUnauthorized writes an RFC 6750 challenge and a 401 body.
func WriteUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
}
