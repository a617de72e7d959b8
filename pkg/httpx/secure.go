package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/unrolled/secure"
)

// SecureHeadersOptions tunes SecureHeaders.
type SecureHeadersOptions struct {
	// Production enables HSTS and the HTTPS redirect.
	Production bool
	// AllowedHosts restricts the Host header when non-empty.
	AllowedHosts []string
}

// SecureHeaders sets the standard browser hardening headers. The swagger UI
// needs inline scripts, so the CSP is relaxed under /swagger/.
func SecureHeaders(opts SecureHeadersOptions) Middleware {
	base := secure.Options{
		AllowedHosts:          opts.AllowedHosts,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), camera=(), microphone=()",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           opts.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !opts.Production,
	}
	if opts.Production {
		base.STSSeconds = 31536000
		base.STSIncludeSubdomains = true
	}

	api := secure.New(base)

	docsOpts := base
	docsOpts.ContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
	docs := secure.New(docsOpts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := api
			if strings.HasPrefix(r.URL.Path, "/swagger/") {
				s = docs
			}
			if err := s.Process(w, r); err != nil {
				slog.Warn("secure headers blocked request", slog.Any("err", err), slog.String("host", r.Host))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
