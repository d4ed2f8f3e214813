package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/logger"
)

// APIPrefix is the root under which the deny-by-default policy applies.
const APIPrefix = "/api"

// allowList holds the only /api paths reachable without a bearer-shaped
// Authorization header. Token validity is checked later by RequireUser,
// never here.
var allowList = map[string]bool{
	"/api/health":               true,
	"/api/auth/login":           true,
	"/api/auth/register":        true,
	"/api/auth/verify-email":    true,
	"/api/auth/forgot-password": true,
	"/api/auth/reset-password":  true,
	"/api/auth/refresh":         true,
	"/api/auth/logout":          true,
}

// NormalizePath strips any query string and trailing slashes so that
// "/api/health/?x=1" matches "/api/health".
func NormalizePath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// HasBearerShape reports whether the Authorization header value looks like a
// bearer token ("Bearer " prefix with a non-empty remainder).
func HasBearerShape(header string) bool {
	return strings.HasPrefix(header, "Bearer ") && strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")) != ""
}

// DenyByDefault rejects every request under /api unless the path is
// allow-listed or the request carries a bearer-shaped Authorization header.
func DenyByDefault(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := NormalizePath(r.URL.Path)
		if !strings.HasPrefix(path, APIPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		if allowList[path] {
			next.ServeHTTP(w, r)
			return
		}
		if HasBearerShape(r.Header.Get("Authorization")) {
			next.ServeHTTP(w, r)
			return
		}
		logger.Get().WithFields(logrus.Fields{
			"path":   path,
			"method": r.Method,
		}).Warn("requête refusée: pas de jeton")
		httpx.Error(w, http.StatusUnauthorized, "Authentification requise", nil)
	})
}
