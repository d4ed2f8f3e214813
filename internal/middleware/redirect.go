package middleware

import "net/http"

// HTTPSRedirect permanently redirects non-secure requests to their HTTPS
// equivalent when enabled (production). Behind a proxy the original scheme
// arrives in X-Forwarded-Proto.
func HTTPSRedirect(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secure := r.TLS != nil
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
				secure = proto == "https"
			}
			if !secure {
				target := "https://" + r.Host + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
