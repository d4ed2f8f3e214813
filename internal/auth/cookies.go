package auth

import (
	"net/http"
	"os"
	"time"
)

const (
	RefreshCookieName = "refresh_token"
	CSRFCookieName    = "csrf_token"

	refreshCookieAge = 7 * 24 * time.Hour
	csrfCookieAge    = 24 * time.Hour
)

func secureCookies() bool { return os.Getenv("APP_ENV") == "production" }

// SetRefreshCookie stores the refresh token for 7 days. HttpOnly so the SPA
// never reads it; SameSite=Strict against CSRF.
func SetRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(refreshCookieAge),
	})
}

// SetCSRFCookie stores the CSRF token for 24 hours. Not HttpOnly: the SPA reads
// it and echoes it back in a header.
func SetCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   secureCookies(),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(csrfCookieAge),
	})
}

// ClearAuthCookies expires both cookies.
func ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: RefreshCookieName, Value: "", Path: "/api/auth", Expires: time.Unix(0, 0), HttpOnly: true, Secure: secureCookies(), SameSite: http.SameSiteStrictMode})
	http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), Secure: secureCookies(), SameSite: http.SameSiteStrictMode})
}
