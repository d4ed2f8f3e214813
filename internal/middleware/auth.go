package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/logger"
	"github.com/primeo/api/internal/models"
)

// RequireUser validates the bearer token, loads the user and stores it in the
// request context. Runs behind DenyByDefault, so the header shape is already
// guaranteed for protected paths.
func RequireUser(tokens *auth.TokenService, db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !HasBearerShape(header) {
				httpx.Error(w, http.StatusUnauthorized, "Authentification requise", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			claims, err := tokens.ValidateAccess(raw)
			if err != nil {
				logger.Get().WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"error": err.Error(),
				}).Warn("jeton rejeté")
				httpx.Error(w, http.StatusUnauthorized, "Jeton invalide ou expiré", nil)
				return
			}
			// Token may be valid while the user was deleted or blocked since.
			var user models.User
			if err := db.First(&user, claims.UserID).Error; err != nil {
				httpx.Error(w, http.StatusUnauthorized, "Utilisateur introuvable", nil)
				return
			}
			if user.IsBlocked {
				httpx.Error(w, http.StatusForbidden, "Compte bloqué", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &user)))
		})
	}
}
