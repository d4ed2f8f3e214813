package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/logger"
	"github.com/primeo/api/internal/mailer"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/validation"
)

// AuthHandler covers login, register, refresh, logout, email verification and
// password reset.
type AuthHandler struct {
	DB     *gorm.DB
	Tokens *auth.TokenService
	Mailer *mailer.Mailer
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenService, m *mailer.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Tokens: tokens, Mailer: m}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Identifiants invalides", nil)
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		logger.Get().WithField("email", req.Email).Warn("échec de connexion")
		httpx.Error(w, http.StatusUnauthorized, "Identifiants invalides", nil)
		return
	}
	if user.IsBlocked {
		httpx.Error(w, http.StatusForbidden, "Compte bloqué", nil)
		return
	}
	h.issueSession(w, &user)
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Nom       string `json:"nom" validate:"required"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
}

// Register: POST /api/auth/register — always creates a client account; other
// roles are assigned by an admin afterwards.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		httpx.Error(w, http.StatusConflict, "Un compte existe déjà avec cet email", nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	user := models.User{
		Email:       req.Email,
		Password:    hash,
		Nom:         validation.SanitizeString(req.Nom),
		Prenom:      validation.SanitizeString(req.Prenom),
		Telephone:   validation.SanitizeString(req.Telephone),
		Role:        models.RoleClient,
		VerifyToken: auth.NewOpaqueToken(),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if err := h.Mailer.SendVerification(user.Email, user.VerifyToken); err != nil {
		logger.Get().WithField("error", err.Error()).Error("envoi mail de vérification")
	}
	h.issueSession(w, &user)
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Authentification requise", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Refresh: POST /api/auth/refresh — rotates the refresh token carried by the
// cookie and returns a fresh access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(auth.RefreshCookieName)
	if err != nil || c.Value == "" {
		httpx.Error(w, http.StatusUnauthorized, "Jeton de rafraîchissement absent", nil)
		return
	}
	var user models.User
	if err := h.DB.Where("refresh_token = ?", c.Value).First(&user).Error; err != nil {
		auth.ClearAuthCookies(w)
		httpx.Error(w, http.StatusUnauthorized, "Jeton de rafraîchissement invalide", nil)
		return
	}
	if user.IsBlocked {
		httpx.Error(w, http.StatusForbidden, "Compte bloqué", nil)
		return
	}
	h.issueSession(w, &user)
}

// Logout: POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.RefreshCookieName); err == nil && c.Value != "" {
		h.DB.Model(&models.User{}).Where("refresh_token = ?", c.Value).Update("refresh_token", "")
	}
	auth.ClearAuthCookies(w)
	httpx.Message(w, http.StatusOK, "Déconnecté")
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail: POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var user models.User
	if err := h.DB.Where("verify_token = ? AND verify_token <> ''", req.Token).First(&user).Error; err != nil {
		httpx.Error(w, http.StatusBadRequest, "Code de vérification invalide", nil)
		return
	}
	h.DB.Model(&user).Updates(map[string]any{"email_verified": true, "verify_token": ""})
	httpx.Message(w, http.StatusOK, "Adresse email vérifiée")
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword: POST /api/auth/forgot-password — always answers 200 so the
// endpoint does not leak which emails exist.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		token := auth.NewOpaqueToken()
		expires := time.Now().Add(time.Hour)
		h.DB.Model(&user).Updates(map[string]any{"reset_token": token, "reset_expires_at": expires})
		if err := h.Mailer.SendPasswordReset(user.Email, token); err != nil {
			logger.Get().WithField("error", err.Error()).Error("envoi mail de réinitialisation")
		}
	}
	httpx.Message(w, http.StatusOK, "Si un compte existe, un email a été envoyé")
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword: POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var user models.User
	if err := h.DB.Where("reset_token = ? AND reset_token <> ''", req.Token).First(&user).Error; err != nil {
		httpx.Error(w, http.StatusBadRequest, "Code de réinitialisation invalide", nil)
		return
	}
	if user.ResetExpiresAt == nil || user.ResetExpiresAt.Before(time.Now()) {
		httpx.Error(w, http.StatusBadRequest, "Code de réinitialisation expiré", nil)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	h.DB.Model(&user).Updates(map[string]any{"password": hash, "reset_token": "", "refresh_token": ""})
	httpx.Message(w, http.StatusOK, "Mot de passe réinitialisé")
}

// issueSession writes the access token response plus refresh/CSRF cookies.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user *models.User) {
	access, err := h.Tokens.IssueAccess(user)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	refresh := auth.NewOpaqueToken()
	if err := h.DB.Model(user).Update("refresh_token", refresh).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	auth.SetRefreshCookie(w, refresh)
	auth.SetCSRFCookie(w, auth.NewOpaqueToken())
	httpx.JSON(w, http.StatusOK, authResponse{AccessToken: access, User: user})
}
