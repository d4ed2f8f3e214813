package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
	"github.com/primeo/api/internal/validation"
)

// AdminHandler groups user administration and the stats dashboard.
type AdminHandler struct {
	DB    *gorm.DB
	Gate  *policy.Gate
	Stats *services.StatsService
}

func NewAdminHandler(db *gorm.DB, gate *policy.Gate, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{DB: db, Gate: gate, Stats: stats}
}

// ListUsers: GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceUser) == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	dbq := h.DB.Model(&models.User{})
	if role := q.Get("role"); role != "" {
		if !models.Role(role).Valid() {
			httpx.Error(w, http.StatusBadRequest, "Rôle inconnu", nil)
			return
		}
		dbq = dbq.Where("role = ?", role)
	}
	if search := q.Get("q"); search != "" {
		like := "%" + search + "%"
		dbq = dbq.Where("email LIKE ? OR nom LIKE ? OR prenom LIKE ?", like, like, like)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var users []models.User
	if err := dbq.Order("created_at desc").Limit(p.Limit).Offset(p.Skip()).Find(&users).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, users, p.Meta(total))
}

type updateUserRequest struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
	Role      string `json:"role"`
}

// UpdateUser: PUT /api/admin/users/{id} — identity fields plus role assignment.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	admin := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceUser)
	if admin == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Utilisateur introuvable", nil)
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role != "" {
		role := models.Role(strings.ToLower(req.Role))
		if !role.Valid() {
			httpx.Error(w, http.StatusBadRequest, "Rôle inconnu", nil)
			return
		}
		// Un admin ne peut pas se rétrograder lui-même.
		if user.ID == admin.ID && role != models.RoleAdmin {
			httpx.Error(w, http.StatusConflict, "Impossible de modifier son propre rôle", nil)
			return
		}
		user.Role = role
	}
	if req.Nom != "" {
		user.Nom = validation.SanitizeString(req.Nom)
	}
	if req.Prenom != "" {
		user.Prenom = validation.SanitizeString(req.Prenom)
	}
	if req.Telephone != "" {
		user.Telephone = validation.SanitizeString(req.Telephone)
	}
	if err := h.DB.Save(&user).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type blockUserRequest struct {
	Blocked bool   `json:"blocked"`
	Note    string `json:"note"`
}

// BlockUser: PATCH /api/admin/users/{id}/block — blocking also revokes the refresh
// token so the session dies at next rotation.
func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	admin := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceUser)
	if admin == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	if id == admin.ID {
		httpx.Error(w, http.StatusConflict, "Impossible de bloquer son propre compte", nil)
		return
	}
	var req blockUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updates := map[string]any{
		"is_blocked": req.Blocked,
		"block_note": validation.SanitizeString(req.Note),
	}
	if req.Blocked {
		updates["refresh_token"] = ""
	}
	res := h.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Utilisateur introuvable", nil)
		return
	}
	if req.Blocked {
		httpx.Message(w, http.StatusOK, "Compte bloqué")
		return
	}
	httpx.Message(w, http.StatusOK, "Compte débloqué")
}

// Dashboard: GET /api/admin/stats/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionView, policy.ResourceStats) == nil {
		return
	}
	stats, err := h.Stats.Dashboard()
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
