package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
)

type NotificationHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewNotificationHandler(db *gorm.DB, gate *policy.Gate) *NotificationHandler {
	return &NotificationHandler{DB: db, Gate: gate}
}

// List: GET /api/notifications — the caller's notifications, unread first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionList, policy.ResourceNotification)
	if user == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if r.URL.Query().Get("unread") == "true" {
		dbq = dbq.Where("read = ?", false)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var notifications []models.Notification
	if err := dbq.Order("read asc, created_at desc").
		Limit(p.Limit).Offset(p.Skip()).Find(&notifications).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, notifications, p.Meta(total))
}

// MarkRead: PATCH /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceNotification)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).Update("read", true)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Notification introuvable", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Notification marquée comme lue")
}

// MarkAllRead: POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceNotification)
	if user == nil {
		return
	}
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).Update("read", true).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Notifications marquées comme lues")
}
