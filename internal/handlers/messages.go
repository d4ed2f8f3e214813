package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/validation"
)

type MessageHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewMessageHandler(db *gorm.DB, gate *policy.Gate) *MessageHandler {
	return &MessageHandler{DB: db, Gate: gate}
}

// List: GET /api/messages — the caller's inbox, ?box=sent for outbox.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionList, policy.ResourceMessage)
	if user == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.DB.Model(&models.InternalMessage{})
	if r.URL.Query().Get("box") == "sent" {
		dbq = dbq.Where("sender_id = ?", user.ID)
	} else {
		dbq = dbq.Where("recipient_id = ?", user.ID)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var messages []models.InternalMessage
	if err := dbq.Order("created_at desc").Limit(p.Limit).Offset(p.Skip()).Find(&messages).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, messages, p.Meta(total))
}

type messageRequest struct {
	RecipientID uint   `json:"recipientId" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Body        string `json:"body"`
}

// Send: POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceMessage)
	if user == nil {
		return
	}
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var recipient models.User
	if err := h.DB.First(&recipient, req.RecipientID).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Destinataire introuvable", nil)
		return
	}
	msg := models.InternalMessage{
		SenderID:    user.ID,
		RecipientID: recipient.ID,
		Subject:     validation.SanitizeString(req.Subject),
		Body:        validation.SanitizeString(req.Body),
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

// MarkRead: PATCH /api/messages/{id}/read — only the recipient can mark.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceMessage)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	res := h.DB.Model(&models.InternalMessage{}).
		Where("id = ? AND recipient_id = ?", id, user.ID).Update("read", true)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Message introuvable", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Message marqué comme lu")
}
