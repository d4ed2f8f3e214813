package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
	"github.com/primeo/api/internal/validation"
)

type PaymentHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewPaymentHandler(db *gorm.DB, gate *policy.Gate) *PaymentHandler {
	return &PaymentHandler{DB: db, Gate: gate}
}

// scopeForUser restricts payment queries for clients to payments on their own
// shops' orders, mirroring the order scoping.
func (h *PaymentHandler) scopeForUser(user *models.User, q *gorm.DB) *gorm.DB {
	if user.Role == models.RoleClient {
		shops := h.DB.Model(&models.Shop{}).Select("id").Where("user_id = ?", user.ID)
		orders := h.DB.Model(&models.Order{}).Select("id").Where("shop_id IN (?)", shops)
		return q.Where("order_id IN (?)", orders)
	}
	return q
}

// List: GET /api/payments — filterable by order and status.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionList, policy.ResourcePayment)
	if user == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	dbq := h.scopeForUser(user, h.DB.Model(&models.Payment{}))
	if orderID := q.Get("orderId"); orderID != "" {
		dbq = dbq.Where("order_id = ?", orderID)
	}
	if statut := q.Get("statut"); statut != "" {
		dbq = dbq.Where("statut = ?", statut)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var payments []models.Payment
	if err := dbq.Preload("Order").Order("created_at desc").
		Limit(p.Limit).Offset(p.Skip()).Find(&payments).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, payments, p.Meta(total))
}

type paymentRequest struct {
	OrderID     uint    `json:"orderId" validate:"required"`
	Montant     float64 `json:"montant" validate:"required,gt=0"`
	Mode        string  `json:"mode" validate:"required,oneof=virement cheque especes carte prelevement"`
	Reference   string  `json:"reference"`
	Commentaire string  `json:"commentaire"`
}

// Create: POST /api/payments — records a payment and rolls the order's
// payment status forward (partial/paid) from the sum of settled payments.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourcePayment) == nil {
		return
	}
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var order models.Order
	if err := h.DB.First(&order, req.OrderID).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Commande introuvable", nil)
		return
	}
	now := time.Now()
	payment := models.Payment{
		OrderID:     order.ID,
		Montant:     services.Round2(req.Montant),
		Mode:        req.Mode,
		Statut:      "validé",
		Reference:   validation.SanitizeString(req.Reference),
		Commentaire: validation.SanitizeString(req.Commentaire),
		PaidAt:      &now,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		var paid float64
		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND statut = ?", order.ID, "validé").
			Select("COALESCE(SUM(montant), 0)").Scan(&paid).Error; err != nil {
			return err
		}
		status := models.PaymentPartial
		if paid >= order.TotalTTC {
			status = models.PaymentPaid
		}
		return tx.Model(&order).Update("payment_status", status).Error
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

// Cancel: PATCH /api/payments/{id}/cancel — voids a payment and recomputes
// the order's payment status.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourcePayment) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var payment models.Payment
	if err := h.DB.First(&payment, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Paiement introuvable", nil)
		return
	}
	if payment.Statut == "annulé" {
		httpx.Error(w, http.StatusConflict, "Paiement déjà annulé", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Update("statut", "annulé").Error; err != nil {
			return err
		}
		var order models.Order
		if err := tx.First(&order, payment.OrderID).Error; err != nil {
			return err
		}
		var paid float64
		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND statut = ?", order.ID, "validé").
			Select("COALESCE(SUM(montant), 0)").Scan(&paid).Error; err != nil {
			return err
		}
		status := models.PaymentPending
		switch {
		case paid >= order.TotalTTC && order.TotalTTC > 0:
			status = models.PaymentPaid
		case paid > 0:
			status = models.PaymentPartial
		}
		return tx.Model(&order).Update("payment_status", status).Error
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Paiement annulé")
}
