package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
)

type InvoiceHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewInvoiceHandler(db *gorm.DB, gate *policy.Gate) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Gate: gate}
}

// scopeForUser restricts invoice queries for clients to invoices of their own
// shops' orders, mirroring the order scoping.
func (h *InvoiceHandler) scopeForUser(user *models.User, q *gorm.DB) *gorm.DB {
	if user.Role == models.RoleClient {
		shops := h.DB.Model(&models.Shop{}).Select("id").Where("user_id = ?", user.ID)
		orders := h.DB.Model(&models.Order{}).Select("id").Where("shop_id IN (?)", shops)
		return q.Where("order_id IN (?)", orders)
	}
	return q
}

// List: GET /api/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionList, policy.ResourceInvoice)
	if user == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.scopeForUser(user, h.DB.Model(&models.Invoice{}))
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var invoices []models.Invoice
	if err := dbq.Preload("Order.Shop").Order("issued_at desc").
		Limit(p.Limit).Offset(p.Skip()).Find(&invoices).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, invoices, p.Meta(total))
}

// Get: GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionView, policy.ResourceInvoice)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var invoice models.Invoice
	if err := h.scopeForUser(user, h.DB).Preload("Order.Shop").Preload("Order.Items.Product").First(&invoice, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Facture introuvable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// CreateForOrder: POST /api/orders/{id}/invoice — emits the invoice for a
// delivered order. Idempotent: re-posting returns the existing invoice.
func (h *InvoiceHandler) CreateForOrder(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceInvoice) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Commande introuvable", nil)
		return
	}
	var existing models.Invoice
	err := h.DB.Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		httpx.JSON(w, http.StatusOK, existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if order.Status != models.OrderDelivered {
		httpx.Error(w, http.StatusConflict, "Seule une commande livrée peut être facturée", nil)
		return
	}
	now := time.Now()
	due := now.AddDate(0, 0, 30)
	invoice := models.Invoice{
		Number:   newInvoiceNumber(now),
		OrderID:  order.ID,
		TotalHT:  order.TotalHT,
		TotalTVA: order.TotalTVA,
		TotalTTC: order.TotalTTC,
		Status:   "émise",
		IssuedAt: now,
		DueAt:    &due,
	}
	if err := h.DB.Create(&invoice).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func newInvoiceNumber(t time.Time) string {
	return "FAC-" + t.Format("20060102") + "-" + uuid.NewString()[:8]
}
