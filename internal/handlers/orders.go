package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
	"github.com/primeo/api/internal/validation"
)

type OrderHandler struct {
	DB     *gorm.DB
	Gate   *policy.Gate
	Orders *services.OrderService
}

func NewOrderHandler(db *gorm.DB, gate *policy.Gate, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{DB: db, Gate: gate, Orders: orders}
}

// scopeForUser restricts order queries to what the role may see: clients only
// see their own shops' orders, everyone else sees all.
func (h *OrderHandler) scopeForUser(user *models.User, q *gorm.DB) *gorm.DB {
	if user.Role == models.RoleClient {
		return q.Where("shop_id IN (?)", h.DB.Model(&models.Shop{}).Select("id").Where("user_id = ?", user.ID))
	}
	return q
}

// List: GET /api/orders — paginated, filterable by status and delivery date.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionList, policy.ResourceOrder)
	if user == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	dbq := h.scopeForUser(user, h.DB.Model(&models.Order{}))
	if status := q.Get("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			httpx.Error(w, http.StatusBadRequest, "Statut inconnu", nil)
			return
		}
		dbq = dbq.Where("status = ?", status)
	}
	if day := q.Get("deliveryDate"); day != "" {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Date invalide (AAAA-MM-JJ attendu)", nil)
			return
		}
		dbq = dbq.Where("delivery_date >= ? AND delivery_date < ?", t, t.AddDate(0, 0, 1))
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var orders []models.Order
	if err := dbq.Preload("Shop").Preload("Items.Product").
		Order("created_at desc").Limit(p.Limit).Offset(p.Skip()).Find(&orders).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, orders, p.Meta(total))
}

type createOrderRequest struct {
	ShopID       uint                 `json:"shopId" validate:"required"`
	DeliveryDate string               `json:"deliveryDate"`
	Notes        string               `json:"notes"`
	Items        []services.OrderLine `json:"items" validate:"required,min=1,dive"`
}

// Create: POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceOrder)
	if user == nil {
		return
	}
	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var shop models.Shop
	if err := h.DB.First(&shop, req.ShopID).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Magasin introuvable", nil)
		return
	}
	// A client can only order for their own shops.
	if user.Role == models.RoleClient && shop.UserID != user.ID {
		httpx.Error(w, http.StatusForbidden, "Accès refusé", nil)
		return
	}
	var deliveryDate *time.Time
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Date de livraison invalide", nil)
			return
		}
		deliveryDate = &t
	}
	order, err := h.Orders.Create(shop.ID, deliveryDate, validation.SanitizeString(req.Notes), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownProduct):
			httpx.Error(w, http.StatusBadRequest, "Produit inconnu ou supprimé", nil)
		case errors.Is(err, services.ErrInsufficientStock):
			httpx.Error(w, http.StatusConflict, "Stock insuffisant", map[string]string{"detail": err.Error()})
		case errors.Is(err, services.ErrEmptyOrder):
			httpx.Error(w, http.StatusBadRequest, "Lignes de commande invalides", nil)
		default:
			httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// Get: GET /api/orders/{id} — includes the financial aggregation.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionView, policy.ResourceOrder)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var order models.Order
	if err := h.scopeForUser(user, h.DB).Preload("Shop").Preload("Items.Product").First(&order, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Commande introuvable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order":      order,
		"financials": services.ComputeOrderFinancials(&order),
	})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus: PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceOrder)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.Orders.UpdateStatus(id, models.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			httpx.Error(w, http.StatusBadRequest, "Transition de statut invalide", map[string]string{"detail": err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "Commande introuvable", nil)
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
