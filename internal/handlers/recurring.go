package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/logger"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
)

type RecurringHandler struct {
	DB     *gorm.DB
	Gate   *policy.Gate
	Orders *services.OrderService
}

func NewRecurringHandler(db *gorm.DB, gate *policy.Gate, orders *services.OrderService) *RecurringHandler {
	return &RecurringHandler{DB: db, Gate: gate, Orders: orders}
}

// List: GET /api/recurring-orders
func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceRecurringOrder) == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.DB.Model(&models.RecurringOrder{})
	if r.URL.Query().Get("active") == "true" {
		dbq = dbq.Where("active = ?", true)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var recurrences []models.RecurringOrder
	if err := dbq.Preload("Shop").Preload("Items.Product").
		Order("next_date asc").Limit(p.Limit).Offset(p.Skip()).Find(&recurrences).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, recurrences, p.Meta(total))
}

type recurringItemRequest struct {
	ProductID uint    `json:"productId" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

type recurringRequest struct {
	ShopID    uint                   `json:"shopId" validate:"required"`
	Frequency string                 `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	NextDate  string                 `json:"nextDate" validate:"required"`
	Items     []recurringItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Create: POST /api/recurring-orders
func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceRecurringOrder) == nil {
		return
	}
	var req recurringRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var shop models.Shop
	if err := h.DB.First(&shop, req.ShopID).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Magasin introuvable", nil)
		return
	}
	nextDate, err := time.Parse("2006-01-02", req.NextDate)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Date invalide (AAAA-MM-JJ attendu)", nil)
		return
	}
	rec := models.RecurringOrder{
		ShopID:    shop.ID,
		Frequency: req.Frequency,
		NextDate:  nextDate,
		Active:    true,
	}
	for _, it := range req.Items {
		rec.Items = append(rec.Items, models.RecurringOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	if err := h.DB.Create(&rec).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

// Toggle: PATCH /api/recurring-orders/{id}/toggle
func (h *RecurringHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceRecurringOrder) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var rec models.RecurringOrder
	if err := h.DB.First(&rec, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Commande récurrente introuvable", nil)
		return
	}
	if err := h.DB.Model(&rec).Update("active", !rec.Active).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	rec.Active = !rec.Active
	httpx.JSON(w, http.StatusOK, rec)
}

// Delete: DELETE /api/recurring-orders/{id}
func (h *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionDelete, policy.ResourceRecurringOrder) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recurring_order_id = ?", id).Delete(&models.RecurringOrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.RecurringOrder{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			httpx.Error(w, http.StatusNotFound, "Commande récurrente introuvable", nil)
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Commande récurrente supprimée")
}

type runResult struct {
	Created int   `json:"created"`
	Skipped int   `json:"skipped"`
	Orders  []any `json:"orders"`
}

// Run: POST /api/recurring-orders/run — materializes every due recurrence into
// a real order and advances its next date. Recurrences failing on stock are
// skipped, not fatal.
func (h *RecurringHandler) Run(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceRecurringOrder) == nil {
		return
	}
	var due []models.RecurringOrder
	if err := h.DB.Preload("Items").
		Where("active = ? AND next_date <= ?", true, time.Now()).Find(&due).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	result := runResult{Orders: []any{}}
	for _, rec := range due {
		lines := make([]services.OrderLine, 0, len(rec.Items))
		for _, it := range rec.Items {
			lines = append(lines, services.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		order, err := h.Orders.Create(rec.ShopID, nil, "Commande récurrente", lines)
		if err != nil {
			logger.Get().WithField("recurringOrderId", rec.ID).
				WithField("error", err.Error()).Warn("recurrence ignorée")
			result.Skipped++
			continue
		}
		next := advanceDate(rec.NextDate, rec.Frequency)
		if err := h.DB.Model(&rec).Update("next_date", next).Error; err != nil {
			httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
			return
		}
		result.Created++
		result.Orders = append(result.Orders, order)
	}
	httpx.JSON(w, http.StatusOK, result)
}

func advanceDate(from time.Time, frequency string) time.Time {
	switch frequency {
	case "biweekly":
		return from.AddDate(0, 0, 14)
	case "monthly":
		return from.AddDate(0, 1, 0)
	default: // weekly
		return from.AddDate(0, 0, 7)
	}
}
