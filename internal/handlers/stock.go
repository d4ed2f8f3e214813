package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/validation"
)

var errNegativeStock = errors.New("stock négatif")

type StockHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewStockHandler(db *gorm.DB, gate *policy.Gate) *StockHandler {
	return &StockHandler{DB: db, Gate: gate}
}

// Alerts: GET /api/stock/alerts — active products at or below their alert threshold.
func (h *StockHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceStock) == nil {
		return
	}
	var products []models.Product
	if err := h.DB.Where("active = ? AND stock <= stock_alert", true).
		Order("stock asc").Find(&products).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

type adjustStockRequest struct {
	ProductID uint    `json:"productId" validate:"required"`
	Delta     float64 `json:"delta" validate:"required"`
	Reason    string  `json:"reason" validate:"required"`
}

// Adjust: POST /api/stock/adjust — signed manual correction, never below zero.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceStock)
	if user == nil {
		return
	}
	var req adjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var product models.Product
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			return err
		}
		if product.Stock+req.Delta < 0 {
			return errNegativeStock
		}
		if err := tx.Model(&product).
			Update("stock", gorm.Expr("stock + ?", req.Delta)).Error; err != nil {
			return err
		}
		movement := models.StockMovement{
			ProductID: product.ID,
			Delta:     req.Delta,
			Reason:    validation.SanitizeString(req.Reason),
			UserID:    &user.ID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errNegativeStock):
			httpx.Error(w, http.StatusConflict, "Le stock ne peut pas devenir négatif", nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.Error(w, http.StatusNotFound, "Produit introuvable", nil)
		default:
			httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		}
		return
	}
	if err := h.DB.First(&product, req.ProductID).Error; err == nil {
		httpx.JSON(w, http.StatusOK, product)
		return
	}
	httpx.Message(w, http.StatusOK, "Stock ajusté")
}

// Movements: GET /api/stock/movements — paginated trace, filterable by product.
func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceStock) == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.DB.Model(&models.StockMovement{})
	if productID := r.URL.Query().Get("productId"); productID != "" {
		dbq = dbq.Where("product_id = ?", productID)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var movements []models.StockMovement
	if err := dbq.Order("created_at desc").Limit(p.Limit).Offset(p.Skip()).Find(&movements).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, movements, p.Meta(total))
}
