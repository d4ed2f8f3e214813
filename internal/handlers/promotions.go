package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
)

type PromotionHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewPromotionHandler(db *gorm.DB, gate *policy.Gate) *PromotionHandler {
	return &PromotionHandler{DB: db, Gate: gate}
}

// List: GET /api/promotions — active products carrying a promo price.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourcePromotion) == nil {
		return
	}
	var products []models.Product
	if err := h.DB.Where("promo_price IS NOT NULL AND active = ?", true).
		Preload("Category").Order("nom asc").Find(&products).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

type promotionRequest struct {
	PromoPrice float64 `json:"promoPrice" validate:"required,gt=0"`
}

// Set: PUT /api/promotions/{id} — puts a product on promotion. The promo price
// must undercut the standard T1 price.
func (h *PromotionHandler) Set(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourcePromotion) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var req promotionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Produit introuvable", nil)
		return
	}
	if req.PromoPrice >= product.PriceT1 {
		httpx.Error(w, http.StatusBadRequest, "Le prix promo doit être inférieur au prix T1", nil)
		return
	}
	price := services.Round2(req.PromoPrice)
	if err := h.DB.Model(&product).Update("promo_price", price).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	product.PromoPrice = &price
	httpx.JSON(w, http.StatusOK, product)
}

// Clear: DELETE /api/promotions/{id} — takes a product off promotion.
func (h *PromotionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionDelete, policy.ResourcePromotion) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	res := h.DB.Model(&models.Product{}).Where("id = ?", id).Update("promo_price", nil)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Produit introuvable", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Promotion retirée")
}
