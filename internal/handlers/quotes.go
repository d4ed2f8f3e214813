package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
)

type QuoteHandler struct {
	DB     *gorm.DB
	Gate   *policy.Gate
	Orders *services.OrderService
}

func NewQuoteHandler(db *gorm.DB, gate *policy.Gate, orders *services.OrderService) *QuoteHandler {
	return &QuoteHandler{DB: db, Gate: gate, Orders: orders}
}

// List: GET /api/quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceQuote) == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.DB.Model(&models.Quote{})
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var quotes []models.Quote
	if err := dbq.Preload("Shop").Preload("Items.Product").
		Order("created_at desc").Limit(p.Limit).Offset(p.Skip()).Find(&quotes).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, quotes, p.Meta(total))
}

type quoteItemRequest struct {
	ProductID uint    `json:"productId" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"required,gt=0"`
}

type quoteRequest struct {
	ShopID     uint               `json:"shopId" validate:"required"`
	ValidUntil string             `json:"validUntil"`
	Items      []quoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Create: POST /api/quotes — a draft proposal with free unit prices.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceQuote) == nil {
		return
	}
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var shop models.Shop
	if err := h.DB.First(&shop, req.ShopID).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Magasin introuvable", nil)
		return
	}
	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Date de validité invalide", nil)
			return
		}
		validUntil = &t
	}
	quote := models.Quote{ShopID: shop.ID, Status: "draft", ValidUntil: validUntil}
	var totalHT, totalTTC float64
	for _, it := range req.Items {
		var product models.Product
		if err := h.DB.First(&product, it.ProductID).Error; err != nil {
			httpx.Error(w, http.StatusBadRequest, "Produit inconnu ou supprimé", nil)
			return
		}
		lineHT := services.Round2(it.Quantity * it.UnitPrice)
		totalHT += lineHT
		totalTTC += services.Round2(lineHT * (1 + product.TVARate))
		quote.Items = append(quote.Items, models.QuoteItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: services.Round2(it.UnitPrice),
		})
	}
	quote.TotalHT = services.Round2(totalHT)
	quote.TotalTTC = services.Round2(totalTTC)
	if err := h.DB.Create(&quote).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

var quoteStatusGraph = map[string][]string{
	"draft":    {"sent"},
	"sent":     {"accepted", "refused"},
	"accepted": {},
	"refused":  {},
}

type quoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sent accepted refused"`
}

// UpdateStatus: PATCH /api/quotes/{id}/status — accepting a quote converts it
// into a real order, re-priced at the tariff in force.
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceQuote) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var req quoteStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var quote models.Quote
	if err := h.DB.Preload("Items").First(&quote, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Devis introuvable", nil)
		return
	}
	allowed := false
	for _, st := range quoteStatusGraph[quote.Status] {
		if st == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		httpx.Error(w, http.StatusBadRequest, "Transition de statut invalide", nil)
		return
	}
	if quote.ValidUntil != nil && time.Now().After(*quote.ValidUntil) && req.Status == "accepted" {
		httpx.Error(w, http.StatusConflict, "Devis expiré", nil)
		return
	}
	if req.Status != "accepted" {
		if err := h.DB.Model(&quote).Update("status", req.Status).Error; err != nil {
			httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
			return
		}
		quote.Status = req.Status
		httpx.JSON(w, http.StatusOK, quote)
		return
	}
	// Acceptance and conversion commit together: a failed conversion must
	// leave the quote in its previous status so it can be retried.
	lines := make([]services.OrderLine, 0, len(quote.Items))
	for _, it := range quote.Items {
		lines = append(lines, services.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	notes := fmt.Sprintf("Converti depuis le devis #%d", quote.ID)
	var order *models.Order
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quote).Update("status", req.Status).Error; err != nil {
			return err
		}
		o, err := h.Orders.WithTx(tx).Create(quote.ShopID, nil, notes, lines)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientStock):
			httpx.Error(w, http.StatusConflict, "Stock insuffisant pour convertir le devis", nil)
		case errors.Is(err, services.ErrUnknownProduct):
			httpx.Error(w, http.StatusBadRequest, "Produit inconnu ou supprimé", nil)
		default:
			httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		}
		return
	}
	quote.Status = req.Status
	httpx.JSON(w, http.StatusOK, map[string]any{"quote": quote, "order": order})
}
