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

type ProductHandler struct {
	DB     *gorm.DB
	Gate   *policy.Gate
	Prices *services.PriceService
}

func NewProductHandler(db *gorm.DB, gate *policy.Gate, prices *services.PriceService) *ProductHandler {
	return &ProductHandler{DB: db, Gate: gate, Prices: prices}
}

// List: GET /api/products — paginated, filterable by category and active flag.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceProduct) == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	dbq := h.DB.Model(&models.Product{})
	if cat := q.Get("categoryId"); cat != "" {
		dbq = dbq.Where("category_id = ?", cat)
	}
	if q.Get("active") == "true" {
		dbq = dbq.Where("active = ?", true)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var products []models.Product
	if err := dbq.Preload("Category").Preload("SubCategory").
		Order("nom asc").Limit(p.Limit).Offset(p.Skip()).Find(&products).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, products, p.Meta(total))
}

// Search: GET /api/products/search?q= — name, SKU or barcode.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceProduct) == nil {
		return
	}
	term := validation.SanitizeString(r.URL.Query().Get("q"))
	if term == "" {
		httpx.Error(w, http.StatusBadRequest, "Paramètre q requis", nil)
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	var products []models.Product
	if err := h.DB.Preload("Category").
		Where("lower(nom) LIKE ? OR lower(sku) LIKE ? OR barcode = ?", like, like, term).
		Limit(50).Find(&products).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// Get: GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionView, policy.ResourceProduct) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var product models.Product
	if err := h.DB.Preload("Category").Preload("SubCategory").First(&product, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Produit introuvable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

type productRequest struct {
	SKU           string  `json:"sku" validate:"required"`
	Nom           string  `json:"nom" validate:"required"`
	Description   string  `json:"description"`
	CategoryID    uint    `json:"categoryId" validate:"required"`
	SubCategoryID *uint   `json:"subCategoryId"`
	Unit          string  `json:"unit"`
	PriceT1       float64 `json:"priceT1" validate:"required,gt=0"`
	PriceT2       float64 `json:"priceT2" validate:"gte=0"`
	CessionPrice  float64 `json:"cessionPrice" validate:"gte=0"`
	TVARate       float64 `json:"tvaRate" validate:"gte=0,lte=1"`
	Stock         float64 `json:"stock" validate:"gte=0"`
	StockAlert    float64 `json:"stockAlert" validate:"gte=0"`
	Origin        string  `json:"origin"`
	Packaging     string  `json:"packaging"`
	Presentation  string  `json:"presentation"`
	Barcode       string  `json:"barcode"`
	Active        *bool   `json:"active"`
}

// Create: POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceProduct) == nil {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	packaging := models.Packaging(req.Packaging)
	if req.Packaging == "" {
		packaging = models.PackagingCaisse
	}
	if !packaging.Valid() {
		httpx.Error(w, http.StatusBadRequest, "Code colisage inconnu", map[string]string{"packaging": req.Packaging})
		return
	}
	product := models.Product{
		SKU:           strings.ToUpper(validation.SanitizeString(req.SKU)),
		Nom:           validation.SanitizeString(req.Nom),
		Description:   validation.SanitizeString(req.Description),
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Unit:          req.Unit,
		PriceT1:       req.PriceT1,
		PriceT2:       req.PriceT2,
		CessionPrice:  req.CessionPrice,
		TVARate:       req.TVARate,
		Stock:         req.Stock,
		StockAlert:    req.StockAlert,
		Origin:        validation.SanitizeString(req.Origin),
		Packaging:     packaging,
		Presentation:  validation.SanitizeString(req.Presentation),
		Barcode:       req.Barcode,
		Active:        req.Active == nil || *req.Active,
	}
	if product.Unit == "" {
		product.Unit = "kg"
	}
	if err := h.DB.Create(&product).Error; err != nil {
		httpx.Error(w, http.StatusConflict, "SKU déjà utilisé", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update: PUT /api/products/{id} — price changes go through the price service
// so the history stays complete.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceProduct) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Produit introuvable", nil)
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PriceT1 != product.PriceT1 || req.PriceT2 != product.PriceT2 {
		if err := h.Prices.Change(product.ID, req.PriceT1, req.PriceT2, "modification manuelle"); err != nil {
			httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
			return
		}
	}
	updates := map[string]any{
		"nom":           validation.SanitizeString(req.Nom),
		"description":   validation.SanitizeString(req.Description),
		"category_id":   req.CategoryID,
		"cession_price": req.CessionPrice,
		"tva_rate":      req.TVARate,
		"stock_alert":   req.StockAlert,
		"origin":        validation.SanitizeString(req.Origin),
		"presentation":  validation.SanitizeString(req.Presentation),
		"barcode":       req.Barcode,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Packaging != "" {
		packaging := models.Packaging(req.Packaging)
		if !packaging.Valid() {
			httpx.Error(w, http.StatusBadRequest, "Code colisage inconnu", map[string]string{"packaging": req.Packaging})
			return
		}
		updates["packaging"] = packaging
	}
	if err := h.DB.Model(&product).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if err := h.DB.Preload("Category").First(&product, id).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: DELETE /api/products/{id} — soft delete.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionDelete, policy.ResourceProduct) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Produit introuvable", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Produit supprimé")
}

// PriceHistory: GET /api/products/{id}/prices
func (h *ProductHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionView, policy.ResourceProduct) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var history []models.PriceHistory
	if err := h.DB.Where("product_id = ?", id).Order("created_at desc").Limit(100).Find(&history).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}
