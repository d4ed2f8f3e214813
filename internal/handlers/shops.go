package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/validation"
)

type ShopHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewShopHandler(db *gorm.DB, gate *policy.Gate) *ShopHandler {
	return &ShopHandler{DB: db, Gate: gate}
}

func (h *ShopHandler) scopeForUser(user *models.User, q *gorm.DB) *gorm.DB {
	if user.Role == models.RoleClient {
		return q.Where("user_id = ?", user.ID)
	}
	return q
}

// List: GET /api/shops
func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionList, policy.ResourceShop)
	if user == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.scopeForUser(user, h.DB.Model(&models.Shop{}))
	if city := r.URL.Query().Get("ville"); city != "" {
		dbq = dbq.Where("ville LIKE ?", "%"+city+"%")
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var shops []models.Shop
	if err := dbq.Order("nom asc").Limit(p.Limit).Offset(p.Skip()).Find(&shops).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, shops, p.Meta(total))
}

// Get: GET /api/shops/{id}
func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionView, policy.ResourceShop)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var shop models.Shop
	if err := h.scopeForUser(user, h.DB).First(&shop, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Magasin introuvable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

type shopRequest struct {
	UserID        uint   `json:"userId"`
	Nom           string `json:"nom" validate:"required"`
	NomCommercial string `json:"nomCommercial"`
	SIRET         string `json:"siret"`
	TVAIntra      string `json:"tvaIntra"`
	Ligne1        string `json:"ligne1" validate:"required"`
	Ligne2        string `json:"ligne2"`
	CodePostal    string `json:"codePostal" validate:"required"`
	Ville         string `json:"ville" validate:"required"`
	Telephone     string `json:"telephone"`
	DeliveryNotes string `json:"deliveryNotes"`
}

func (req *shopRequest) apply(shop *models.Shop) {
	shop.Nom = validation.SanitizeString(req.Nom)
	shop.NomCommercial = validation.SanitizeString(req.NomCommercial)
	shop.SIRET = validation.SanitizeString(req.SIRET)
	shop.TVAIntra = validation.SanitizeString(req.TVAIntra)
	shop.Ligne1 = validation.SanitizeString(req.Ligne1)
	shop.Ligne2 = validation.SanitizeString(req.Ligne2)
	shop.CodePostal = validation.SanitizeString(req.CodePostal)
	shop.Ville = validation.SanitizeString(req.Ville)
	shop.Telephone = validation.SanitizeString(req.Telephone)
	shop.DeliveryNotes = validation.SanitizeString(req.DeliveryNotes)
}

// Create: POST /api/shops
func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceShop)
	if user == nil {
		return
	}
	var req shopRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	shop := models.Shop{UserID: req.UserID}
	// Clients create shops for themselves, no matter what the payload says.
	if user.Role == models.RoleClient || shop.UserID == 0 {
		shop.UserID = user.ID
	}
	req.apply(&shop)
	if err := h.DB.Create(&shop).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, shop)
}

// Update: PUT /api/shops/{id}
func (h *ShopHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceShop)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var shop models.Shop
	if err := h.scopeForUser(user, h.DB).First(&shop, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Magasin introuvable", nil)
		return
	}
	var req shopRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.apply(&shop)
	if err := h.DB.Save(&shop).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

// Delete: DELETE /api/shops/{id}
func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionDelete, policy.ResourceShop) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Order{}).Where("shop_id = ?", id).Count(&count).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if count > 0 {
		httpx.Error(w, http.StatusConflict, "Magasin avec commandes existantes, suppression impossible", nil)
		return
	}
	res := h.DB.Delete(&models.Shop{}, id)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Magasin introuvable", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Magasin supprimé")
}
