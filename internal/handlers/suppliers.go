package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/validation"
)

type SupplierHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewSupplierHandler(db *gorm.DB, gate *policy.Gate) *SupplierHandler {
	return &SupplierHandler{DB: db, Gate: gate}
}

// List: GET /api/suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceSupplier) == nil {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}
	dbq := h.DB.Model(&models.Supplier{})
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("nom LIKE ?", "%"+q+"%")
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	var suppliers []models.Supplier
	if err := dbq.Order("nom asc").Limit(p.Limit).Offset(p.Skip()).Find(&suppliers).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Paginated(w, suppliers, p.Meta(total))
}

type supplierRequest struct {
	Nom               string `json:"nom" validate:"required"`
	Contact           string `json:"contact"`
	Email             string `json:"email" validate:"omitempty,email"`
	Telephone         string `json:"telephone"`
	Adresse           string `json:"adresse"`
	SIRET             string `json:"siret"`
	TVAIntra          string `json:"tvaIntra"`
	PaymentTerms      string `json:"paymentTerms"`
	DeliveryDelayDays int    `json:"deliveryDelayDays" validate:"gte=0"`
	Notes             string `json:"notes"`
}

func (req *supplierRequest) apply(s *models.Supplier) {
	s.Nom = validation.SanitizeString(req.Nom)
	s.Contact = validation.SanitizeString(req.Contact)
	s.Email = strings.ToLower(strings.TrimSpace(req.Email))
	s.Telephone = validation.SanitizeString(req.Telephone)
	s.Adresse = validation.SanitizeString(req.Adresse)
	s.SIRET = validation.SanitizeString(req.SIRET)
	s.TVAIntra = validation.SanitizeString(req.TVAIntra)
	s.PaymentTerms = validation.SanitizeString(req.PaymentTerms)
	s.DeliveryDelayDays = req.DeliveryDelayDays
	s.Notes = validation.SanitizeString(req.Notes)
}

// Create: POST /api/suppliers
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceSupplier) == nil {
		return
	}
	var req supplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var supplier models.Supplier
	req.apply(&supplier)
	if err := h.DB.Create(&supplier).Error; err != nil {
		httpx.Error(w, http.StatusConflict, "Un fournisseur avec ce nom existe déjà", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

// Update: PUT /api/suppliers/{id}
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceSupplier) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var supplier models.Supplier
	if err := h.DB.First(&supplier, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Fournisseur introuvable", nil)
		return
	}
	var req supplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.apply(&supplier)
	if err := h.DB.Save(&supplier).Error; err != nil {
		httpx.Error(w, http.StatusConflict, "Un fournisseur avec ce nom existe déjà", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

// Delete: DELETE /api/suppliers/{id}
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionDelete, policy.ResourceSupplier) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	res := h.DB.Delete(&models.Supplier{}, id)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Fournisseur introuvable", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Fournisseur supprimé")
}
