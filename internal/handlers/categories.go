package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/validation"
)

type CategoryHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewCategoryHandler(db *gorm.DB, gate *policy.Gate) *CategoryHandler {
	return &CategoryHandler{DB: db, Gate: gate}
}

// List: GET /api/categories — full tree with subcategories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceCategory) == nil {
		return
	}
	var categories []models.Category
	if err := h.DB.Preload("SubCategories").Order("nom asc").Find(&categories).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Nom         string `json:"nom" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Active      *bool  `json:"active"`
}

// Create: POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceCategory) == nil {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := models.Category{
		Nom:         validation.SanitizeString(req.Nom),
		Description: validation.SanitizeString(req.Description),
		Icon:        req.Icon,
		Color:       req.Color,
		Active:      req.Active == nil || *req.Active,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

// Update: PUT /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceCategory) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Catégorie introuvable", nil)
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updates := map[string]any{
		"nom":         validation.SanitizeString(req.Nom),
		"description": validation.SanitizeString(req.Description),
		"icon":        req.Icon,
		"color":       req.Color,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := h.DB.Model(&category).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

// Delete: DELETE /api/categories/{id} — soft delete, cascades to subcategories.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionDelete, policy.ResourceCategory) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.SubCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "Catégorie supprimée")
}

type subCategoryRequest struct {
	Nom         string `json:"nom" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Active      *bool  `json:"active"`
}

// CreateSub: POST /api/categories/{id}/subcategories
func (h *CategoryHandler) CreateSub(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionCreate, policy.ResourceCategory) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return
	}
	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Catégorie introuvable", nil)
		return
	}
	var req subCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub := models.SubCategory{
		CategoryID:  category.ID,
		Nom:         validation.SanitizeString(req.Nom),
		Description: validation.SanitizeString(req.Description),
		Icon:        req.Icon,
		Active:      req.Active == nil || *req.Active,
	}
	if err := h.DB.Create(&sub).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}
