package handlers

import (
	"net/http"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/validation"
)

type SettingHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewSettingHandler(db *gorm.DB, gate *policy.Gate) *SettingHandler {
	return &SettingHandler{DB: db, Gate: gate}
}

// List: GET /api/settings — optionally filtered by category.
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceSetting) == nil {
		return
	}
	dbq := h.DB.Model(&models.Setting{})
	if cat := r.URL.Query().Get("category"); cat != "" {
		dbq = dbq.Where("category = ?", cat)
	}
	var settings []models.Setting
	if err := dbq.Order("category asc, key asc").Find(&settings).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

type settingRequest struct {
	Key      string `json:"key" validate:"required"`
	Value    string `json:"value"`
	Type     string `json:"type" validate:"required,oneof=string number boolean json"`
	Category string `json:"category"`
}

// Upsert: PUT /api/settings — creates or updates a setting by key.
func (h *SettingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceSetting) == nil {
		return
	}
	var req settingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	setting := models.Setting{
		Key:      validation.SanitizeString(req.Key),
		Value:    validation.SanitizeString(req.Value),
		Type:     req.Type,
		Category: validation.SanitizeString(req.Category),
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "category"}),
	}).Create(&setting).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}

var cutoffPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ListDeadlines: GET /api/settings/deadlines
func (h *SettingHandler) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceSetting) == nil {
		return
	}
	var deadlines []models.OrderDeadline
	if err := h.DB.Order("weekday asc").Find(&deadlines).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, deadlines)
}

type deadlineRequest struct {
	Weekday int    `json:"weekday" validate:"gte=0,lte=6"`
	Cutoff  string `json:"cutoff" validate:"required"`
	Active  bool   `json:"active"`
}

// UpsertDeadline: PUT /api/settings/deadlines — one cutoff per weekday.
func (h *SettingHandler) UpsertDeadline(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionUpdate, policy.ResourceSetting) == nil {
		return
	}
	var req deadlineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !cutoffPattern.MatchString(req.Cutoff) {
		httpx.Error(w, http.StatusBadRequest, "Heure limite invalide (HH:MM attendu)", nil)
		return
	}
	deadline := models.OrderDeadline{Weekday: req.Weekday, Cutoff: req.Cutoff, Active: req.Active}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "weekday"}},
		DoUpdates: clause.AssignmentColumns([]string{"cutoff", "active"}),
	}).Create(&deadline).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, deadline)
}
