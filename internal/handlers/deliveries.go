package handlers

import (
	"net/http"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
)

type DeliveryHandler struct {
	DB   *gorm.DB
	Gate *policy.Gate
}

func NewDeliveryHandler(db *gorm.DB, gate *policy.Gate) *DeliveryHandler {
	return &DeliveryHandler{DB: db, Gate: gate}
}

// deliveryStop is one order on the tour sheet, with weight and parcel count
// so the livreur can load the truck.
type deliveryStop struct {
	Order      models.Order `json:"order"`
	WeightKg   float64      `json:"weightKg"`
	Parcels    int          `json:"parcels"`
	Notes      string       `json:"deliveryNotes"`
	CodePostal string       `json:"codePostal"`
	Ville      string       `json:"ville"`
}

// Tour: GET /api/deliveries/tour?date=AAAA-MM-JJ — the day's delivery sheet:
// every order ready or out for delivery, ordered by postal code.
func (h *DeliveryHandler) Tour(w http.ResponseWriter, r *http.Request) {
	if authorize(w, r, h.Gate, policy.ActionList, policy.ResourceDelivery) == nil {
		return
	}
	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Date invalide (AAAA-MM-JJ attendu)", nil)
			return
		}
		day = t
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var orders []models.Order
	err := h.DB.Preload("Shop").Preload("Items.Product").
		Where("status IN ? AND delivery_date >= ? AND delivery_date < ?",
			[]models.OrderStatus{models.OrderReady, models.OrderDelivering},
			start, start.AddDate(0, 0, 1)).
		Find(&orders).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
		return
	}
	stops := make([]deliveryStop, 0, len(orders))
	var totalWeight float64
	var totalParcels int
	for _, o := range orders {
		fin := services.ComputeOrderFinancials(&o)
		stops = append(stops, deliveryStop{
			Order:      o,
			WeightKg:   fin.TotalWeightKg,
			Parcels:    fin.PackageCount,
			Notes:      o.Shop.DeliveryNotes,
			CodePostal: o.Shop.CodePostal,
			Ville:      o.Shop.Ville,
		})
		totalWeight += fin.TotalWeightKg
		totalParcels += fin.PackageCount
	}
	// Ordonner la tournée par code postal.
	sort.Slice(stops, func(i, j int) bool { return stops[i].CodePostal < stops[j].CodePostal })
	httpx.JSON(w, http.StatusOK, map[string]any{
		"date":         start.Format("2006-01-02"),
		"stops":        stops,
		"totalWeight":  services.Round2(totalWeight),
		"totalParcels": totalParcels,
	})
}
