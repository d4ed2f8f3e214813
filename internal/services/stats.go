package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/models"
)

// DashboardStats feeds the admin dashboard.
type DashboardStats struct {
	Users         int64        `json:"users"`
	Shops         int64        `json:"shops"`
	Products      int64        `json:"products"`
	Orders        int64        `json:"orders"`
	PendingOrders int64        `json:"pendingOrders"`
	RevenueTTC    float64      `json:"revenueTTC"`
	RevenueMonth  float64      `json:"revenueMonth"`
	LowStockCount int64        `json:"lowStockCount"`
	UnpaidOrders  int64        `json:"unpaidOrders"`
	TopProducts   []TopProduct `json:"topProducts"`
}

// TopProduct is one row of the best-seller ranking.
type TopProduct struct {
	ProductID uint    `json:"productId"`
	Nom       string  `json:"nom"`
	Quantity  float64 `json:"quantity"`
}

// StatsService aggregates dashboard figures.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService { return &StatsService{DB: db} }

// Dashboard counts the main entities and sums revenue over delivered orders.
func (s *StatsService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	type counter struct {
		dst   *int64
		model any
		where []any
	}
	counters := []counter{
		{&stats.Users, &models.User{}, nil},
		{&stats.Shops, &models.Shop{}, nil},
		{&stats.Products, &models.Product{}, nil},
		{&stats.Orders, &models.Order{}, nil},
		{&stats.PendingOrders, &models.Order{}, []any{"status = ?", models.OrderPending}},
		{&stats.UnpaidOrders, &models.Order{}, []any{"payment_status = ?", models.PaymentPending}},
		{&stats.LowStockCount, &models.Product{}, []any{"stock <= stock_alert"}},
	}
	for _, c := range counters {
		q := s.DB.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var revenue float64
	if err := s.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderDelivered).
		Select("COALESCE(SUM(total_ttc), 0)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.RevenueTTC = Round2(revenue)

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)
	var revenueMonth float64
	if err := s.DB.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderDelivered, monthStart).
		Select("COALESCE(SUM(total_ttc), 0)").Scan(&revenueMonth).Error; err != nil {
		return nil, err
	}
	stats.RevenueMonth = Round2(revenueMonth)

	if err := s.DB.Model(&models.OrderItem{}).
		Select("order_items.product_id, products.nom, SUM(order_items.quantity) AS quantity").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("order_items.product_id, products.nom").
		Order("quantity DESC").
		Limit(5).
		Scan(&stats.TopProducts).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
