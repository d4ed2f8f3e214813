package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/models"
)

var (
	ErrEmptyOrder        = errors.New("commande sans ligne")
	ErrUnknownProduct    = errors.New("produit inconnu ou supprimé")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrInvalidTransition = errors.New("transition de statut invalide")
)

// OrderService encapsulates order-related business logic.
type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService { return &OrderService{DB: db} }

// WithTx returns a service bound to the given transaction.
func (s *OrderService) WithTx(tx *gorm.DB) *OrderService { return &OrderService{DB: tx} }

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID     uint    `json:"productId" validate:"required"`
	Quantity      float64 `json:"quantity" validate:"required,gt=0"`
	PromoQuantity float64 `json:"promoQuantity" validate:"gte=0"`
	// PriceTier selects T1 (standard) or T2 (contrat); defaults to T1.
	PriceTier string `json:"priceTier" validate:"omitempty,oneof=T1 T2"`
}

// Create persists an order with its items in one transaction, decrements
// product stock and computes totals. Lines referencing soft-deleted products
// are rejected.
func (s *OrderService) Create(shopID uint, deliveryDate *time.Time, notes string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	var products []models.Product
	if err := s.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("chargement produits: %w", err)
	}
	if len(products) != len(ids) {
		return nil, ErrUnknownProduct
	}
	prodByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		prodByID[p.ID] = p
	}

	order := models.Order{
		ShopID:       shopID,
		Number:       newOrderNumber(),
		Status:       models.OrderPending,
		DeliveryDate: deliveryDate,
		Notes:        notes,
	}
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		p := prodByID[l.ProductID]
		if l.Quantity <= 0 || l.PromoQuantity < 0 || l.PromoQuantity > l.Quantity {
			return nil, fmt.Errorf("ligne produit %d: %w", l.ProductID, ErrEmptyOrder)
		}
		if p.Stock < l.Quantity {
			return nil, fmt.Errorf("produit %s: %w", p.SKU, ErrInsufficientStock)
		}
		price := p.PriceT1
		if l.PriceTier == "T2" && p.PriceT2 > 0 {
			price = p.PriceT2
		}
		if l.PromoQuantity > 0 && p.PromoPrice != nil {
			price = *p.PromoPrice
		}
		lineHT := Round2(l.Quantity * price)
		lineTVA := Round2(lineHT * p.TVARate)
		items = append(items, models.OrderItem{
			ProductID:     p.ID,
			Quantity:      l.Quantity,
			PromoQuantity: l.PromoQuantity,
			UnitPrice:     price,
			LineHT:        lineHT,
			LineTVA:       lineTVA,
			LineTTC:       Round2(lineHT + lineTVA),
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}
		// Totals persisted on the order row.
		order.Items = items
		for i := range order.Items {
			order.Items[i].Product = prodByID[order.Items[i].ProductID]
		}
		ht, tva, ttc := ComputeTotals(&order)
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"total_ht": ht, "total_tva": tva, "total_ttc": ttc}).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Items.Product").Preload("Shop").First(&order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("rechargement commande: %w", err)
	}
	return &order, nil
}

// statusGraph lists the allowed next statuses for each order status.
var statusGraph = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed:  {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing:  {models.OrderReady, models.OrderCancelled},
	models.OrderReady:      {models.OrderDelivering},
	models.OrderDelivering: {models.OrderDelivered},
	models.OrderDelivered:  {},
	models.OrderCancelled:  {},
}

// UpdateStatus moves an order along the lifecycle, rejecting invalid jumps.
// Cancelling restores product stock.
func (s *OrderService) UpdateStatus(orderID uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}
	var order models.Order
	if err := s.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	allowed := false
	for _, st := range statusGraph[order.Status] {
		if st == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, next, ErrInvalidTransition)
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if next == models.OrderCancelled {
			for _, it := range order.Items {
				if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
					return err
				}
			}
		}
		return tx.Model(&order).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}
	order.Status = next
	return &order, nil
}

func newOrderNumber() string {
	return fmt.Sprintf("CMD-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8])
}
