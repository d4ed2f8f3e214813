package models

import "time"

// OrderStatus follows the preparation/delivery lifecycle.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderPreparing  OrderStatus = "preparing"
	OrderReady      OrderStatus = "ready"
	OrderDelivering OrderStatus = "delivering"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderDelivering, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// PaymentStatus of an order as a whole.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"size:30;not null;uniqueIndex" json:"number"`
	ShopID uint   `gorm:"not null;index" json:"shopId"`
	Shop   Shop   `gorm:"foreignKey:ShopID" json:"shop,omitzero"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	// Totaux calculés à la création (HT, TVA, TTC).
	TotalHT  float64 `json:"totalHT"`
	TotalTVA float64 `json:"totalTVA"`
	TotalTTC float64 `json:"totalTTC"`

	DeliveryDate *time.Time `gorm:"index" json:"deliveryDate,omitempty"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"orderId"`
	ProductID uint    `gorm:"not null;index" json:"productId"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitzero"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
	// Quantité vendue au prix promo, incluse dans Quantity.
	PromoQuantity float64 `json:"promoQuantity"`
	UnitPrice     float64 `gorm:"not null" json:"unitPrice"`
	LineHT        float64 `json:"lineHT"`
	LineTVA       float64 `json:"lineTVA"`
	LineTTC       float64 `json:"lineTTC"`
}

// Payment tied to orders
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     uint       `gorm:"not null;index" json:"orderId"`
	Order       Order      `gorm:"foreignKey:OrderID" json:"-"`
	Montant     float64    `gorm:"not null" json:"montant"`
	Mode        string     `gorm:"not null" json:"mode"` // ex: virement, CB, chèque, espèces
	Statut      string     `gorm:"not null;default:'pending'" json:"statut"`
	Reference   string     `json:"reference"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	Commentaire string     `json:"commentaire"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Invoice issued for a delivered order. One invoice per order, totals frozen
// at issue time.
type Invoice struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Number   string  `gorm:"size:30;not null;uniqueIndex" json:"number"`
	OrderID  uint    `gorm:"not null;uniqueIndex" json:"orderId"`
	Order    Order   `gorm:"foreignKey:OrderID" json:"order,omitzero"`
	TotalHT  float64 `json:"totalHT"`
	TotalTVA float64 `json:"totalTVA"`
	TotalTTC float64 `json:"totalTTC"`
	// brouillon, émise, payée, annulée
	Status    string     `gorm:"not null;default:'émise'" json:"status"`
	IssuedAt  time.Time  `json:"issuedAt"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Quote is a priced proposal a commercial sends to a shop; it can be converted
// into an order once accepted.
type Quote struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	ShopID     uint        `gorm:"not null;index" json:"shopId"`
	Shop       Shop        `gorm:"foreignKey:ShopID" json:"shop,omitzero"`
	Status     string      `gorm:"not null;default:'draft'" json:"status"` // draft, sent, accepted, refused
	Items      []QuoteItem `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
	TotalHT    float64     `json:"totalHT"`
	TotalTTC   float64     `json:"totalTTC"`
	ValidUntil *time.Time  `json:"validUntil,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type QuoteItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	QuoteID   uint    `gorm:"not null;index" json:"quoteId"`
	ProductID uint    `gorm:"not null" json:"productId"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitzero"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unitPrice"`
}

// RecurringOrder re-creates the same basket on a fixed cadence.
type RecurringOrder struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	ShopID    uint                 `gorm:"not null;index" json:"shopId"`
	Shop      Shop                 `gorm:"foreignKey:ShopID" json:"shop,omitzero"`
	Frequency string               `gorm:"not null" json:"frequency"` // weekly, biweekly, monthly
	NextDate  time.Time            `gorm:"index" json:"nextDate"`
	Active    bool                 `gorm:"default:true" json:"active"`
	Items     []RecurringOrderItem `gorm:"foreignKey:RecurringOrderID" json:"items,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type RecurringOrderItem struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	RecurringOrderID uint    `gorm:"not null;index" json:"recurringOrderId"`
	ProductID        uint    `gorm:"not null" json:"productId"`
	Product          Product `gorm:"foreignKey:ProductID" json:"product,omitzero"`
	Quantity         float64 `gorm:"not null" json:"quantity"`
}
