package models

import (
	"time"

	"gorm.io/gorm"
)

// Packaging is the closed set of packaging codes. The per-unit weight table in
// services switches exhaustively on it.
type Packaging string

const (
	PackagingCaisse  Packaging = "CAISSE"
	PackagingCagette Packaging = "CAGETTE"
	PackagingPlateau Packaging = "PLATEAU"
	PackagingColis   Packaging = "COLIS"
	PackagingSac     Packaging = "SAC"
	PackagingFilet   Packaging = "FILET"
	PackagingPiece   Packaging = "PIECE"
)

// Valid reports whether p is one of the known packaging codes.
func (p Packaging) Valid() bool {
	switch p {
	case PackagingCaisse, PackagingCagette, PackagingPlateau, PackagingColis, PackagingSac, PackagingFilet, PackagingPiece:
		return true
	}
	return false
}

// Category / SubCategory are hierarchical and soft-deletable.
type Category struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Nom           string         `gorm:"not null;index" json:"nom"`
	Description   string         `json:"description"`
	Icon          string         `json:"icon"`
	Color         string         `json:"color"`
	Active        bool           `gorm:"default:true" json:"active"`
	SubCategories []SubCategory  `gorm:"foreignKey:CategoryID" json:"subCategories,omitempty"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type SubCategory struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CategoryID  uint           `gorm:"not null;index" json:"categoryId"`
	Nom         string         `gorm:"not null;index" json:"nom"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Active      bool           `gorm:"default:true" json:"active"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Product struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	SKU           string       `gorm:"size:40;not null;uniqueIndex" json:"sku"`
	Nom           string       `gorm:"not null;index" json:"nom"`
	Description   string       `json:"description"`
	CategoryID    uint         `gorm:"not null;index" json:"categoryId"`
	Category      Category     `gorm:"foreignKey:CategoryID" json:"category,omitzero"`
	SubCategoryID *uint        `gorm:"index" json:"subCategoryId,omitempty"`
	SubCategory   *SubCategory `gorm:"foreignKey:SubCategoryID" json:"subCategory,omitempty"`
	Unit          string       `gorm:"not null;default:'kg'" json:"unit"`
	// Deux niveaux de prix: T1 standard, T2 contrat.
	PriceT1 float64 `gorm:"not null" json:"priceT1"`
	PriceT2 float64 `json:"priceT2"`
	// Prix de cession (coût interne) servant au calcul de marge.
	CessionPrice float64   `json:"cessionPrice"`
	TVARate      float64   `gorm:"not null;default:0.055" json:"tvaRate"` // e.g. 0.055 for 5.5%
	Stock        float64   `gorm:"not null;default:0" json:"stock"`
	StockAlert   float64   `gorm:"default:10" json:"stockAlert"`
	Origin       string    `json:"origin"` // ex: France, Espagne
	Packaging    Packaging `gorm:"type:varchar(20);not null;default:'CAISSE'" json:"packaging"`
	Presentation string    `json:"presentation"`
	Barcode      string    `gorm:"index" json:"barcode"`
	// Promotion en cours: prix promo optionnel.
	PromoPrice *float64 `json:"promoPrice,omitempty"`
	Active     bool     `gorm:"default:true" json:"active"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// StockMovement traces every stock change: order deductions, cancellations,
// manual adjustments and inventory corrections.
type StockMovement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	Delta     float64   `gorm:"not null" json:"delta"` // signé, en unité du produit
	Reason    string    `gorm:"not null" json:"reason"`
	UserID    *uint     `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PriceHistory records every price change (import or manual).
type PriceHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	OldT1     float64   `json:"oldT1"`
	NewT1     float64   `json:"newT1"`
	OldT2     float64   `json:"oldT2"`
	NewT2     float64   `json:"newT2"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
