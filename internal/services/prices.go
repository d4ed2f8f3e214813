package services

import (
	"gorm.io/gorm"

	"github.com/primeo/api/internal/models"
)

// PriceService records price changes.
type PriceService struct {
	DB *gorm.DB
}

func NewPriceService(db *gorm.DB) *PriceService { return &PriceService{DB: db} }

// Change updates both price tiers of a product and records the change in the
// history, in one transaction. A no-op change writes no history row.
func (s *PriceService) Change(productID uint, newT1, newT2 float64, reason string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return err
		}
		if p.PriceT1 == newT1 && p.PriceT2 == newT2 {
			return nil
		}
		hist := models.PriceHistory{
			ProductID: p.ID,
			OldT1:     p.PriceT1,
			NewT1:     newT1,
			OldT2:     p.PriceT2,
			NewT2:     newT2,
			Reason:    reason,
		}
		if err := tx.Create(&hist).Error; err != nil {
			return err
		}
		return tx.Model(&p).Updates(map[string]any{"price_t1": newT1, "price_t2": newT2}).Error
	})
}
