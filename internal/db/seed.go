package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/models"
)

// Seed inserts demo data: one user per role, base categories, a handful of
// products and default settings. Idempotent: existing rows (matched by natural
// key) are left alone.
func Seed(db *gorm.DB) error {
	if err := seedUsers(db); err != nil {
		return err
	}
	if err := seedCategories(db); err != nil {
		return err
	}
	if err := seedProducts(db); err != nil {
		return err
	}
	return seedSettings(db)
}

func seedUsers(db *gorm.DB) error {
	hash, err := auth.HashPassword("demo1234")
	if err != nil {
		return err
	}
	for _, role := range models.AllRoles {
		email := fmt.Sprintf("%s@primeo.fr", role)
		var existing models.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == gorm.ErrRecordNotFound {
			u := models.User{
				Email:         email,
				Password:      hash,
				Nom:           "Démo",
				Prenom:        string(role),
				Role:          role,
				EmailVerified: true,
			}
			if err := db.Create(&u).Error; err != nil {
				return err
			}
			if role == models.RoleClient {
				shop := models.Shop{
					UserID:     u.ID,
					Nom:        "Épicerie Démo",
					Ligne1:     "12 rue du Marché",
					CodePostal: "75011",
					Ville:      "Paris",
				}
				if err := db.Create(&shop).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func seedCategories(db *gorm.DB) error {
	base := []models.Category{
		{Nom: "Fruits", Description: "Fruits frais", Icon: "apple", Color: "#e74c3c", Active: true},
		{Nom: "Légumes", Description: "Légumes frais", Icon: "carrot", Color: "#27ae60", Active: true},
		{Nom: "Aromates", Description: "Herbes et aromates", Icon: "leaf", Color: "#16a085", Active: true},
	}
	for _, c := range base {
		var existing models.Category
		if err := db.Where("nom = ?", c.Nom).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&c).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedProducts(db *gorm.DB) error {
	var fruits, legumes models.Category
	if err := db.Where("nom = ?", "Fruits").First(&fruits).Error; err != nil {
		return err
	}
	if err := db.Where("nom = ?", "Légumes").First(&legumes).Error; err != nil {
		return err
	}
	base := []models.Product{
		{SKU: "POM-GOLD", Nom: "Pomme Golden", CategoryID: fruits.ID, Unit: "kg", PriceT1: 2.10, PriceT2: 1.85, CessionPrice: 1.20, TVARate: 0.055, Stock: 500, StockAlert: 50, Origin: "France", Packaging: models.PackagingCaisse, Active: true},
		{SKU: "BAN-CAV", Nom: "Banane Cavendish", CategoryID: fruits.ID, Unit: "kg", PriceT1: 1.95, PriceT2: 1.70, CessionPrice: 1.10, TVARate: 0.055, Stock: 300, StockAlert: 40, Origin: "Équateur", Packaging: models.PackagingColis, Active: true},
		{SKU: "TOM-GRP", Nom: "Tomate grappe", CategoryID: legumes.ID, Unit: "kg", PriceT1: 2.80, PriceT2: 2.45, CessionPrice: 1.60, TVARate: 0.055, Stock: 250, StockAlert: 30, Origin: "France", Packaging: models.PackagingPlateau, Active: true},
		{SKU: "CAR-SAB", Nom: "Carotte des sables", CategoryID: legumes.ID, Unit: "kg", PriceT1: 1.40, PriceT2: 1.20, CessionPrice: 0.70, TVARate: 0.055, Stock: 600, StockAlert: 60, Origin: "France", Packaging: models.PackagingSac, Active: true},
		{SKU: "POM-TER", Nom: "Pomme de terre Agata", CategoryID: legumes.ID, Unit: "kg", PriceT1: 1.10, PriceT2: 0.95, CessionPrice: 0.55, TVARate: 0.055, Stock: 900, StockAlert: 100, Origin: "France", Packaging: models.PackagingSac, Active: true},
	}
	for _, p := range base {
		var existing models.Product
		if err := db.Where("sku = ?", p.SKU).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedSettings(db *gorm.DB) error {
	base := []models.Setting{
		{Key: "delivery.min_order_ht", Value: "150", Type: "number", Category: "delivery"},
		{Key: "delivery.default_days", Value: "mar,jeu,sam", Type: "string", Category: "delivery"},
		{Key: "company.name", Value: "Primeo Distribution", Type: "string", Category: "company"},
	}
	for _, s := range base {
		var existing models.Setting
		if err := db.Where("key = ?", s.Key).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
