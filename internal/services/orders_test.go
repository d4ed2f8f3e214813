package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/models"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Shop{}, &models.Category{},
		&models.Product{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrderFixture(t *testing.T, db *gorm.DB) (models.Shop, models.Product) {
	user := models.User{Email: "client@test.fr", Password: "hash", Role: models.RoleClient}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	shop := models.Shop{UserID: user.ID, Nom: "Primeur du Marché", Ligne1: "1 rue des Halles", CodePostal: "75001", Ville: "Paris"}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("create shop: %v", err)
	}
	cat := models.Category{Nom: "Fruits", Active: true}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := models.Product{
		SKU: "POM-GOLD", Nom: "Pomme Golden", CategoryID: cat.ID,
		Unit: "kg", PriceT1: 2.5, PriceT2: 2.2, CessionPrice: 1.5,
		TVARate: 0.055, Stock: 100, Packaging: models.PackagingCaisse, Active: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return shop, product
}

func TestOrderCreateComputesTotalsAndDecrementsStock(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	order, err := svc.Create(shop.ID, nil, "livrer avant 7h", []OrderLine{
		{ProductID: product.ID, Quantity: 10},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Number == "" {
		t.Fatalf("expected order number")
	}
	if order.Status != models.OrderPending {
		t.Fatalf("expected pending got %s", order.Status)
	}
	// 10kg * 2.50 = 25.00 HT, TVA 5.5% = 1.38
	if order.TotalHT != 25.0 {
		t.Fatalf("expected HT 25.00 got %.2f", order.TotalHT)
	}
	if order.TotalTVA != 1.38 {
		t.Fatalf("expected TVA 1.38 got %.2f", order.TotalTVA)
	}
	if order.TotalTTC != 26.38 {
		t.Fatalf("expected TTC 26.38 got %.2f", order.TotalTTC)
	}

	var fresh models.Product
	if err := db.First(&fresh, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if fresh.Stock != 90 {
		t.Fatalf("expected stock 90 got %.1f", fresh.Stock)
	}
}

func TestOrderCreateUsesT2Tier(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	order, err := svc.Create(shop.ID, nil, "", []OrderLine{
		{ProductID: product.ID, Quantity: 10, PriceTier: "T2"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Items[0].UnitPrice != 2.2 {
		t.Fatalf("expected T2 price 2.20 got %.2f", order.Items[0].UnitPrice)
	}
}

func TestOrderCreateRejectsInsufficientStock(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	_, err := svc.Create(shop.ID, nil, "", []OrderLine{
		{ProductID: product.ID, Quantity: 1000},
	})
	if err == nil {
		t.Fatalf("expected stock error")
	}
	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no order persisted, got %d", count)
	}
}

func TestOrderCreateRejectsUnknownProduct(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, _ := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	_, err := svc.Create(shop.ID, nil, "", []OrderLine{{ProductID: 9999, Quantity: 1}})
	if err != ErrUnknownProduct {
		t.Fatalf("expected ErrUnknownProduct got %v", err)
	}
}

func TestOrderCreateRejectsEmptyLines(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, _ := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	if _, err := svc.Create(shop.ID, nil, "", nil); err != ErrEmptyOrder {
		t.Fatalf("expected ErrEmptyOrder got %v", err)
	}
}

func TestOrderStatusLifecycle(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	order, err := svc.Create(shop.ID, nil, "", []OrderLine{{ProductID: product.ID, Quantity: 5}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	for _, next := range []models.OrderStatus{
		models.OrderConfirmed, models.OrderPreparing, models.OrderReady,
		models.OrderDelivering, models.OrderDelivered,
	} {
		order, err = svc.UpdateStatus(order.ID, next)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if order.Status != next {
			t.Fatalf("expected %s got %s", next, order.Status)
		}
	}
	// delivered is terminal
	if _, err := svc.UpdateStatus(order.ID, models.OrderCancelled); err == nil {
		t.Fatalf("expected terminal status rejection")
	}
}

func TestOrderStatusRejectsJump(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	order, err := svc.Create(shop.ID, nil, "", []OrderLine{{ProductID: product.ID, Quantity: 5}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, models.OrderDelivered); err == nil {
		t.Fatalf("expected invalid transition pending -> delivered")
	}
}

func TestOrderCancelRestoresStock(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	svc := NewOrderService(db)

	order, err := svc.Create(shop.ID, nil, "", []OrderLine{{ProductID: product.ID, Quantity: 30}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	var after models.Product
	db.First(&after, product.ID)
	if after.Stock != 70 {
		t.Fatalf("expected stock 70 got %.1f", after.Stock)
	}
	if _, err := svc.UpdateStatus(order.ID, models.OrderCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	db.First(&after, product.ID)
	if after.Stock != 100 {
		t.Fatalf("expected stock restored to 100 got %.1f", after.Stock)
	}
}

func TestOrderCreateUsesPromoPrice(t *testing.T) {
	db := setupOrderTestDB(t)
	shop, product := seedOrderFixture(t, db)
	promo := 1.9
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("promo_price", promo).Error; err != nil {
		t.Fatalf("set promo: %v", err)
	}
	svc := NewOrderService(db)

	order, err := svc.Create(shop.ID, nil, "", []OrderLine{
		{ProductID: product.ID, Quantity: 4, PromoQuantity: 4},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Items[0].UnitPrice != 1.9 {
		t.Fatalf("expected promo price 1.90 got %.2f", order.Items[0].UnitPrice)
	}
}
