package importer

import (
	"bytes"
	"testing"

	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/services"
)

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	src := setupImportTestDB(t)

	user := models.User{Email: "momo@primeo.fr", Password: "$2a$12$hash", Role: models.RoleClient}
	if err := src.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	shop := models.Shop{UserID: user.ID, Nom: "Chez Momo", CodePostal: "94150", Ville: "Rungis"}
	src.Create(&shop)
	cat := models.Category{Nom: "Fruits", Active: true}
	src.Create(&cat)
	product := models.Product{Nom: "Pomme Golden", SKU: "POM-GOLD", CategoryID: cat.ID, Unit: "kg",
		PriceT1: 2.5, PriceT2: 2.2, TVARate: 0.055, Stock: 100, Packaging: models.PackagingCaisse, Active: true}
	src.Create(&product)
	order, err := services.NewOrderService(src).Create(shop.ID, nil, "", []services.OrderLine{{ProductID: product.ID, Quantity: 4}})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	src.Create(&models.Payment{OrderID: order.ID, Montant: 10, Mode: "virement", Statut: "validé"})

	var buf bytes.Buffer
	if err := Export(src, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := setupImportTestDB(t)
	// order items need their category FK satisfied on the target side
	dst.Create(&models.Category{Nom: "Fruits", Active: true})

	res, err := Import(dst, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	// user + shop + product + order + item + payment
	if res.Created != 6 {
		t.Fatalf("created = %d, want 6", res.Created)
	}

	var restored models.User
	if err := dst.Where("email = ?", "momo@primeo.fr").First(&restored).Error; err != nil {
		t.Fatalf("restored user: %v", err)
	}
	if restored.Password != "$2a$12$hash" {
		t.Fatalf("password hash lost: %q", restored.Password)
	}
	var orders int64
	dst.Model(&models.Order{}).Count(&orders)
	var items int64
	dst.Model(&models.OrderItem{}).Count(&items)
	if orders != 1 || items != 1 {
		t.Fatalf("orders=%d items=%d", orders, items)
	}

	// second import must upsert, not duplicate
	res, err = Import(dst, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Created != 0 || res.Updated != 6 {
		t.Fatalf("second pass: %+v", res)
	}
	var users int64
	dst.Model(&models.User{}).Count(&users)
	if users != 1 {
		t.Fatalf("users = %d, want 1", users)
	}
}

func TestSnapshotImportRejectsUnknownVersion(t *testing.T) {
	gdb := setupImportTestDB(t)
	_, err := Import(gdb, bytes.NewReader([]byte(`{"version":99}`)))
	if err == nil {
		t.Fatalf("expected version error")
	}
}

func TestSnapshotImportRejectsGarbage(t *testing.T) {
	gdb := setupImportTestDB(t)
	_, err := Import(gdb, bytes.NewReader([]byte(`{pas du json`)))
	if err == nil {
		t.Fatalf("expected decode error")
	}
}
