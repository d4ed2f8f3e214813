package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/services"
)

func invoiceMux(h *InvoiceHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/invoices", h.List)
	mux.HandleFunc("GET /api/invoices/{id}", h.Get)
	mux.HandleFunc("POST /api/orders/{id}/invoice", h.CreateForOrder)
	return mux
}

// seedDeliveredOrder creates a shop-owning client with one delivered order.
func seedDeliveredOrder(t *testing.T, gdb *gorm.DB, email string, productID uint) (*models.User, *models.Order) {
	t.Helper()
	client := createUser(t, gdb, email, models.RoleClient)
	shop := createShop(t, gdb, client)
	order, err := services.NewOrderService(gdb).Create(shop.ID, nil, "", []services.OrderLine{{ProductID: productID, Quantity: 2}})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if err := gdb.Model(order).Update("status", models.OrderDelivered).Error; err != nil {
		t.Fatalf("deliver order: %v", err)
	}
	order.Status = models.OrderDelivered
	return client, order
}

func createInvoice(t *testing.T, gdb *gorm.DB, order *models.Order) *models.Invoice {
	t.Helper()
	now := time.Now()
	inv := &models.Invoice{Number: newInvoiceNumber(now), OrderID: order.ID, TotalTTC: order.TotalTTC, Status: "émise", IssuedAt: now}
	if err := gdb.Create(inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func TestInvoiceListScopedToClientShops(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewInvoiceHandler(gdb, testGate())
	mux := invoiceMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)

	alice, aliceOrder := seedDeliveredOrder(t, gdb, "alice@primeo.fr", p.ID)
	_, bobOrder := seedDeliveredOrder(t, gdb, "bob@primeo.fr", p.ID)
	aliceInv := createInvoice(t, gdb, aliceOrder)
	createInvoice(t, gdb, bobOrder)

	w := serve(mux, alice, http.MethodGet, "/api/invoices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res struct {
		Data []models.Invoice `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Data) != 1 || res.Data[0].ID != aliceInv.ID {
		t.Fatalf("client sees %d invoices, want only their own", len(res.Data))
	}

	admin := createUser(t, gdb, "admin@primeo.fr", models.RoleAdmin)
	w = serve(mux, admin, http.MethodGet, "/api/invoices", "")
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("admin sees %d invoices, want 2", len(res.Data))
	}
}

func TestInvoiceGetForeignDeniedForClient(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewInvoiceHandler(gdb, testGate())
	mux := invoiceMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)

	alice, aliceOrder := seedDeliveredOrder(t, gdb, "alice@primeo.fr", p.ID)
	_, bobOrder := seedDeliveredOrder(t, gdb, "bob@primeo.fr", p.ID)
	aliceInv := createInvoice(t, gdb, aliceOrder)
	bobInv := createInvoice(t, gdb, bobOrder)

	w := serve(mux, alice, http.MethodGet, "/api/invoices/"+itoa(aliceInv.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("own invoice: status = %d", w.Code)
	}
	w = serve(mux, alice, http.MethodGet, "/api/invoices/"+itoa(bobInv.ID), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign invoice: status = %d, want 404", w.Code)
	}
}

func TestInvoiceCreateForOrder(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewInvoiceHandler(gdb, testGate())
	mux := invoiceMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)
	admin := createUser(t, gdb, "admin@primeo.fr", models.RoleAdmin)
	_, order := seedDeliveredOrder(t, gdb, "alice@primeo.fr", p.ID)

	w := serve(mux, admin, http.MethodPost, "/api/orders/"+itoa(order.ID)+"/invoice", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}
	// idempotent: re-posting returns the same invoice
	w = serve(mux, admin, http.MethodPost, "/api/orders/"+itoa(order.ID)+"/invoice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("re-post: status = %d", w.Code)
	}
	var count int64
	gdb.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("invoices = %d, want 1", count)
	}
}

func TestInvoiceRequiresDeliveredOrder(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewInvoiceHandler(gdb, testGate())
	mux := invoiceMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)
	admin := createUser(t, gdb, "admin@primeo.fr", models.RoleAdmin)
	client := createUser(t, gdb, "alice@primeo.fr", models.RoleClient)
	shop := createShop(t, gdb, client)
	order, err := services.NewOrderService(gdb).Create(shop.ID, nil, "", []services.OrderLine{{ProductID: p.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	w := serve(mux, admin, http.MethodPost, "/api/orders/"+itoa(order.ID)+"/invoice", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("pending order: status = %d, want 409", w.Code)
	}
}
