package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/primeo/api/internal/models"
)

func paymentMux(h *PaymentHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/payments", h.List)
	mux.HandleFunc("POST /api/payments", h.Create)
	mux.HandleFunc("PATCH /api/payments/{id}/cancel", h.Cancel)
	return mux
}

func TestPaymentListScopedToClientShops(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewPaymentHandler(gdb, testGate())
	mux := paymentMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)

	alice, aliceOrder := seedDeliveredOrder(t, gdb, "alice@primeo.fr", p.ID)
	_, bobOrder := seedDeliveredOrder(t, gdb, "bob@primeo.fr", p.ID)
	gdb.Create(&models.Payment{OrderID: aliceOrder.ID, Montant: 5, Mode: "virement", Statut: "validé"})
	gdb.Create(&models.Payment{OrderID: bobOrder.ID, Montant: 5, Mode: "virement", Statut: "validé"})

	w := serve(mux, alice, http.MethodGet, "/api/payments", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res struct {
		Data []models.Payment `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Data) != 1 || res.Data[0].OrderID != aliceOrder.ID {
		t.Fatalf("client sees %d payments, want only their own", len(res.Data))
	}

	finance := createUser(t, gdb, "finance@primeo.fr", models.RoleFinance)
	w = serve(mux, finance, http.MethodGet, "/api/payments", "")
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("finance sees %d payments, want 2", len(res.Data))
	}
}

func TestPaymentCreateRollsOrderStatus(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewPaymentHandler(gdb, testGate())
	mux := paymentMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)
	finance := createUser(t, gdb, "finance@primeo.fr", models.RoleFinance)
	_, order := seedDeliveredOrder(t, gdb, "alice@primeo.fr", p.ID)

	// order is 2 × 2.5 HT → 5.28 TTC; half first, then the rest
	w := serve(mux, finance, http.MethodPost, "/api/payments", `{"orderId":`+itoa(order.ID)+`,"montant":2.28,"mode":"virement"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("partial: status = %d, body %s", w.Code, w.Body.String())
	}
	var reloaded models.Order
	gdb.First(&reloaded, order.ID)
	if reloaded.PaymentStatus != models.PaymentPartial {
		t.Fatalf("payment status = %q, want partial", reloaded.PaymentStatus)
	}

	w = serve(mux, finance, http.MethodPost, "/api/payments", `{"orderId":`+itoa(order.ID)+`,"montant":3,"mode":"cheque"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("settle: status = %d", w.Code)
	}
	gdb.First(&reloaded, order.ID)
	if reloaded.PaymentStatus != models.PaymentPaid {
		t.Fatalf("payment status = %q, want paid", reloaded.PaymentStatus)
	}
}

func TestPaymentCancelRecomputesStatus(t *testing.T) {
	gdb := setupTestDB(t)
	h := NewPaymentHandler(gdb, testGate())
	mux := paymentMux(h)
	cat := createCategory(t, gdb, "Fruits")
	p := createProduct(t, gdb, cat.ID, "POM-GOLD", 100)
	finance := createUser(t, gdb, "finance@primeo.fr", models.RoleFinance)
	_, order := seedDeliveredOrder(t, gdb, "alice@primeo.fr", p.ID)

	w := serve(mux, finance, http.MethodPost, "/api/payments", `{"orderId":`+itoa(order.ID)+`,"montant":10,"mode":"virement"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("pay: status = %d", w.Code)
	}
	var payment models.Payment
	gdb.Where("order_id = ?", order.ID).First(&payment)

	w = serve(mux, finance, http.MethodPatch, "/api/payments/"+itoa(payment.ID)+"/cancel", "")
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", w.Code)
	}
	var reloaded models.Order
	gdb.First(&reloaded, order.ID)
	if reloaded.PaymentStatus != models.PaymentPending {
		t.Fatalf("payment status = %q, want pending", reloaded.PaymentStatus)
	}

	w = serve(mux, finance, http.MethodPatch, "/api/payments/"+itoa(payment.ID)+"/cancel", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("double cancel: status = %d, want 409", w.Code)
	}
}
