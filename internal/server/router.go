package server

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/config"
	"github.com/primeo/api/internal/handlers"
	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/middleware"
	"github.com/primeo/api/internal/policy"
	"github.com/primeo/api/internal/services"
)

// New assembles the HTTP handler: routes, authentication and the outer
// middleware chain (HTTPS redirect, CORS, logging, recover, deny-by-default).
func New(cfg config.Config, gdb *gorm.DB, tokens *auth.TokenService, authH *handlers.AuthHandler) http.Handler {
	gate := policy.NewDomainGate()

	orderSvc := services.NewOrderService(gdb)
	priceSvc := services.NewPriceService(gdb)
	statsSvc := services.NewStatsService(gdb)

	products := handlers.NewProductHandler(gdb, gate, priceSvc)
	categories := handlers.NewCategoryHandler(gdb, gate)
	orders := handlers.NewOrderHandler(gdb, gate, orderSvc)
	shops := handlers.NewShopHandler(gdb, gate)
	payments := handlers.NewPaymentHandler(gdb, gate)
	suppliers := handlers.NewSupplierHandler(gdb, gate)
	settings := handlers.NewSettingHandler(gdb, gate)
	stock := handlers.NewStockHandler(gdb, gate)
	promotions := handlers.NewPromotionHandler(gdb, gate)
	messages := handlers.NewMessageHandler(gdb, gate)
	notifications := handlers.NewNotificationHandler(gdb, gate)
	admin := handlers.NewAdminHandler(gdb, gate, statsSvc)
	invoices := handlers.NewInvoiceHandler(gdb, gate)
	quotes := handlers.NewQuoteHandler(gdb, gate, orderSvc)
	recurring := handlers.NewRecurringHandler(gdb, gate, orderSvc)
	deliveries := handlers.NewDeliveryHandler(gdb, gate)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth: open endpoints, no bearer required.
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/refresh", authH.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authH.Logout)
	mux.HandleFunc("POST /api/auth/verify-email", authH.VerifyEmail)
	mux.HandleFunc("POST /api/auth/forgot-password", authH.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authH.ResetPassword)

	// Everything below requires a valid access token.
	requireUser := middleware.RequireUser(tokens, gdb)
	protect := func(h http.HandlerFunc) http.Handler { return requireUser(h) }

	mux.Handle("GET /api/auth/me", protect(authH.Me))

	mux.Handle("GET /api/products", protect(products.List))
	mux.Handle("GET /api/products/search", protect(products.Search))
	mux.Handle("GET /api/products/{id}", protect(products.Get))
	mux.Handle("POST /api/products", protect(products.Create))
	mux.Handle("PUT /api/products/{id}", protect(products.Update))
	mux.Handle("DELETE /api/products/{id}", protect(products.Delete))
	mux.Handle("GET /api/products/{id}/prices", protect(products.PriceHistory))

	mux.Handle("GET /api/categories", protect(categories.List))
	mux.Handle("POST /api/categories", protect(categories.Create))
	mux.Handle("PUT /api/categories/{id}", protect(categories.Update))
	mux.Handle("DELETE /api/categories/{id}", protect(categories.Delete))
	mux.Handle("POST /api/categories/{id}/subcategories", protect(categories.CreateSub))

	mux.Handle("GET /api/orders", protect(orders.List))
	mux.Handle("POST /api/orders", protect(orders.Create))
	mux.Handle("GET /api/orders/{id}", protect(orders.Get))
	mux.Handle("PATCH /api/orders/{id}/status", protect(orders.UpdateStatus))
	mux.Handle("POST /api/orders/{id}/invoice", protect(invoices.CreateForOrder))

	mux.Handle("GET /api/shops", protect(shops.List))
	mux.Handle("GET /api/shops/{id}", protect(shops.Get))
	mux.Handle("POST /api/shops", protect(shops.Create))
	mux.Handle("PUT /api/shops/{id}", protect(shops.Update))
	mux.Handle("DELETE /api/shops/{id}", protect(shops.Delete))

	mux.Handle("GET /api/payments", protect(payments.List))
	mux.Handle("POST /api/payments", protect(payments.Create))
	mux.Handle("PATCH /api/payments/{id}/cancel", protect(payments.Cancel))

	mux.Handle("GET /api/suppliers", protect(suppliers.List))
	mux.Handle("POST /api/suppliers", protect(suppliers.Create))
	mux.Handle("PUT /api/suppliers/{id}", protect(suppliers.Update))
	mux.Handle("DELETE /api/suppliers/{id}", protect(suppliers.Delete))

	mux.Handle("GET /api/settings", protect(settings.List))
	mux.Handle("PUT /api/settings", protect(settings.Upsert))
	mux.Handle("GET /api/settings/deadlines", protect(settings.ListDeadlines))
	mux.Handle("PUT /api/settings/deadlines", protect(settings.UpsertDeadline))

	mux.Handle("GET /api/stock/alerts", protect(stock.Alerts))
	mux.Handle("POST /api/stock/adjust", protect(stock.Adjust))
	mux.Handle("GET /api/stock/movements", protect(stock.Movements))

	mux.Handle("GET /api/promotions", protect(promotions.List))
	mux.Handle("PUT /api/promotions/{id}", protect(promotions.Set))
	mux.Handle("DELETE /api/promotions/{id}", protect(promotions.Clear))

	mux.Handle("GET /api/messages", protect(messages.List))
	mux.Handle("POST /api/messages", protect(messages.Send))
	mux.Handle("PATCH /api/messages/{id}/read", protect(messages.MarkRead))

	mux.Handle("GET /api/notifications", protect(notifications.List))
	mux.Handle("PATCH /api/notifications/{id}/read", protect(notifications.MarkRead))
	mux.Handle("POST /api/notifications/read-all", protect(notifications.MarkAllRead))

	mux.Handle("GET /api/admin/users", protect(admin.ListUsers))
	mux.Handle("PUT /api/admin/users/{id}", protect(admin.UpdateUser))
	mux.Handle("PATCH /api/admin/users/{id}/block", protect(admin.BlockUser))
	mux.Handle("GET /api/admin/stats/dashboard", protect(admin.Dashboard))

	mux.Handle("GET /api/invoices", protect(invoices.List))
	mux.Handle("GET /api/invoices/{id}", protect(invoices.Get))

	mux.Handle("GET /api/quotes", protect(quotes.List))
	mux.Handle("POST /api/quotes", protect(quotes.Create))
	mux.Handle("PATCH /api/quotes/{id}/status", protect(quotes.UpdateStatus))

	mux.Handle("GET /api/recurring-orders", protect(recurring.List))
	mux.Handle("POST /api/recurring-orders", protect(recurring.Create))
	mux.Handle("PATCH /api/recurring-orders/{id}/toggle", protect(recurring.Toggle))
	mux.Handle("DELETE /api/recurring-orders/{id}", protect(recurring.Delete))
	mux.Handle("POST /api/recurring-orders/run", protect(recurring.Run))

	mux.Handle("GET /api/deliveries/tour", protect(deliveries.Tour))

	corsMW := cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})

	var handler http.Handler = mux
	handler = middleware.DenyByDefault(handler)
	handler = middleware.Recover(handler)
	handler = middleware.Logging(handler)
	handler = corsMW.Handler(handler)
	handler = middleware.HTTPSRedirect(cfg.IsProduction())(handler)
	return handler
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
