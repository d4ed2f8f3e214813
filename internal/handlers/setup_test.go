package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/db"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/policy"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(db.AllModels...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func testGate() *policy.Gate { return policy.NewDomainGate() }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func createUser(t *testing.T, gdb *gorm.DB, email string, role models.Role) *models.User {
	user := &models.User{Email: email, Password: "hash", Role: role}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createShop(t *testing.T, gdb *gorm.DB, owner *models.User) *models.Shop {
	shop := &models.Shop{UserID: owner.ID, Nom: "Chez Momo", Ligne1: "4 rue du Marché", CodePostal: "94150", Ville: "Rungis"}
	if err := gdb.Create(shop).Error; err != nil {
		t.Fatalf("create shop: %v", err)
	}
	return shop
}

func createCategory(t *testing.T, gdb *gorm.DB, nom string) *models.Category {
	cat := &models.Category{Nom: nom, Active: true}
	if err := gdb.Create(cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return cat
}

func createProduct(t *testing.T, gdb *gorm.DB, catID uint, sku string, stock float64) *models.Product {
	p := &models.Product{
		SKU: sku, Nom: "Produit " + sku, CategoryID: catID, Unit: "kg",
		PriceT1: 2.5, PriceT2: 2.2, CessionPrice: 1.5, TVARate: 0.055,
		Stock: stock, Packaging: models.PackagingCaisse, Active: true,
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// injectUser puts the user into the request context the way RequireUser does,
// so handler tests exercise the gate without the token machinery.
func injectUser(user *models.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != nil {
			r = r.WithContext(auth.WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// serve runs one request through a pattern mux as the given user.
func serve(mux *http.ServeMux, user *models.User, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	injectUser(user, mux).ServeHTTP(w, r)
	return w
}
