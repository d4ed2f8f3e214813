package importer

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/primeo/api/internal/db"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/services"
)

var testDBSeq atomic.Int64

func setupImportTestDB(t *testing.T) *gorm.DB {
	// cache=shared keeps the pool's connections on one memory DB; the counter
	// keeps repeated calls within a single test from aliasing each other.
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(db.AllModels...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

const categoriesCSV = `nom;description;icon;color;sous-categorie;sc-description;sc-icon;actif
Fruits;Fruits frais;apple;#ff0000;;;;oui
Fruits;;;;Pommes;Pommes de saison;;oui
Légumes;Légumes frais;carrot;#00ff00;;;;oui
`

func TestImportCategories(t *testing.T) {
	gdb := setupImportTestDB(t)

	res, err := Categories(gdb, strings.NewReader(categoriesCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Errors != 0 {
		t.Fatalf("errors = %d, want 0", res.Errors)
	}
	var cats int64
	gdb.Model(&models.Category{}).Count(&cats)
	if cats != 2 {
		t.Fatalf("categories = %d, want 2", cats)
	}
	var subs int64
	gdb.Model(&models.SubCategory{}).Count(&subs)
	if subs != 1 {
		t.Fatalf("sub-categories = %d, want 1", subs)
	}

	// second pass updates instead of duplicating
	res, err = Categories(gdb, strings.NewReader(categoriesCSV))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Created != 0 {
		t.Fatalf("re-import created %d rows", res.Created)
	}
	gdb.Model(&models.Category{}).Count(&cats)
	if cats != 2 {
		t.Fatalf("categories after re-import = %d", cats)
	}
}

const productsCSV = `nom;sku;description;categorie;sous-categorie;unite;prixT1;prixT2;tva;stock;origine;colisage;presentation;code-barres;actif
Pomme Golden;POM-GOLD;Pommes Golden calibre 75;Fruits;;kg;2,50;2,20;0,055;100;France;CAISSE;vrac;3000000000017;oui
Banane Cavendish;BAN-CAV;;Fruits;;kg;1,80;1,60;;50;Équateur;CAGETTE;;;oui
`

func TestImportProductsIdempotent(t *testing.T) {
	gdb := setupImportTestDB(t)
	if err := gdb.Create(&models.Category{Nom: "Fruits", Active: true}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	res, err := Products(gdb, strings.NewReader(productsCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 2 || res.Updated != 0 || res.Errors != 0 {
		t.Fatalf("first pass: %+v", res)
	}

	var p models.Product
	if err := gdb.Where("sku = ?", "POM-GOLD").First(&p).Error; err != nil {
		t.Fatalf("find product: %v", err)
	}
	if p.PriceT1 != 2.5 || p.PriceT2 != 2.2 {
		t.Fatalf("comma decimals not parsed: T1=%v T2=%v", p.PriceT1, p.PriceT2)
	}
	var banane models.Product
	gdb.Where("sku = ?", "BAN-CAV").First(&banane)
	if banane.TVARate != 0.055 {
		t.Fatalf("default TVA = %v, want 0.055", banane.TVARate)
	}

	res, err = Products(gdb, strings.NewReader(productsCSV))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Created != 0 || res.Updated != 2 {
		t.Fatalf("second pass: %+v", res)
	}
	var total int64
	gdb.Model(&models.Product{}).Count(&total)
	if total != 2 {
		t.Fatalf("products = %d, want 2", total)
	}
}

func TestImportProductsMatchesByNameWhenSKUChanges(t *testing.T) {
	gdb := setupImportTestDB(t)
	cat := models.Category{Nom: "Fruits", Active: true}
	gdb.Create(&cat)
	gdb.Create(&models.Product{Nom: "Pomme Golden", SKU: "ANCIEN-SKU", CategoryID: cat.ID, Unit: "kg", PriceT1: 2, Packaging: models.PackagingCaisse, Active: true})

	csv := "nom;sku;description;categorie;sous-categorie;unite;prixT1;prixT2;tva;stock;origine;colisage;presentation;code-barres;actif\n" +
		"Pomme Golden;POM-GOLD;;Fruits;;kg;2,50;2,20;;100;;CAISSE;;;oui\n"
	res, err := Products(gdb, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("result: %+v", res)
	}
	var total int64
	gdb.Model(&models.Product{}).Count(&total)
	if total != 1 {
		t.Fatalf("products = %d, want 1", total)
	}
	var p models.Product
	gdb.Where("nom = ?", "Pomme Golden").First(&p)
	if p.SKU != "POM-GOLD" {
		t.Fatalf("SKU = %q, want POM-GOLD", p.SKU)
	}
}

func TestImportProductsTolerantPerRow(t *testing.T) {
	gdb := setupImportTestDB(t)
	gdb.Create(&models.Category{Nom: "Fruits", Active: true})

	csv := "nom;sku;description;categorie;sous-categorie;unite;prixT1;prixT2;tva;stock;origine;colisage;presentation;code-barres;actif\n" +
		"Pomme Golden;POM-GOLD;;Fruits;;kg;2,50;2,20;;100;;CAISSE;;;oui\n" +
		";SANS-NOM;;Fruits;;kg;1;1;;1;;CAISSE;;;oui\n" +
		"Kiwi;KIWI;;Inconnue;;kg;3;3;;10;;CAISSE;;;oui\n" +
		"Poire;POIRE;;Fruits;;kg;abc;2;;10;;CAISSE;;;oui\n" +
		"Mangue;MANGUE;;Fruits;;kg;4;3,5;;10;;PALETTE;;;oui\n"
	res, err := Products(gdb, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want 1", res.Created)
	}
	if res.Errors != 4 {
		t.Fatalf("errors = %d, want 4", res.Errors)
	}
}

func TestImportPricesWritesHistory(t *testing.T) {
	gdb := setupImportTestDB(t)
	cat := models.Category{Nom: "Fruits", Active: true}
	gdb.Create(&cat)
	p := models.Product{Nom: "Pomme Golden", SKU: "POM-GOLD", CategoryID: cat.ID, Unit: "kg", PriceT1: 2.5, PriceT2: 2.2, Packaging: models.PackagingCaisse, Active: true}
	gdb.Create(&p)

	csv := "nom;sku;prixT1;prixT2;motif\n" +
		"Pomme Golden;POM-GOLD;2,80;2,40;hausse saison\n"
	res, err := Prices(gdb, services.NewPriceService(gdb), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Updated != 1 || res.Errors != 0 {
		t.Fatalf("result: %+v", res)
	}
	var reloaded models.Product
	gdb.First(&reloaded, p.ID)
	if reloaded.PriceT1 != 2.8 || reloaded.PriceT2 != 2.4 {
		t.Fatalf("prices = %v / %v", reloaded.PriceT1, reloaded.PriceT2)
	}
	var hist models.PriceHistory
	if err := gdb.Where("product_id = ?", p.ID).First(&hist).Error; err != nil {
		t.Fatalf("no history row: %v", err)
	}
	if hist.Reason != "hausse saison" {
		t.Fatalf("reason = %q", hist.Reason)
	}
}

func TestImportSuppliersUpsert(t *testing.T) {
	gdb := setupImportTestDB(t)

	csv := "nom;contact;email;telephone;adresse;siret;tva;conditions;delai;notes\n" +
		"Verger du Sud;Jean Martin;CONTACT@VergerDuSud.fr;0467000000;ZA les Oliviers, 34000 Montpellier;81234567800012;FR40812345678;30 jours fin de mois;2;livraison le mardi\n"
	res, err := Suppliers(gdb, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want 1", res.Created)
	}
	var s models.Supplier
	if err := gdb.Where("nom = ?", "Verger du Sud").First(&s).Error; err != nil {
		t.Fatalf("find supplier: %v", err)
	}
	if s.Email != "contact@vergerdusud.fr" || s.DeliveryDelayDays != 2 {
		t.Fatalf("supplier fields: %+v", s)
	}

	res, err = Suppliers(gdb, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("second pass: %+v", res)
	}
	var total int64
	gdb.Model(&models.Supplier{}).Count(&total)
	if total != 1 {
		t.Fatalf("suppliers = %d, want 1", total)
	}
}

func TestResultString(t *testing.T) {
	res := Result{Created: 3, Updated: 2, Errors: 1}
	s := res.String()
	if !strings.Contains(s, "3") || !strings.Contains(s, "2") || !strings.Contains(s, "1") {
		t.Fatalf("unexpected summary: %q", s)
	}
}
