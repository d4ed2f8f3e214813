package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/logger"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/services"
	"github.com/primeo/api/internal/validation"
)

// Result accumulates per-row counters. Imports are tolerant: a bad row is
// counted and skipped, the following rows still run.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

func (r Result) String() string {
	return fmt.Sprintf("créés=%d mis à jour=%d erreurs=%d", r.Created, r.Updated, r.Errors)
}

// newReader configures the semicolon-delimited, quote-escaped CSV dialect the
// price lists are exported in.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func rowError(kind string, line int, err error, res *Result) {
	logger.Get().WithField("type", kind).WithField("line", line).
		WithField("error", err.Error()).Warn("ligne ignorée")
	res.Errors++
}

func field(row []string, i int) string {
	if i < len(row) {
		return validation.SanitizeString(row[i])
	}
	return ""
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseActive(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "true", "oui", "actif":
		return true
	}
	return false
}

// Categories imports a categories CSV:
// nom;description;icon;color;sous-catégorie;sc description;sc icon;actif
// Rows sharing a category name attach their subcategory to the same category.
func Categories(db *gorm.DB, r io.Reader) (Result, error) {
	var res Result
	cr := newReader(r)
	header := true
	line := 0
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rowError("categories", line, err, &res)
			continue
		}
		if header {
			header = false
			continue
		}
		nom := field(row, 0)
		if nom == "" {
			rowError("categories", line, fmt.Errorf("nom vide"), &res)
			continue
		}
		var cat models.Category
		err = db.Where("nom = ?", nom).First(&cat).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			cat = models.Category{
				Nom:         nom,
				Description: field(row, 1),
				Icon:        field(row, 2),
				Color:       field(row, 3),
				Active:      parseActive(field(row, 7)),
			}
			if err := db.Create(&cat).Error; err != nil {
				rowError("categories", line, err, &res)
				continue
			}
			res.Created++
		case err != nil:
			rowError("categories", line, err, &res)
			continue
		default:
			updates := map[string]any{
				"description": field(row, 1),
				"icon":        field(row, 2),
				"color":       field(row, 3),
				"active":      parseActive(field(row, 7)),
			}
			if err := db.Model(&cat).Updates(updates).Error; err != nil {
				rowError("categories", line, err, &res)
				continue
			}
			res.Updated++
		}
		if sub := field(row, 4); sub != "" {
			var sc models.SubCategory
			err := db.Where("category_id = ? AND nom = ?", cat.ID, sub).First(&sc).Error
			if err == gorm.ErrRecordNotFound {
				sc = models.SubCategory{
					CategoryID:  cat.ID,
					Nom:         sub,
					Description: field(row, 5),
					Icon:        field(row, 6),
					Active:      true,
				}
				if err := db.Create(&sc).Error; err != nil {
					rowError("categories", line, err, &res)
				}
			} else if err != nil {
				rowError("categories", line, err, &res)
			}
		}
	}
	return res, nil
}

// Products imports a products CSV:
// nom;sku;description;catégorie;sous-catégorie;unité;prixT1;prixT2;tva;stock;origine;colisage;présentation;code-barres;actif
// Existing products are matched by SKU first, then by name, so re-importing
// the same file updates rows instead of duplicating them.
func Products(db *gorm.DB, r io.Reader) (Result, error) {
	var res Result
	cr := newReader(r)
	header := true
	line := 0
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rowError("products", line, err, &res)
			continue
		}
		if header {
			header = false
			continue
		}
		nom := field(row, 0)
		sku := strings.ToUpper(field(row, 1))
		if nom == "" || sku == "" {
			rowError("products", line, fmt.Errorf("nom ou SKU vide"), &res)
			continue
		}
		catName := field(row, 3)
		var cat models.Category
		if err := db.Where("nom = ?", catName).First(&cat).Error; err != nil {
			rowError("products", line, fmt.Errorf("catégorie inconnue: %s", catName), &res)
			continue
		}
		var subID *uint
		if sub := field(row, 4); sub != "" {
			var sc models.SubCategory
			if err := db.Where("category_id = ? AND nom = ?", cat.ID, sub).First(&sc).Error; err == nil {
				subID = &sc.ID
			}
		}
		priceT1, err1 := parseFloat(field(row, 6))
		priceT2, err2 := parseFloat(field(row, 7))
		tva, err3 := parseFloat(field(row, 8))
		stock, err4 := parseFloat(field(row, 9))
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			rowError("products", line, fmt.Errorf("valeur numérique invalide"), &res)
			continue
		}
		if tva == 0 {
			tva = 0.055
		}
		packaging := models.Packaging(strings.ToUpper(field(row, 11)))
		if packaging == "" {
			packaging = models.PackagingCaisse
		}
		if !packaging.Valid() {
			rowError("products", line, fmt.Errorf("colisage inconnu: %s", packaging), &res)
			continue
		}
		unit := field(row, 5)
		if unit == "" {
			unit = "kg"
		}

		var existing models.Product
		err = db.Where("sku = ?", sku).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			err = db.Where("nom = ?", nom).First(&existing).Error
		}
		switch {
		case err == gorm.ErrRecordNotFound:
			p := models.Product{
				Nom:           nom,
				SKU:           sku,
				Description:   field(row, 2),
				CategoryID:    cat.ID,
				SubCategoryID: subID,
				Unit:          unit,
				PriceT1:       services.Round2(priceT1),
				PriceT2:       services.Round2(priceT2),
				TVARate:       tva,
				Stock:         stock,
				Origin:        field(row, 10),
				Packaging:     packaging,
				Presentation:  field(row, 12),
				Barcode:       field(row, 13),
				Active:        parseActive(field(row, 14)),
			}
			if err := db.Create(&p).Error; err != nil {
				rowError("products", line, err, &res)
				continue
			}
			res.Created++
		case err != nil:
			rowError("products", line, err, &res)
		default:
			updates := map[string]any{
				"nom":             nom,
				"sku":             sku,
				"description":     field(row, 2),
				"category_id":     cat.ID,
				"sub_category_id": subID,
				"unit":            unit,
				"price_t1":        services.Round2(priceT1),
				"price_t2":        services.Round2(priceT2),
				"tva_rate":        tva,
				"stock":           stock,
				"origin":          field(row, 10),
				"packaging":       packaging,
				"presentation":    field(row, 12),
				"barcode":         field(row, 13),
				"active":          parseActive(field(row, 14)),
			}
			if err := db.Model(&existing).Updates(updates).Error; err != nil {
				rowError("products", line, err, &res)
				continue
			}
			res.Updated++
		}
	}
	return res, nil
}

// Prices imports a price update CSV: nom;sku;prixT1;prixT2;motif
// Every effective change lands in the price history.
func Prices(db *gorm.DB, prices *services.PriceService, r io.Reader) (Result, error) {
	var res Result
	cr := newReader(r)
	header := true
	line := 0
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rowError("prices", line, err, &res)
			continue
		}
		if header {
			header = false
			continue
		}
		sku := strings.ToUpper(field(row, 1))
		var product models.Product
		err = db.Where("sku = ?", sku).First(&product).Error
		if err == gorm.ErrRecordNotFound {
			err = db.Where("nom = ?", field(row, 0)).First(&product).Error
		}
		if err != nil {
			rowError("prices", line, fmt.Errorf("produit introuvable: %s", sku), &res)
			continue
		}
		t1, err1 := parseFloat(field(row, 2))
		t2, err2 := parseFloat(field(row, 3))
		if err1 != nil || err2 != nil || t1 <= 0 {
			rowError("prices", line, fmt.Errorf("prix invalide"), &res)
			continue
		}
		reason := field(row, 4)
		if reason == "" {
			reason = "import tarif"
		}
		if err := prices.Change(product.ID, t1, t2, reason); err != nil {
			rowError("prices", line, err, &res)
			continue
		}
		res.Updated++
	}
	return res, nil
}

// Suppliers imports a suppliers CSV:
// nom;contact;email;téléphone;adresse;siret;tva;conditions;délai;notes
func Suppliers(db *gorm.DB, r io.Reader) (Result, error) {
	var res Result
	cr := newReader(r)
	header := true
	line := 0
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rowError("suppliers", line, err, &res)
			continue
		}
		if header {
			header = false
			continue
		}
		nom := field(row, 0)
		if nom == "" {
			rowError("suppliers", line, fmt.Errorf("nom vide"), &res)
			continue
		}
		delay := 0
		if d := field(row, 8); d != "" {
			n, err := strconv.Atoi(strings.TrimSpace(d))
			if err != nil {
				rowError("suppliers", line, fmt.Errorf("délai invalide: %s", d), &res)
				continue
			}
			delay = n
		}
		supplier := models.Supplier{
			Nom:               nom,
			Contact:           field(row, 1),
			Email:             strings.ToLower(field(row, 2)),
			Telephone:         field(row, 3),
			Adresse:           field(row, 4),
			SIRET:             field(row, 5),
			TVAIntra:          field(row, 6),
			PaymentTerms:      field(row, 7),
			DeliveryDelayDays: delay,
			Notes:             field(row, 9),
		}
		var existing models.Supplier
		err = db.Where("nom = ?", nom).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			if err := db.Create(&supplier).Error; err != nil {
				rowError("suppliers", line, err, &res)
				continue
			}
			res.Created++
		case err != nil:
			rowError("suppliers", line, err, &res)
		default:
			supplier.ID = existing.ID
			supplier.CreatedAt = existing.CreatedAt
			if err := db.Save(&supplier).Error; err != nil {
				rowError("suppliers", line, err, &res)
				continue
			}
			res.Updated++
		}
	}
	return res, nil
}
