package services

import (
	"math"

	"github.com/primeo/api/internal/models"
)

// Per-package weight per kilogram-equivalent unit. PackageWeightKg is the
// truck-loading estimate basis: one parcel carries at most 20kg.
const parcelCapacityKg = 20.0

// PackagingWeightKg returns the estimated weight of one unit for a packaging
// code. The switch is exhaustive over the Packaging enum; unknown codes weigh
// zero rather than guessing.
func PackagingWeightKg(p models.Packaging) float64 {
	switch p {
	case models.PackagingCaisse:
		return 10
	case models.PackagingCagette:
		return 6
	case models.PackagingPlateau:
		return 8
	case models.PackagingColis:
		return 12
	case models.PackagingSac:
		return 25
	case models.PackagingFilet:
		return 2
	case models.PackagingPiece:
		return 1
	}
	return 0
}

// Round2 rounds to two decimal places, the precision of every monetary and
// weight figure returned by the API.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarginPercent computes (selling - cost) / cost * 100, zero when the cession
// price is absent or zero.
func MarginPercent(sellingPrice, costPrice float64) float64 {
	if costPrice <= 0 {
		return 0
	}
	return Round2((sellingPrice - costPrice) / costPrice * 100)
}

// MarginAmount computes the absolute margin over a quantity.
func MarginAmount(sellingPrice, costPrice, quantity float64) float64 {
	return Round2((sellingPrice - costPrice) * quantity)
}

// ProductWeight estimates the weight of a quantity of a product from its
// packaging code.
func ProductWeight(p *models.Product, quantity float64) float64 {
	if p == nil {
		return 0
	}
	return Round2(quantity * PackagingWeightKg(p.Packaging))
}

// PackageCount estimates the number of 20kg parcels needed for a total weight.
func PackageCount(totalWeightKg float64) int {
	if totalWeightKg <= 0 {
		return 0
	}
	return int(math.Ceil(totalWeightKg / parcelCapacityKg))
}

// OrderFinancials aggregates the financial figures of an order.
type OrderFinancials struct {
	TotalMargin   float64 `json:"totalMargin"`
	MarginPercent float64 `json:"marginPercent"`
	PromoRevenue  float64 `json:"promoRevenue"`
	TotalWeightKg float64 `json:"totalWeightKg"`
	PackageCount  int     `json:"packageCount"`
	CessionTotal  float64 `json:"cessionTotal"`
}

// ComputeOrderFinancials sums margin, promotional revenue, weight and cession
// total across line items. Assumes each item has Product preloaded. Pure and
// side-effect free; every output rounded to two decimals.
func ComputeOrderFinancials(order *models.Order) OrderFinancials {
	var f OrderFinancials
	if order == nil {
		return f
	}
	for _, it := range order.Items {
		p := it.Product
		f.TotalMargin += (it.UnitPrice - p.CessionPrice) * it.Quantity
		f.CessionTotal += p.CessionPrice * it.Quantity
		f.TotalWeightKg += it.Quantity * PackagingWeightKg(p.Packaging)
		if it.PromoQuantity > 0 {
			marginPct := MarginPercent(it.UnitPrice, p.CessionPrice)
			f.PromoRevenue += it.UnitPrice * (1 - marginPct/100) * it.PromoQuantity
		}
	}
	if f.CessionTotal > 0 {
		f.MarginPercent = Round2(f.TotalMargin / f.CessionTotal * 100)
	}
	f.TotalMargin = Round2(f.TotalMargin)
	f.PromoRevenue = Round2(f.PromoRevenue)
	f.TotalWeightKg = Round2(f.TotalWeightKg)
	f.CessionTotal = Round2(f.CessionTotal)
	f.PackageCount = PackageCount(f.TotalWeightKg)
	return f
}

// ComputeTotals computes HT, TVA and TTC amounts for an order based on its
// items. Assumes each OrderItem has Product preloaded for the TVA rate.
func ComputeTotals(order *models.Order) (ht, tva, ttc float64) {
	if order == nil {
		return 0, 0, 0
	}
	for _, it := range order.Items {
		lineHT := it.Quantity * it.UnitPrice
		rate := it.Product.TVARate
		if rate < 0 {
			rate = 0
		}
		ht += lineHT
		tva += lineHT * rate
	}
	ht = Round2(ht)
	tva = Round2(tva)
	ttc = Round2(ht + tva)
	return ht, tva, ttc
}
