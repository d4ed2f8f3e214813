package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primeo/api/internal/models"
)

func TestMarginPercent(t *testing.T) {
	assert.Equal(t, 100.0, MarginPercent(10, 5))
	assert.Equal(t, 0.0, MarginPercent(10, 0))
	assert.Equal(t, 0.0, MarginPercent(10, -1))
	assert.Equal(t, -50.0, MarginPercent(5, 10))
	assert.Equal(t, 33.33, MarginPercent(4, 3))
}

func TestMarginAmount(t *testing.T) {
	assert.Equal(t, 15.0, MarginAmount(10, 5, 3))
	assert.Equal(t, 0.0, MarginAmount(5, 5, 10))
}

func TestPackagingWeightKg(t *testing.T) {
	for _, tc := range []struct {
		packaging models.Packaging
		want      float64
	}{
		{models.PackagingCaisse, 10},
		{models.PackagingCagette, 6},
		{models.PackagingPlateau, 8},
		{models.PackagingColis, 12},
		{models.PackagingSac, 25},
		{models.PackagingFilet, 2},
		{models.PackagingPiece, 1},
		{models.Packaging("PALETTE"), 0},
	} {
		assert.Equal(t, tc.want, PackagingWeightKg(tc.packaging), string(tc.packaging))
	}
}

func TestProductWeight(t *testing.T) {
	p := &models.Product{Packaging: models.PackagingCaisse}
	assert.Equal(t, 30.0, ProductWeight(p, 3))
	assert.Equal(t, 0.0, ProductWeight(nil, 3))
}

func TestPackageCount(t *testing.T) {
	assert.Equal(t, 3, PackageCount(45))
	assert.Equal(t, 1, PackageCount(20))
	assert.Equal(t, 2, PackageCount(20.5))
	assert.Equal(t, 0, PackageCount(0))
	assert.Equal(t, 0, PackageCount(-3))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.23, Round2(-1.234))
}

func TestComputeOrderFinancials(t *testing.T) {
	order := &models.Order{
		Items: []models.OrderItem{
			{
				Quantity:  3,
				UnitPrice: 10,
				Product:   models.Product{CessionPrice: 5, Packaging: models.PackagingCaisse},
			},
			{
				Quantity:      2,
				PromoQuantity: 1,
				UnitPrice:     8,
				Product:       models.Product{CessionPrice: 4, Packaging: models.PackagingCagette},
			},
		},
	}
	f := ComputeOrderFinancials(order)
	// marge: 3*(10-5) + 2*(8-4) = 23 ; cession: 15 + 8 = 23
	assert.Equal(t, 23.0, f.TotalMargin)
	assert.Equal(t, 23.0, f.CessionTotal)
	assert.Equal(t, 100.0, f.MarginPercent)
	// poids: 3*10 + 2*6 = 42kg -> 3 colis de 20kg
	assert.Equal(t, 42.0, f.TotalWeightKg)
	assert.Equal(t, 3, f.PackageCount)
	// promo: 8 * (1 - 100/100) * 1 = 0 (marge 100% sur la ligne promo)
	assert.Equal(t, 0.0, f.PromoRevenue)
}

func TestComputeOrderFinancialsNil(t *testing.T) {
	f := ComputeOrderFinancials(nil)
	assert.Zero(t, f.TotalMargin)
	assert.Zero(t, f.PackageCount)
}

func TestComputeTotals(t *testing.T) {
	order := &models.Order{
		Items: []models.OrderItem{
			{Quantity: 10, UnitPrice: 2, Product: models.Product{TVARate: 0.055}},
			{Quantity: 5, UnitPrice: 4, Product: models.Product{TVARate: 0.055}},
		},
	}
	ht, tva, ttc := ComputeTotals(order)
	assert.Equal(t, 40.0, ht)
	assert.Equal(t, 2.2, tva)
	assert.Equal(t, 42.2, ttc)
}
