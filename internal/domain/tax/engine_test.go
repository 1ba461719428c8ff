package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateVAT(t *testing.T) {
	t.Run("standard rate", func(t *testing.T) {
		vat := CalculateVAT(decimal.NewFromInt(10000), StandardVATRate)
		assert.True(t, vat.Equal(decimal.NewFromInt(1500)), "got %s", vat)
	})

	t.Run("rounds to 2 decimal places", func(t *testing.T) {
		vat := CalculateVAT(decimal.NewFromFloat(33.33), StandardVATRate)
		assert.True(t, vat.Equal(decimal.NewFromFloat(5.00)), "got %s", vat)
	})

	t.Run("zero amount", func(t *testing.T) {
		vat := CalculateVAT(decimal.Zero, StandardVATRate)
		assert.True(t, vat.IsZero())
	})

	t.Run("custom rate", func(t *testing.T) {
		vat := CalculateVAT(decimal.NewFromInt(200), decimal.NewFromFloat(0.05))
		assert.True(t, vat.Equal(decimal.NewFromInt(10)))
	})
}

func TestCalculateWithholding(t *testing.T) {
	amount := decimal.NewFromInt(10000)

	tests := []struct {
		name     string
		category VendorCategory
		hasTaxID bool
		want     decimal.Decimal
	}{
		{"goods with tax ID", VendorCategoryGoods, true, decimal.NewFromInt(200)},
		{"goods without tax ID", VendorCategoryGoods, false, decimal.NewFromInt(400)},
		{"services with tax ID", VendorCategoryServices, true, decimal.NewFromInt(1000)},
		{"services without tax ID", VendorCategoryServices, false, decimal.NewFromInt(2000)},
		{"professional with tax ID", VendorCategoryProfessional, true, decimal.NewFromInt(500)},
		{"professional without tax ID", VendorCategoryProfessional, false, decimal.NewFromInt(1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateWithholding(amount, tt.category, tt.hasTaxID)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "want %s, got %s", tt.want, got)
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		_, err := CalculateWithholding(amount, VendorCategory("LIVESTOCK"), true)
		assert.Error(t, err)
	})
}

func TestVendorCategoryIsValid(t *testing.T) {
	assert.True(t, VendorCategoryGoods.IsValid())
	assert.True(t, VendorCategoryServices.IsValid())
	assert.True(t, VendorCategoryProfessional.IsValid())
	assert.False(t, VendorCategory("OTHER").IsValid())
	assert.False(t, VendorCategory("").IsValid())
}
