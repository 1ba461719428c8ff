// Package tax implements the regional tax and fiscal calculation engine.
// Everything in this package is a pure function of its inputs; the engine
// holds no state and performs no I/O. Aggregates and query services must
// route all tax math through this package.
package tax

import (
	"fmt"

	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StandardVATRate is the regional standard value-added tax rate (15%)
var StandardVATRate = decimal.NewFromFloat(0.15)

// VendorCategory classifies vendors for withholding-tax purposes
type VendorCategory string

const (
	VendorCategoryGoods        VendorCategory = "GOODS"
	VendorCategoryServices     VendorCategory = "SERVICES"
	VendorCategoryProfessional VendorCategory = "PROFESSIONAL"
)

// IsValid checks if the vendor category is valid
func (c VendorCategory) IsValid() bool {
	switch c {
	case VendorCategoryGoods, VendorCategoryServices, VendorCategoryProfessional:
		return true
	}
	return false
}

// String returns the string representation of VendorCategory
func (c VendorCategory) String() string {
	return string(c)
}

// withholdingBaseRates are the at-source deduction rates applied when the
// vendor presents a valid tax identifier
var withholdingBaseRates = map[VendorCategory]decimal.Decimal{
	VendorCategoryGoods:        decimal.NewFromFloat(0.02),
	VendorCategoryServices:     decimal.NewFromFloat(0.10),
	VendorCategoryProfessional: decimal.NewFromFloat(0.05),
}

// missingTaxIDMultiplier doubles the withholding rate when the vendor has
// not provided a tax identifier
var missingTaxIDMultiplier = decimal.NewFromInt(2)

// CalculateVAT computes the value-added tax for a taxable amount at the
// given rate, rounded to 2 decimal places
func CalculateVAT(taxableAmount, rate decimal.Decimal) decimal.Decimal {
	return taxableAmount.Mul(rate).Round(2)
}

// CalculateWithholding computes the withholding tax deducted at the source
// of a payment. Vendors without a tax identifier are withheld at a doubled
// rate for their category.
func CalculateWithholding(amount decimal.Decimal, category VendorCategory, hasTaxID bool) (decimal.Decimal, error) {
	rate, ok := withholdingBaseRates[category]
	if !ok {
		return decimal.Zero, shared.NewDomainError("INVALID_VENDOR_CATEGORY",
			fmt.Sprintf("Unknown vendor category %q", category))
	}
	if !hasTaxID {
		rate = rate.Mul(missingTaxIDMultiplier)
	}
	return amount.Mul(rate).Round(2), nil
}
