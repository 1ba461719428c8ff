package tax

import (
	"fmt"

	"github.com/ledger/backend/internal/domain/shared"
)

// The region issues two tax-identifier formats, both fixed-length numeric
// strings: the taxpayer identification number (TIN, 10 digits) and the VAT
// registration number (13 digits).
const (
	tinLength       = 10
	vatNumberLength = 13
)

// ValidateTIN validates a taxpayer identification number
func ValidateTIN(tin string) error {
	return validateNumericID("TIN", tin, tinLength)
}

// ValidateVATNumber validates a VAT registration number
func ValidateVATNumber(vat string) error {
	return validateNumericID("VAT number", vat, vatNumberLength)
}

func validateNumericID(name, value string, length int) error {
	if len(value) != length {
		return shared.NewDomainError("INVALID_TAX_ID",
			fmt.Sprintf("%s must be exactly %d digits, got %d characters", name, length, len(value)))
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_TAX_ID",
				fmt.Sprintf("%s must contain only digits", name))
		}
	}
	return nil
}
