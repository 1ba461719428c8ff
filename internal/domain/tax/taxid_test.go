package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTIN(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateTIN("0123456789"))
	})

	t.Run("wrong length", func(t *testing.T) {
		assert.Error(t, ValidateTIN("12345"))
		assert.Error(t, ValidateTIN("01234567890"))
		assert.Error(t, ValidateTIN(""))
	})

	t.Run("non-digit characters", func(t *testing.T) {
		assert.Error(t, ValidateTIN("12345678AB"))
		assert.Error(t, ValidateTIN("12345 6789"))
	})
}

func TestValidateVATNumber(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateVATNumber("0123456789012"))
	})

	t.Run("wrong length", func(t *testing.T) {
		assert.Error(t, ValidateVATNumber("0123456789"))
		assert.Error(t, ValidateVATNumber("01234567890123"))
	})

	t.Run("non-digit characters", func(t *testing.T) {
		assert.Error(t, ValidateVATNumber("012345678901X"))
	})
}
