package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/domain/tax"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// TaxHandler exposes the tax engine: VAT and withholding calculation,
// fiscal calendar lookups, and tax ID validation. All operations are pure
// and tenant independent.
type TaxHandler struct {
	BaseHandler
}

// NewTaxHandler creates a tax handler
func NewTaxHandler() *TaxHandler {
	return &TaxHandler{}
}

// CalculateVATRequest is the payload for a VAT calculation
type CalculateVATRequest struct {
	TaxableAmount string `json:"taxable_amount" binding:"required,decimalstr"`
	Rate          string `json:"rate" binding:"omitempty,decimalstr"`
}

// CalculateVATResponse reports a VAT calculation
type CalculateVATResponse struct {
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	Rate          decimal.Decimal `json:"rate"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
}

// CalculateVAT handles POST /api/v1/tax/vat
func (h *TaxHandler) CalculateVAT(c *gin.Context) {
	var req CalculateVATRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	taxable, err := decimal.NewFromString(req.TaxableAmount)
	if err != nil {
		h.BadRequest(c, "Invalid taxable_amount")
		return
	}
	rate := tax.StandardVATRate
	if req.Rate != "" {
		if rate, err = decimal.NewFromString(req.Rate); err != nil {
			h.BadRequest(c, "Invalid rate")
			return
		}
	}

	vat := tax.CalculateVAT(taxable, rate)
	h.Success(c, CalculateVATResponse{
		TaxableAmount: taxable,
		Rate:          rate,
		VATAmount:     vat,
		GrossAmount:   taxable.Add(vat),
	})
}

// CalculateWithholdingRequest is the payload for a withholding calculation
type CalculateWithholdingRequest struct {
	Amount         string `json:"amount" binding:"required,decimalstr"`
	VendorCategory string `json:"vendor_category" binding:"required,oneof=GOODS SERVICES PROFESSIONAL"`
	HasTaxID       bool   `json:"has_tax_id"`
}

// CalculateWithholdingResponse reports a withholding calculation
type CalculateWithholdingResponse struct {
	Amount             decimal.Decimal `json:"amount"`
	VendorCategory     string          `json:"vendor_category"`
	WithheldAmount     decimal.Decimal `json:"withheld_amount"`
	NetPayableAmount   decimal.Decimal `json:"net_payable_amount"`
	PenaltyRateApplied bool            `json:"penalty_rate_applied"`
}

// CalculateWithholding handles POST /api/v1/tax/withholding
func (h *TaxHandler) CalculateWithholding(c *gin.Context) {
	var req CalculateWithholdingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	withheld, err := tax.CalculateWithholding(amount, tax.VendorCategory(req.VendorCategory), req.HasTaxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CalculateWithholdingResponse{
		Amount:             amount,
		VendorCategory:     req.VendorCategory,
		WithheldAmount:     withheld,
		NetPayableAmount:   amount.Sub(withheld),
		PenaltyRateApplied: !req.HasTaxID,
	})
}

// FiscalPeriodResponse reports the fiscal calendar position of a date
type FiscalPeriodResponse struct {
	FiscalYear int       `json:"fiscal_year"`
	Period     int       `json:"period"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	FilingDue  time.Time `json:"filing_due"`
}

// GetFiscalPeriod handles GET /api/v1/tax/fiscal-period?date=2026-03-15
func (h *TaxHandler) GetFiscalPeriod(c *gin.Context) {
	date := time.Now().UTC()
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			h.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	period := tax.FiscalPeriodOf(date)
	h.Success(c, FiscalPeriodResponse{
		FiscalYear: period.FiscalYear,
		Period:     period.Period,
		Name:       period.String(),
		StartDate:  period.StartDate(),
		EndDate:    period.EndDate(),
		FilingDue:  tax.DueDateOf(period),
	})
}

// ValidateTaxIDRequest is the payload for tax ID validation
type ValidateTaxIDRequest struct {
	TIN       string `json:"tin,omitempty"`
	VATNumber string `json:"vat_number,omitempty"`
}

// ValidateTaxIDResponse reports validation outcomes per submitted ID
type ValidateTaxIDResponse struct {
	TINValid       *bool  `json:"tin_valid,omitempty"`
	TINError       string `json:"tin_error,omitempty"`
	VATNumberValid *bool  `json:"vat_number_valid,omitempty"`
	VATNumberError string `json:"vat_number_error,omitempty"`
}

// ValidateTaxID handles POST /api/v1/tax/validate-id
func (h *TaxHandler) ValidateTaxID(c *gin.Context) {
	var req ValidateTaxIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.TIN == "" && req.VATNumber == "" {
		h.BadRequest(c, "Provide tin or vat_number")
		return
	}

	resp := ValidateTaxIDResponse{}
	if req.TIN != "" {
		valid := true
		if err := tax.ValidateTIN(req.TIN); err != nil {
			valid = false
			resp.TINError = err.Error()
		}
		resp.TINValid = &valid
	}
	if req.VATNumber != "" {
		valid := true
		if err := tax.ValidateVATNumber(req.VATNumber); err != nil {
			valid = false
			resp.VATNumberError = err.Error()
		}
		resp.VATNumberValid = &valid
	}
	h.Success(c, resp)
}
