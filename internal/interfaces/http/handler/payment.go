package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinvoicing "github.com/ledger/backend/internal/application/invoicing"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared/valueobject"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// PaymentHandler exposes payment commands and queries
type PaymentHandler struct {
	BaseHandler
	payments *appinvoicing.PaymentService
	queries  *appinvoicing.QueryService
}

// NewPaymentHandler creates a payment handler
func NewPaymentHandler(payments *appinvoicing.PaymentService, queries *appinvoicing.QueryService) *PaymentHandler {
	return &PaymentHandler{payments: payments, queries: queries}
}

// CreatePaymentRequest is the payload for creating a payment
type CreatePaymentRequest struct {
	InvoiceID *string `json:"invoice_id,omitempty" binding:"omitempty,uuid"`
	Amount    string  `json:"amount" binding:"required,decimalstr"`
	Currency  string  `json:"currency,omitempty" binding:"omitempty,len=3,uppercase"`
	Method    string  `json:"method" binding:"required,oneof=BANK_TRANSFER CARD CASH CHEQUE MOBILE_MONEY"`
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}
	var invoiceID *uuid.UUID
	if req.InvoiceID != nil {
		id, err := uuid.Parse(*req.InvoiceID)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_id")
			return
		}
		invoiceID = &id
	}

	result, err := h.payments.CreatePayment(c.Request.Context(), appinvoicing.CreatePaymentRequest{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Amount:    amount,
		Currency:  valueobject.Currency(req.Currency),
		Method:    invoicing.PaymentMethod(req.Method),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// CompletePayment handles POST /api/v1/payments/:id/complete
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.payments.CompletePayment(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// FailPaymentRequest is the payload for failing a payment
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// FailPayment handles POST /api/v1/payments/:id/fail
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.payments.FailPayment(c.Request.Context(), tenantID, paymentID, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReconcilePaymentRequest is the payload for reconciling a payment
type ReconcilePaymentRequest struct {
	BankReference string `json:"bank_reference" binding:"required,max=100"`
}

// ReconcilePayment handles POST /api/v1/payments/:id/reconcile
func (h *PaymentHandler) ReconcilePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req ReconcilePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.payments.ReconcilePayment(c.Request.Context(), tenantID, paymentID, req.BankReference); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReversePaymentRequest is the payload for reversing a payment
type ReversePaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReversePayment handles POST /api/v1/payments/:id/reverse
func (h *PaymentHandler) ReversePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req ReversePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.payments.ReversePayment(c.Request.Context(), tenantID, paymentID, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.queries.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
