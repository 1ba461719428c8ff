package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinvoicing "github.com/ledger/backend/internal/application/invoicing"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/infrastructure/projection"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// InvoiceHandler exposes invoice commands and queries
type InvoiceHandler struct {
	BaseHandler
	invoices *appinvoicing.InvoiceService
	queries  *appinvoicing.QueryService
}

// NewInvoiceHandler creates an invoice handler
func NewInvoiceHandler(invoices *appinvoicing.InvoiceService, queries *appinvoicing.QueryService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, queries: queries}
}

// LineItemRequest is one invoice line item payload
type LineItemRequest struct {
	Description string `json:"description" binding:"required,max=500"`
	Quantity    string `json:"quantity" binding:"required,decimalstr"`
	UnitPrice   string `json:"unit_price" binding:"required,decimalstr"`
}

// CreateInvoiceRequest is the payload for drafting an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string            `json:"invoice_number" binding:"required,max=50"`
	CustomerID    string            `json:"customer_id" binding:"required,uuid"`
	LineItems     []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	TaxRate       string            `json:"tax_rate" binding:"required,decimalstr"`
}

// CreateInvoice handles POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer_id")
		return
	}
	taxRate, err := decimal.NewFromString(req.TaxRate)
	if err != nil {
		h.BadRequest(c, "Invalid tax_rate")
		return
	}

	items := make([]invoicing.LineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			h.BadRequest(c, "Invalid quantity")
			return
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid unit_price")
			return
		}
		items = append(items, invoicing.LineItem{
			Description: item.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
	}

	result, err := h.invoices.CreateInvoice(c.Request.Context(), appinvoicing.CreateInvoiceRequest{
		TenantID:      tenantID,
		InvoiceNumber: req.InvoiceNumber,
		CustomerID:    customerID,
		LineItems:     items,
		TaxRate:       taxRate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ApproveInvoice handles POST /api/v1/invoices/:id/approve
func (h *InvoiceHandler) ApproveInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoices.ApproveInvoice(c.Request.Context(), tenantID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CancelInvoiceRequest is the payload for cancelling an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CancelInvoice handles POST /api/v1/invoices/:id/cancel
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.invoices.CancelInvoice(c.Request.Context(), tenantID, invoiceID, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetInvoice handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.queries.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListInvoices handles GET /api/v1/invoices?status=APPROVED&customer_id=...
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	filter := projection.InvoiceFilter{}
	if status := c.Query("status"); status != "" {
		s := invoicing.InvoiceStatus(status)
		if !s.IsValid() {
			h.BadRequest(c, "Invalid status filter")
			return
		}
		filter.Status = &s
	}
	if customer := c.Query("customer_id"); customer != "" {
		id, err := uuid.Parse(customer)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id filter")
			return
		}
		filter.CustomerID = &id
	}

	invoices, err := h.queries.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// ListInvoicePayments handles GET /api/v1/invoices/:id/payments
func (h *InvoiceHandler) ListInvoicePayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.queries.ListPaymentsByInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
