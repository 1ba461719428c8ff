package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appaccounting "github.com/ledger/backend/internal/application/accounting"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// JournalHandler exposes journal entry commands
type JournalHandler struct {
	BaseHandler
	journal *appaccounting.JournalService
}

// NewJournalHandler creates a journal handler
func NewJournalHandler(journal *appaccounting.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// JournalLineRequest is one line of a journal entry payload
type JournalLineRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Debit     string `json:"debit" binding:"omitempty,decimalstr"`
	Credit    string `json:"credit" binding:"omitempty,decimalstr"`
}

// CreateEntryRequest is the payload for drafting a journal entry
type CreateEntryRequest struct {
	EntryDate string               `json:"entry_date"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// CreateEntry handles POST /api/v1/journal-entries
func (h *JournalHandler) CreateEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	var entryDate time.Time
	if req.EntryDate != "" {
		entryDate, err = time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			h.BadRequest(c, "entry_date must be YYYY-MM-DD")
			return
		}
	}

	lines := make([]accounting.JournalLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		line, err := parseLine(l)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		lines = append(lines, line)
	}

	result, err := h.journal.CreateEntry(c.Request.Context(), appaccounting.CreateEntryRequest{
		TenantID:  tenantID,
		EntryDate: entryDate,
		Lines:     lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// PostEntry handles POST /api/v1/journal-entries/:id/post
func (h *JournalHandler) PostEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	if err := h.journal.PostEntry(c.Request.Context(), tenantID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReverseEntryRequest is the payload for reversing a posted entry
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReverseEntry handles POST /api/v1/journal-entries/:id/reverse
func (h *JournalHandler) ReverseEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.journal.ReverseEntry(c.Request.Context(), appaccounting.ReverseEntryRequest{
		TenantID: tenantID,
		EntryID:  entryID,
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func parseLine(req JournalLineRequest) (accounting.JournalLine, error) {
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return accounting.JournalLine{}, err
	}
	debit := decimal.Zero
	if req.Debit != "" {
		if debit, err = decimal.NewFromString(req.Debit); err != nil {
			return accounting.JournalLine{}, err
		}
	}
	credit := decimal.Zero
	if req.Credit != "" {
		if credit, err = decimal.NewFromString(req.Credit); err != nil {
			return accounting.JournalLine{}, err
		}
	}
	return accounting.JournalLine{AccountID: accountID, Debit: debit, Credit: credit}, nil
}
