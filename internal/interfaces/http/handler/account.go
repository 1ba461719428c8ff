package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appaccounting "github.com/ledger/backend/internal/application/accounting"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
)

// AccountHandler exposes chart of accounts commands and queries
type AccountHandler struct {
	BaseHandler
	chart        *appaccounting.ChartService
	queries      *appaccounting.AccountQueryService
	trialBalance *appaccounting.TrialBalanceService
}

// NewAccountHandler creates an account handler
func NewAccountHandler(chart *appaccounting.ChartService, queries *appaccounting.AccountQueryService, trialBalance *appaccounting.TrialBalanceService) *AccountHandler {
	return &AccountHandler{chart: chart, queries: queries, trialBalance: trialBalance}
}

// CreateAccountRequest is the payload for creating an account
type CreateAccountRequest struct {
	Code     string  `json:"code" binding:"required"`
	Name     string  `json:"name" binding:"required,max=200"`
	Type     string  `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentID *string `json:"parent_id,omitempty" binding:"omitempty,uuid"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			h.BadRequest(c, "Invalid parent_id")
			return
		}
		parentID = &id
	}

	result, err := h.chart.CreateAccount(c.Request.Context(), appaccounting.CreateAccountRequest{
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		AccountType: accounting.AccountType(req.Type),
		ParentID:    parentID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// DeactivateAccountRequest is the payload for deactivating an account
type DeactivateAccountRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// DeactivateAccount handles POST /api/v1/accounts/:id/deactivate
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req DeactivateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.chart.DeactivateAccount(c.Request.Context(), appaccounting.DeactivateAccountRequest{
		TenantID:  tenantID,
		AccountID: accountID,
		Reason:    req.Reason,
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	account, err := h.queries.GetAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListAccounts handles GET /api/v1/accounts?type=ASSET
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	accountType := accounting.AccountType(c.Query("type"))

	accounts, err := h.queries.ListAccountsByType(c.Request.Context(), tenantID, accountType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// GetAccountBalance handles GET /api/v1/accounts/:id/balance
func (h *AccountHandler) GetAccountBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	balance, err := h.queries.GetAccountBalance(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// GetTrialBalance handles GET /api/v1/reports/trial-balance?fiscal_year=2026&as_of=2026-03-31
func (h *AccountHandler) GetTrialBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	var params struct {
		FiscalYear int    `form:"fiscal_year" binding:"required,min=2000,max=2200"`
		AsOf       string `form:"as_of"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	asOf := time.Now().UTC()
	if params.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", params.AsOf)
		if err != nil {
			h.BadRequest(c, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	report, err := h.trialBalance.Generate(c.Request.Context(), tenantID, params.FiscalYear, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
