package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/infrastructure/projection"
)

// ReconciliationHandler exposes the manual reconciliation queue
type ReconciliationHandler struct {
	BaseHandler
	issues *projection.ReconciliationIssueRepository
}

// NewReconciliationHandler creates a reconciliation handler
func NewReconciliationHandler(issues *projection.ReconciliationIssueRepository) *ReconciliationHandler {
	return &ReconciliationHandler{issues: issues}
}

// ListOpenIssues handles GET /api/v1/reconciliation-issues
func (h *ReconciliationHandler) ListOpenIssues(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	issues, err := h.issues.ListOpen(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, issues)
}

// ResolveIssue handles POST /api/v1/reconciliation-issues/:id/resolve
func (h *ReconciliationHandler) ResolveIssue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid issue ID")
		return
	}

	if err := h.issues.Resolve(c.Request.Context(), tenantID, issueID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
