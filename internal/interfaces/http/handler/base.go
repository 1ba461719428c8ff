package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDHeader); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getTenantID extracts the tenant ID from the verified JWT claims
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := middleware.GetJWTTenantID(c)
	if tenantIDStr == "" {
		return uuid.Nil, errors.New("tenant ID not found in context")
	}
	return uuid.Parse(tenantIDStr)
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID("BAD_REQUEST", message, getRequestID(c)))
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID("UNAUTHORIZED", message, getRequestID(c)))
}

// HandleError maps an error to the appropriate HTTP response. Domain
// errors carry their code; infrastructure failures are reported without
// internal detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(statusForCode(domainErr.Code), dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID("INTERNAL_ERROR", "Internal server error", requestID))
}

func statusForCode(code string) int {
	switch code {
	case "NOT_FOUND", "ACCOUNT_NOT_FOUND", "PARENT_NOT_FOUND":
		return http.StatusNotFound
	case "ALREADY_EXISTS", "DUPLICATE_ACCOUNT_CODE", "ACCOUNT_EXISTS",
		"ENTRY_EXISTS", "INVOICE_EXISTS", "PAYMENT_EXISTS", "CONCURRENCY_CONFLICT":
		return http.StatusConflict
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "STORE_UNAVAILABLE":
		return http.StatusServiceUnavailable
	case "INVALID_STATE_TRANSITION", "UNBALANCED_ENTRY", "OVERPAYMENT",
		"ACCOUNT_HAS_BALANCE", "ACCOUNT_INACTIVE", "ENTRY_NOT_POSTED":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
