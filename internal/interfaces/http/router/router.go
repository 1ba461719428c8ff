package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"github.com/ledger/backend/internal/interfaces/http/handler"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles every route handler the router mounts
type Handlers struct {
	Accounts       *handler.AccountHandler
	Journal        *handler.JournalHandler
	Invoices       *handler.InvoiceHandler
	Payments       *handler.PaymentHandler
	Tax            *handler.TaxHandler
	Reconciliation *handler.ReconciliationHandler
}

// Setup builds the gin engine with all middleware and routes mounted.
// Everything under /api/v1 requires a verified tenant-scoped token.
func Setup(jwtService *auth.JWTService, handlers Handlers, log *zap.Logger) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(log),
		middleware.RequestLogger(log),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtService))

	accounts := api.Group("/accounts")
	{
		accounts.POST("", handlers.Accounts.CreateAccount)
		accounts.GET("", handlers.Accounts.ListAccounts)
		accounts.GET("/:id", handlers.Accounts.GetAccount)
		accounts.GET("/:id/balance", handlers.Accounts.GetAccountBalance)
		accounts.POST("/:id/deactivate", handlers.Accounts.DeactivateAccount)
	}

	entries := api.Group("/journal-entries")
	{
		entries.POST("", handlers.Journal.CreateEntry)
		entries.POST("/:id/post", handlers.Journal.PostEntry)
		entries.POST("/:id/reverse", handlers.Journal.ReverseEntry)
	}

	api.GET("/reports/trial-balance", handlers.Accounts.GetTrialBalance)

	invoices := api.Group("/invoices")
	{
		invoices.POST("", handlers.Invoices.CreateInvoice)
		invoices.GET("", handlers.Invoices.ListInvoices)
		invoices.GET("/:id", handlers.Invoices.GetInvoice)
		invoices.GET("/:id/payments", handlers.Invoices.ListInvoicePayments)
		invoices.POST("/:id/approve", handlers.Invoices.ApproveInvoice)
		invoices.POST("/:id/cancel", handlers.Invoices.CancelInvoice)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", handlers.Payments.CreatePayment)
		payments.GET("/:id", handlers.Payments.GetPayment)
		payments.POST("/:id/complete", handlers.Payments.CompletePayment)
		payments.POST("/:id/fail", handlers.Payments.FailPayment)
		payments.POST("/:id/reconcile", handlers.Payments.ReconcilePayment)
		payments.POST("/:id/reverse", handlers.Payments.ReversePayment)
	}

	taxes := api.Group("/tax")
	{
		taxes.POST("/vat", handlers.Tax.CalculateVAT)
		taxes.POST("/withholding", handlers.Tax.CalculateWithholding)
		taxes.GET("/fiscal-period", handlers.Tax.GetFiscalPeriod)
		taxes.POST("/validate-id", handlers.Tax.ValidateTaxID)
	}

	issues := api.Group("/reconciliation-issues")
	{
		issues.GET("", handlers.Reconciliation.ListOpenIssues)
		issues.POST("/:id/resolve", handlers.Reconciliation.ResolveIssue)
	}

	return engine
}
