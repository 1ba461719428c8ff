package shared

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cache is a generic tenant-scoped key-value cache with TTL expiry.
// Cached values are derived read-model data, never authoritative state;
// projections invalidate affected keys synchronously after every write so
// no reader can observe a cache hit that predates an applied event.
type Cache interface {
	// Get returns the cached value and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the value under key for the given TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes the given keys
	Invalidate(ctx context.Context, keys ...string) error
}

// TenantKey builds a tenant-scoped cache key
func TenantKey(tenantID uuid.UUID, parts ...string) string {
	elems := append([]string{"tenant", tenantID.String()}, parts...)
	return strings.Join(elems, ":")
}

// Cache key builders. Projections and query services must agree on these,
// so they live here rather than in either layer.

// AccountCacheKey is the key for a single account lookup
func AccountCacheKey(tenantID, accountID uuid.UUID) string {
	return TenantKey(tenantID, "account", accountID.String())
}

// AccountBalanceCacheKey is the key for an account balance lookup
func AccountBalanceCacheKey(tenantID, accountID uuid.UUID) string {
	return TenantKey(tenantID, "account", accountID.String(), "balance")
}

// AccountsByTypeCacheKey is the key for an account-type listing
func AccountsByTypeCacheKey(tenantID uuid.UUID, accountType string) string {
	return TenantKey(tenantID, "accounts", "type", accountType)
}

// TrialBalanceCacheKey is the key for the trial balance of one fiscal year
// as of one date
func TrialBalanceCacheKey(tenantID uuid.UUID, fiscalYear int, asOf string) string {
	return TenantKey(tenantID, "trial-balance", fmt.Sprintf("%d", fiscalYear), asOf)
}

// TrialBalanceEpochKey is a tenant-wide marker key. Trial balances are
// cached per (fiscalYear, asOfDate), so projections cannot enumerate every
// cached variant; instead they invalidate this marker and query services
// fold its value into their keys, orphaning stale entries until TTL.
func TrialBalanceEpochKey(tenantID uuid.UUID) string {
	return TenantKey(tenantID, "trial-balance", "epoch")
}

// InvoiceCacheKey is the key for a single invoice lookup
func InvoiceCacheKey(tenantID, invoiceID uuid.UUID) string {
	return TenantKey(tenantID, "invoice", invoiceID.String())
}

// InvoiceListCacheKey is the key for invoice listings
func InvoiceListCacheKey(tenantID uuid.UUID) string {
	return TenantKey(tenantID, "invoices")
}

// PaymentCacheKey is the key for a single payment lookup
func PaymentCacheKey(tenantID, paymentID uuid.UUID) string {
	return TenantKey(tenantID, "payment", paymentID.String())
}

// PaymentsByInvoiceCacheKey is the key for payments of one invoice
func PaymentsByInvoiceCacheKey(tenantID, invoiceID uuid.UUID) string {
	return TenantKey(tenantID, "payments", "invoice", invoiceID.String())
}
