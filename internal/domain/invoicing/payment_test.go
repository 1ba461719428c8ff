package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(amount int64) valueobject.Money {
	return valueobject.NewDefaultMoney(decimal.NewFromInt(amount))
}

func newPendingPayment(t *testing.T) *Payment {
	t.Helper()
	p := NewPayment(uuid.New(), uuid.New())
	invoiceID := uuid.New()
	require.NoError(t, p.Create(&invoiceID, money(500), PaymentMethodBankTransfer))
	return p
}

func TestPaymentCreate(t *testing.T) {
	t.Run("creates a pending payment", func(t *testing.T) {
		p := newPendingPayment(t)
		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.Equal(t, PaymentMethodBankTransfer, p.Method)
		assert.True(t, p.Amount.Equals(money(500)))
		assert.Equal(t, valueobject.DefaultCurrency, p.Amount.Currency())
		require.NotNil(t, p.InvoiceID)
	})

	t.Run("standalone payment without invoice", func(t *testing.T) {
		p := NewPayment(uuid.New(), uuid.New())
		require.NoError(t, p.Create(nil, money(100), PaymentMethodCash))
		assert.Nil(t, p.InvoiceID)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		p := NewPayment(uuid.New(), uuid.New())
		err := p.Create(nil, valueobject.ZeroDefault(), PaymentMethodCash)
		assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))

		err = p.Create(nil, money(-5), PaymentMethodCash)
		assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))
	})

	t.Run("rejects invalid method", func(t *testing.T) {
		p := NewPayment(uuid.New(), uuid.New())
		err := p.Create(nil, money(100), PaymentMethod("BARTER"))
		assert.Equal(t, "INVALID_PAYMENT_METHOD", domainCode(t, err))
	})

	t.Run("rejects nil invoice reference", func(t *testing.T) {
		p := NewPayment(uuid.New(), uuid.New())
		nilID := uuid.Nil
		err := p.Create(&nilID, money(100), PaymentMethodCash)
		assert.Equal(t, "INVALID_INVOICE", domainCode(t, err))
	})

	t.Run("rejects duplicate creation", func(t *testing.T) {
		p := newPendingPayment(t)
		err := p.Create(nil, money(10), PaymentMethodCash)
		assert.Equal(t, "PAYMENT_EXISTS", domainCode(t, err))
	})
}

func TestPaymentTransitions(t *testing.T) {
	t.Run("pending to completed", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.Complete())
		assert.Equal(t, PaymentStatusCompleted, p.Status)
	})

	t.Run("pending to failed", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.Fail("card declined"))
		assert.Equal(t, PaymentStatusFailed, p.Status)
		assert.Equal(t, "card declined", p.FailureReason)
	})

	t.Run("completed to reconciled", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.Complete())
		require.NoError(t, p.Reconcile("STMT-2026-08-117"))
		assert.Equal(t, PaymentStatusReconciled, p.Status)
		assert.Equal(t, "STMT-2026-08-117", p.BankReference)
	})

	t.Run("completed to reversed", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.Complete())
		require.NoError(t, p.Reverse("chargeback"))
		assert.Equal(t, PaymentStatusReversed, p.Status)
		assert.Equal(t, "chargeback", p.ReversalReason)
	})

	t.Run("invalid transitions are rejected", func(t *testing.T) {
		// complete a failed payment
		p := newPendingPayment(t)
		require.NoError(t, p.Fail("declined"))
		assert.Equal(t, "INVALID_STATE_TRANSITION", domainCode(t, p.Complete()))

		// reconcile a pending payment
		p = newPendingPayment(t)
		assert.Equal(t, "INVALID_STATE_TRANSITION", domainCode(t, p.Reconcile("STMT-1")))

		// reverse a pending payment
		assert.Equal(t, "INVALID_STATE_TRANSITION", domainCode(t, p.Reverse("oops")))

		// fail a completed payment
		p = newPendingPayment(t)
		require.NoError(t, p.Complete())
		assert.Equal(t, "INVALID_STATE_TRANSITION", domainCode(t, p.Fail("late")))

		// reverse a reconciled payment
		require.NoError(t, p.Reconcile("STMT-2"))
		assert.Equal(t, "INVALID_STATE_TRANSITION", domainCode(t, p.Reverse("too late")))
	})

	t.Run("fail requires a reason", func(t *testing.T) {
		p := newPendingPayment(t)
		assert.Equal(t, "INVALID_REASON", domainCode(t, p.Fail("")))
	})

	t.Run("reconcile requires a bank reference", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.Complete())
		assert.Equal(t, "INVALID_BANK_REFERENCE", domainCode(t, p.Reconcile("")))
	})
}

func TestPaymentStatusPredicates(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.False(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusReconciled.IsTerminal())
	assert.True(t, PaymentStatusReversed.IsTerminal())

	assert.True(t, PaymentStatusPending.IsValid())
	assert.False(t, PaymentStatus("SETTLED").IsValid())
}

func TestPaymentRehydration(t *testing.T) {
	tenantID := uuid.New()
	paymentID := uuid.New()
	invoiceID := uuid.New()

	source := NewPayment(tenantID, paymentID)
	require.NoError(t, source.Create(&invoiceID, money(750), PaymentMethodMobileMoney))
	require.NoError(t, source.Complete())
	require.NoError(t, source.Reconcile("STMT-99"))

	rehydrated := NewPayment(tenantID, paymentID)
	require.NoError(t, shared.LoadFromHistory(rehydrated, source.UncommittedEvents()))

	assert.Equal(t, PaymentStatusReconciled, rehydrated.Status)
	assert.Equal(t, "STMT-99", rehydrated.BankReference)
	assert.True(t, rehydrated.Amount.Equals(money(750)))
	assert.Equal(t, 3, rehydrated.GetVersion())
}
