package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingHandler collects events it receives
type recordingHandler struct {
	mu       sync.Mutex
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func chartEvents(t *testing.T) []shared.DomainEvent {
	t.Helper()
	chart := accounting.NewChartOfAccounts(uuid.New())
	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0001", "Cash", accounting.AccountTypeAsset, nil))
	return chart.UncommittedEvents()
}

func TestBusDeliversToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"AccountCreated"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), chartEvents(t)...))
	assert.Equal(t, 1, handler.count())
}

func TestBusSkipsUnrelatedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"PaymentCompleted"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), chartEvents(t)...))
	assert.Zero(t, handler.count())
}

func TestBusWildcardHandlerReceivesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	wildcard := &recordingHandler{}
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), chartEvents(t)...))
	assert.Equal(t, 1, wildcard.count())
}

func TestBusHandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"AccountCreated"}, err: errors.New("projection down")}
	healthy := &recordingHandler{types: []string{"AccountCreated"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), chartEvents(t)...))
	assert.Equal(t, 1, healthy.count())
}

func TestBusRecoversFromHandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{types: []string{"AccountCreated"}, panics: true}
	healthy := &recordingHandler{types: []string{"AccountCreated"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), chartEvents(t)...))
	})
	assert.Equal(t, 1, healthy.count())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"AccountCreated"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), chartEvents(t)...))
	assert.Zero(t, handler.count())
}

func TestBusStartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	a := &recordingHandler{}
	b := &recordingHandler{}

	registry.Register(a, "AccountCreated", "AccountDeactivated")
	registry.Register(b) // wildcard

	assert.Len(t, registry.GetHandlers("AccountCreated"), 2)
	assert.Len(t, registry.GetHandlers("PaymentCreated"), 1)

	registry.Unregister(a)
	assert.Len(t, registry.GetHandlers("AccountCreated"), 1)
}
