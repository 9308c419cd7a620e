package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DispatchOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.On(CartItemAdded, func(ctx context.Context, name Name, payload any) {
		got = append(got, "first")
	})
	bus.On(CartItemAdded, func(ctx context.Context, name Name, payload any) {
		got = append(got, "second")
	})
	bus.OnAll(func(ctx context.Context, name Name, payload any) {
		got = append(got, "all:"+string(name))
	})
	bus.On(CartCleared, func(ctx context.Context, name Name, payload any) {
		got = append(got, "other")
	})

	bus.Emit(context.Background(), CartItemAdded, CartEvent{})

	assert.Equal(t, []string{"first", "second", "all:cart:item:added"}, got)
}

func TestBus_PayloadDelivered(t *testing.T) {
	bus := NewBus(nil)
	var received ProductIntent

	bus.On(ProductSelected, func(ctx context.Context, name Name, payload any) {
		received = payload.(ProductIntent)
	})
	bus.Emit(context.Background(), ProductSelected, ProductIntent{ProductID: "p1"})

	assert.Equal(t, "p1", received.ProductID)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0

	off := bus.On(CartCleared, func(ctx context.Context, name Name, payload any) { calls++ })
	bus.On(CartCleared, func(ctx context.Context, name Name, payload any) { calls += 10 })

	bus.Emit(context.Background(), CartCleared, nil)
	off()
	off()
	bus.Emit(context.Background(), CartCleared, nil)

	assert.Equal(t, 21, calls)
	assert.Equal(t, 1, bus.HandlerCount(CartCleared))
}

func TestBus_PanicIsolated(t *testing.T) {
	bus := NewBus(nil)
	reached := false

	bus.On(OrderFailed, func(ctx context.Context, name Name, payload any) {
		panic("render failed")
	})
	bus.On(OrderFailed, func(ctx context.Context, name Name, payload any) {
		reached = true
	})

	require.NotPanics(t, func() {
		bus.Emit(context.Background(), OrderFailed, nil)
	})
	assert.True(t, reached)
}

func TestBus_NoHandlers(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), ModalClosed, nil)
	})
}

func TestBus_ConcurrentSubscribeAndEmit(t *testing.T) {
	bus := NewBus(nil)
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.On(ProductsChanged, func(ctx context.Context, name Name, payload any) {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
		go func() {
			defer wg.Done()
			bus.Emit(context.Background(), ProductsChanged, nil)
		}()
	}
	wg.Wait()

	count = 0
	bus.Emit(context.Background(), ProductsChanged, nil)
	assert.Equal(t, 20, count)
}
