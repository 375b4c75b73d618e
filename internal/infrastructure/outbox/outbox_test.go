package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusFansOutToSubscribers(t *testing.T) {
	bus := NewBus(observability.NopLogger())
	ctx := context.Background()

	var mu sync.Mutex
	got := map[string]int{}
	var wg sync.WaitGroup
	wg.Add(3)
	handler := func(tag string) domoutbox.Handler {
		return func(_ context.Context, e domoutbox.Event) error {
			mu.Lock()
			got[tag+":"+e.EventName()]++
			mu.Unlock()
			wg.Done()
			return nil
		}
	}
	bus.Subscribe("order.created", handler("a"))
	bus.Subscribe("order.created", handler("b"))
	bus.Subscribe("order.paid", handler("a"))

	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{name: "order.created"}))
	require.NoError(t, bus.Publish(ctx, testEvent{name: "order.paid"}))
	require.NoError(t, bus.Publish(ctx, testEvent{name: "nobody.listens"}))

	waitOrFail(t, &wg)
	bus.Stop(ctx)

	assert.Equal(t, map[string]int{"a:order.created": 1, "b:order.created": 1, "a:order.paid": 1}, got)
}

func TestBusSurvivesHandlerPanicAndError(t *testing.T) {
	bus := NewBus(observability.NopLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("x", func(context.Context, domoutbox.Event) error { panic("boom") })
	bus.Subscribe("x", func(context.Context, domoutbox.Event) error { return errors.New("nope") })
	bus.Subscribe("y", func(context.Context, domoutbox.Event) error { wg.Done(); return nil })

	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{name: "x"}))
	require.NoError(t, bus.Publish(ctx, testEvent{name: "y"}))
	waitOrFail(t, &wg)
	bus.Stop(ctx)
}

func TestBusRejectsPublishAfterStop(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()
	bus.Start(ctx)
	bus.Stop(ctx)

	assert.ErrorIs(t, bus.Publish(ctx, testEvent{name: "x"}), ErrClosed)
}

func TestBusPublishHonoursContext(t *testing.T) {
	bus := NewBus(nil, WithQueueSize(1))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Not started: the first event fills the buffer, the second must time out.
	require.NoError(t, bus.Publish(ctx, testEvent{name: "x"}))
	assert.ErrorIs(t, bus.Publish(ctx, testEvent{name: "x"}), context.DeadlineExceeded)
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}
}
