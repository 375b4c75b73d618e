package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

type sinkCall struct {
	key, id string
	v       any
}

type fakeSink struct {
	calls []sinkCall
	err   error
}

func (s *fakeSink) PublishJSON(_ context.Context, key, id string, v any) error {
	s.calls = append(s.calls, sinkCall{key: key, id: id, v: v})
	return s.err
}

func TestForwardPublishesEnvelope(t *testing.T) {
	sink := &fakeSink{}
	uc := NewForwardUseCase(sink, observability.Nop())

	evt := domorder.ShippedEvent{OrderID: "O1"}
	env, err := uc.Execute(context.Background(), ForwardCommand{EventID: "e-1", Event: evt})
	require.NoError(t, err)
	assert.Equal(t, "order.shipped", env.Name)
	assert.Equal(t, "O1", env.AggregateID)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, "order.shipped", sink.calls[0].key)
	assert.Equal(t, "e-1", sink.calls[0].id)
	assert.Equal(t, env, sink.calls[0].v)
}

type unkeyedEvent struct{}

func (unkeyedEvent) EventName() string { return "audit.note" }

func TestForwardAggregateID(t *testing.T) {
	uc := NewForwardUseCase(&fakeSink{}, observability.Nop())

	tests := []struct {
		name  string
		event domoutbox.Event
		want  string
	}{
		{name: "order event", event: domorder.PaidEvent{OrderID: "O1"}, want: "O1"},
		{name: "product event", event: domproduct.StockChangedEvent{ProductID: "P1"}, want: "P1"},
		{name: "unkeyed event", event: unkeyedEvent{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := uc.Execute(context.Background(), ForwardCommand{EventID: "e-1", Event: tt.event})
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.AggregateID)
		})
	}
}

func TestForwardBrokerFailureIsUpstream(t *testing.T) {
	sink := &fakeSink{err: errors.New("channel closed")}
	uc := NewForwardUseCase(sink, observability.Nop())

	_, err := uc.Execute(context.Background(), ForwardCommand{EventID: "e-1", Event: domorder.ShippedEvent{}})
	assert.ErrorIs(t, err, application.ErrUpstream)

	_, err = uc.Execute(context.Background(), ForwardCommand{})
	assert.ErrorIs(t, err, application.ErrValidation)
}
