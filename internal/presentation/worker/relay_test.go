package workerpresentation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/relay"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"
)

type namedEvent string

func (e namedEvent) EventName() string { return string(e) }

type captureSubscriber struct {
	handlers map[string]domoutbox.Handler
}

func (s *captureSubscriber) Subscribe(name string, h domoutbox.Handler) {
	if s.handlers == nil {
		s.handlers = map[string]domoutbox.Handler{}
	}
	s.handlers[name] = h
}

type stubForward struct {
	mu     sync.Mutex
	cmds   []relay.ForwardCommand
	logged bool
	err    error
}

func (s *stubForward) Execute(ctx context.Context, cmd relay.ForwardCommand) (*relay.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	s.logged = logctx.From(ctx) != nil
	return &relay.Envelope{ID: cmd.EventID}, s.err
}

func TestRelayWorkerForwardsSubscribedEvents(t *testing.T) {
	sub := &captureSubscriber{}
	uc := &stubForward{}
	w := NewRelayWorker(sub, uc, observability.Nop(), "order.created", "order.paid")
	w.Start()

	require.Len(t, sub.handlers, 2)
	require.NoError(t, sub.handlers["order.paid"](context.Background(), namedEvent("order.paid")))

	require.Len(t, uc.cmds, 1)
	assert.NotEmpty(t, uc.cmds[0].EventID)
	assert.Equal(t, "order.paid", uc.cmds[0].Event.EventName())
	assert.True(t, uc.logged)
}

func TestRelayWorkerWrapsFailure(t *testing.T) {
	sub := &captureSubscriber{}
	uc := &stubForward{err: errors.New("broker down")}
	NewRelayWorker(sub, uc, nil, "order.created").Start()

	err := sub.handlers["order.created"](context.Background(), namedEvent("order.created"))
	assert.ErrorContains(t, err, "broker down")
}
