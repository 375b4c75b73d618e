package workerpresentation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/relay"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const relayWorkerService = "relay_worker"

// RelayWorker forwards bus events to the broker, one use case run per event.
type RelayWorker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[relay.ForwardCommand, *relay.Envelope]
	tel        observability.Observability
	log        observability.Logger
	events     []string
}

func NewRelayWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[relay.ForwardCommand, *relay.Envelope],
	tel observability.Observability,
	events ...string,
) *RelayWorker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &RelayWorker{
		subscriber: subscriber,
		useCase:    useCase,
		tel:        tel,
		log:        tel.Logger().With(observability.F("service", relayWorkerService)),
		events:     events,
	}
}

func (w *RelayWorker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	for _, name := range w.events {
		w.subscriber.Subscribe(name, w.handle)
	}
}

func (w *RelayWorker) handle(ctx context.Context, e domoutbox.Event) error {
	eventID := uuid.NewString()
	ctx = withEventLogger(ctx, w.log, eventID, e)

	if _, err := w.useCase.Execute(ctx, relay.ForwardCommand{EventID: eventID, Event: e}); err != nil {
		return fmt.Errorf("relay worker: forward %s: %w", e.EventName(), err)
	}
	return nil
}
