package relay

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const (
	relayService   = "event-relay"
	useCaseForward = "relay.forward"
	brokerPeer     = "amqp"
)

// Sink is a message broker accepting JSON payloads under a routing key.
type Sink interface {
	PublishJSON(ctx context.Context, key, messageID string, v any) error
}

type ForwardCommand struct {
	EventID string
	Event   domoutbox.Event
}

// Envelope is the broker message wrapping one domain event.
type Envelope struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AggregateID string          `json:"aggregateId,omitempty"`
	PublishedAt time.Time       `json:"publishedAt"`
	Payload     domoutbox.Event `json:"payload"`
}

// ForwardUseCase hands one domain event to the broker.
type ForwardUseCase struct {
	sink Sink
	obs  *application.Instrument
}

var _ application.UseCase[ForwardCommand, *Envelope] = (*ForwardUseCase)(nil)

func NewForwardUseCase(sink Sink, tel observability.Observability) *ForwardUseCase {
	return &ForwardUseCase{sink: sink, obs: application.NewInstrument(tel, relayService)}
}

func (uc *ForwardUseCase) Execute(ctx context.Context, cmd ForwardCommand) (_ *Envelope, err error) {
	if cmd.Event == nil {
		return nil, application.Validation("event is required")
	}
	name := cmd.Event.EventName()
	ctx, run := uc.obs.Begin(ctx, useCaseForward, "ForwardEvent",
		attribute.String("event", name),
		attribute.String("event.id", cmd.EventID),
	)
	defer func() { run.End(err) }()

	if uc.sink == nil {
		run.Fail("SINK_NOT_CONFIGURED")
		return nil, application.Upstream(brokerPeer, errors.New("not configured"))
	}
	env := &Envelope{
		ID:          cmd.EventID,
		Name:        name,
		AggregateID: domoutbox.AggregateID(cmd.Event),
		PublishedAt: time.Now().UTC(),
		Payload:     cmd.Event,
	}
	err = uc.obs.External(ctx, brokerPeer, name, func(ctx context.Context) error {
		return uc.sink.PublishJSON(ctx, name, env.ID, env)
	})
	if err != nil {
		run.Fail("BROKER_PUBLISH_FAILED")
		return nil, application.Upstream(brokerPeer, err)
	}
	return env, nil
}
