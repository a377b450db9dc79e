package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DomainEventsTopic is the in-process topic the realtime hub listens on.
const DomainEventsTopic = "lms.domain-events"

// GoChannelEventPublisher is an in-process pub/sub used for the realtime
// snapshot hub and for environments without Kafka. The same instance serves
// as publisher for services and subscriber source for the hub.
type GoChannelEventPublisher struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

func NewGoChannelEventPublisher(logger *slog.Logger) *GoChannelEventPublisher {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)

	return &GoChannelEventPublisher{
		pubSub: pubSub,
		logger: logger,
	}
}

func (p *GoChannelEventPublisher) Publish(ctx context.Context, event Event) error {
	stampEvent(&event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.pubSub.Publish(DomainEventsTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	return nil
}

// Subscribe returns a channel of raw messages on the domain events topic.
// The realtime hub consumes this to know when to rebuild its snapshot.
func (p *GoChannelEventPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubSub.Subscribe(ctx, DomainEventsTopic)
}

func (p *GoChannelEventPublisher) Close() error {
	return p.pubSub.Close()
}

// FanoutEventPublisher publishes every event to multiple transports, typically
// the in-process channel for the realtime hub plus Kafka for external
// consumers. The first failure aborts the fanout.
type FanoutEventPublisher struct {
	publishers []EventPublisher
}

func NewFanoutEventPublisher(publishers ...EventPublisher) *FanoutEventPublisher {
	return &FanoutEventPublisher{publishers: publishers}
}

func (p *FanoutEventPublisher) Publish(ctx context.Context, event Event) error {
	stampEvent(&event)

	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *FanoutEventPublisher) Close() error {
	var firstErr error
	for _, pub := range p.publishers {
		if err := pub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
