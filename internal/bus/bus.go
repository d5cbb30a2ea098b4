package bus

import (
	"fmt"
	"log/slog"

	"github.com/cskr/pubsub"
)

const subscriptionBuffer = 128

type Subscription chan any

type MessageBus interface {
	Publish(topic string, msg any)
	Subscribe(topic string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

// Bus distributes domain events between components over topic channels.
type Bus struct {
	ps     *pubsub.PubSub
	logger *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		ps:     pubsub.New(subscriptionBuffer),
		logger: logger,
	}
}

func (b *Bus) Publish(topic string, msg any) {
	b.logger.Debug("publish", "topic", topic, "payload_type", fmt.Sprintf("%T", msg))
	b.ps.Pub(msg, topic)
}

func (b *Bus) Subscribe(topic string) Subscription {
	ch := b.ps.Sub(topic)
	b.logger.Debug("subscribe", "topic", topic)

	return ch
}

func (b *Bus) Unsubscribe(ch Subscription, topics ...string) {
	if len(topics) == 0 {
		b.ps.Unsub(ch)
		b.logger.Debug("unsubscribe", "mode", "all")

		return
	}
	b.ps.Unsub(ch, topics...)
	b.logger.Debug("unsubscribe", "topics", topics)
}

func (b *Bus) Close() {
	b.ps.Shutdown()
}
