package backend

import (
	"context"
	"log/slog"
	"time"

	"parley/internal/bus"
	"parley/internal/events"
)

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 15 * time.Second
)

// FeedService owns the live event stream: it keeps the stream connected
// with backoff and republishes decoded events on the bus.
type FeedService struct {
	logger *slog.Logger
	bus    bus.MessageBus
	stream Stream
}

func NewFeedService(logger *slog.Logger, b bus.MessageBus, stream Stream) *FeedService {
	return &FeedService{
		logger: logger,
		bus:    b,
		stream: stream,
	}
}

func (s *FeedService) Start(ctx context.Context) {
	go s.runStream(ctx)
}

func (s *FeedService) runStream(ctx context.Context) {
	backoff := reconnectBaseDelay
	for {
		if err := ctx.Err(); err != nil {
			return
		}

		s.publishConnStatus(events.ConnectionStateConnecting, nil)
		if err := s.stream.Connect(ctx); err != nil {
			s.publishConnStatus(events.ConnectionStateReconnecting, err)
			s.logger.Error("stream connect failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return
			}
			if backoff < reconnectMaxDelay {
				backoff *= 2
			}

			continue
		}

		backoff = reconnectBaseDelay
		s.publishConnStatus(events.ConnectionStateConnected, nil)

		err := s.runReader(ctx)
		_ = s.stream.Close()
		if ctx.Err() != nil {
			return
		}
		s.publishConnStatus(events.ConnectionStateReconnecting, err)

		if !sleepWithContext(ctx, backoff) {
			return
		}
		if backoff < reconnectMaxDelay {
			backoff *= 2
		}
	}
}

func (s *FeedService) runReader(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		event, err := s.stream.Next(ctx)
		if err != nil {
			return err
		}
		s.dispatch(event)
	}
}

func (s *FeedService) dispatch(event Event) {
	if event.Conversations != nil {
		s.bus.Publish(events.TopicConversations, *event.Conversations)
	}
	if event.Removed != nil {
		s.bus.Publish(events.TopicConversationGone, *event.Removed)
	}
	if event.Typing != nil {
		s.bus.Publish(events.TopicTyping, *event.Typing)
	}
	if event.Receipt != nil {
		s.bus.Publish(events.TopicReceipts, *event.Receipt)
	}
	if event.Contact != nil {
		s.bus.Publish(events.TopicContactUpdate, *event.Contact)
	}
}

func (s *FeedService) publishConnStatus(state events.ConnectionState, err error) {
	status := events.ConnStatus{
		State:      state,
		StreamName: s.stream.Name(),
		Timestamp:  time.Now(),
	}
	if err != nil {
		status.Err = err.Error()
	}
	s.bus.Publish(events.TopicConnStatus, status)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
