package domain

import (
	"context"

	"parley/internal/bus"
	"parley/internal/events"
)

// WriteQueue serializes persistence writes from async domain events.
type WriteQueue interface {
	Enqueue(name string, fn func(context.Context) error)
}

// StartPersistenceProjection mirrors bus traffic into the local cache:
// conversation batches upsert rows, removals delete them.
func StartPersistenceProjection(ctx context.Context, b bus.MessageBus, queue WriteQueue, convRepo ConversationRepository) {
	batchSub := b.Subscribe(events.TopicConversations)
	goneSub := b.Subscribe(events.TopicConversationGone)

	go func() {
		defer b.Unsubscribe(batchSub, events.TopicConversations)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-batchSub:
				if !ok {
					return
				}
				batch, ok := raw.(ConversationBatch)
				if !ok {
					continue
				}
				for _, item := range batch.Items {
					conv := item
					queue.Enqueue("upsert_conversation", func(writeCtx context.Context) error {
						return convRepo.Upsert(writeCtx, conv)
					})
				}
			}
		}
	}()

	go func() {
		defer b.Unsubscribe(goneSub, events.TopicConversationGone)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-goneSub:
				if !ok {
					return
				}
				removed, ok := raw.(ConversationRemoved)
				if !ok {
					continue
				}
				key := removed.ThreadKey
				if key == "" {
					continue
				}
				queue.Enqueue("delete_conversation", func(writeCtx context.Context) error {
					return convRepo.Delete(writeCtx, key)
				})
			}
		}
	}()
}
