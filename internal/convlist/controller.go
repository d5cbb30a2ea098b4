package convlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"parley/internal/backend"
	"parley/internal/bus"
	"parley/internal/domain"
	"parley/internal/events"
)

const (
	defaultPageSize   = 60
	dispatchQueueSize = 16
)

// Controller drives the conversation list. It owns the store, folds
// incoming batches into it, and signals the registered observer when
// the host UI should re-render. Observer and chat-surface methods are
// always invoked from the controller's dispatch goroutine, so the host
// never sees two signals at once.
type Controller struct {
	logger        *slog.Logger
	bus           bus.MessageBus
	store         *domain.ListStore
	repo          domain.ConversationRepository
	syncState     domain.SyncStateRepository
	conversations backend.ConversationService
	contacts      backend.ContactService
	pageSize      int

	mu          sync.RWMutex
	observer    Observer
	chatSurface ChatSurface

	tasks    chan func()
	refresh  chan struct{}
	fetching atomic.Bool
}

func NewController(
	logger *slog.Logger,
	b bus.MessageBus,
	store *domain.ListStore,
	repo domain.ConversationRepository,
	syncState domain.SyncStateRepository,
	conversations backend.ConversationService,
	contacts backend.ContactService,
	pageSize int,
) *Controller {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Controller{
		logger:        logger,
		bus:           b,
		store:         store,
		repo:          repo,
		syncState:     syncState,
		conversations: conversations,
		contacts:      contacts,
		pageSize:      pageSize,
		tasks:         make(chan func(), dispatchQueueSize),
		refresh:       make(chan struct{}, 1),
	}
}

// Start runs the dispatch loop until ctx ends.
func (c *Controller) Start(ctx context.Context) {
	batchSub := c.bus.Subscribe(events.TopicConversations)
	typingSub := c.bus.Subscribe(events.TopicTyping)
	receiptSub := c.bus.Subscribe(events.TopicReceipts)
	contactSub := c.bus.Subscribe(events.TopicContactUpdate)

	go func() {
		defer c.bus.Unsubscribe(batchSub, events.TopicConversations)
		defer c.bus.Unsubscribe(typingSub, events.TopicTyping)
		defer c.bus.Unsubscribe(receiptSub, events.TopicReceipts)
		defer c.bus.Unsubscribe(contactSub, events.TopicContactUpdate)

		for {
			select {
			case <-ctx.Done():
				return
			case task := <-c.tasks:
				task()
			case <-c.refresh:
				c.drainTasks()
				c.signalListUpdated()
			case raw, ok := <-batchSub:
				if !ok {
					return
				}
				batch, ok := raw.(domain.ConversationBatch)
				if !ok {
					continue
				}
				c.store.Merge(batch)
				c.signalListUpdated()
			case raw, ok := <-typingSub:
				if !ok {
					return
				}
				typing, ok := raw.(domain.TypingEvent)
				if !ok {
					continue
				}
				c.handleTyping(ctx, typing)
			case raw, ok := <-receiptSub:
				if !ok {
					return
				}
				receipt, ok := raw.(domain.DeliveryReceipt)
				if !ok {
					continue
				}
				c.handleReceipt(receipt)
			case raw, ok := <-contactSub:
				if !ok {
					return
				}
				update, ok := raw.(domain.ContactUpdate)
				if !ok {
					continue
				}
				c.handleContactUpdate(update)
			}
		}
	}()
}

func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

func (c *Controller) ClearObserver() {
	c.mu.Lock()
	c.observer = nil
	c.mu.Unlock()
}

func (c *Controller) SetChatSurface(s ChatSurface) {
	c.mu.Lock()
	c.chatSurface = s
	c.mu.Unlock()
}

func (c *Controller) ClearChatSurface() {
	c.mu.Lock()
	c.chatSurface = nil
	c.mu.Unlock()
}

func (c *Controller) Count() int {
	return c.store.Count()
}

func (c *Controller) ConversationAt(index int) (domain.Conversation, bool) {
	return c.store.At(index)
}

// Load signals the loading start, reads the cached list, and schedules
// a deferred list-updated signal that fires once the dispatch loop
// drains its current work unit.
func (c *Controller) Load(ctx context.Context) error {
	c.postStartedLoading()
	if err := domain.LoadListFromRepository(ctx, c.store, c.repo); err != nil {
		return err
	}
	c.requestRefresh()

	return nil
}

// FetchMore pulls the next conversation page from the server. It is a
// no-op when everything is already fetched or a fetch is in flight. The
// fetched batch goes through the bus so merging, persistence, and the
// list-updated signal follow the same path as live updates.
func (c *Controller) FetchMore(ctx context.Context) error {
	fetched, err := c.syncState.AllFetched(ctx)
	if err != nil {
		c.logger.Warn("read all-fetched flag", "error", err)
	}
	if fetched {
		return nil
	}
	if !c.fetching.CompareAndSwap(false, true) {
		return nil
	}
	defer c.fetching.Store(false)

	c.postStartedLoading()
	before := c.store.OldestCreatedAt()
	if before.IsZero() {
		before = time.Now()
	}
	items, err := c.conversations.FetchConversations(ctx, before, c.pageSize)
	if err != nil {
		return fmt.Errorf("fetch conversations: %w", err)
	}
	if len(items) < c.pageSize {
		if err := c.syncState.SetAllFetched(ctx, true); err != nil {
			c.logger.Warn("persist all-fetched flag", "error", err)
		}
	}
	c.bus.Publish(events.TopicConversations, domain.ConversationBatch{Items: items})

	return nil
}

// Delete removes the record from the list and the local cache. The host
// animates the row removal itself, so no list signal fires.
func (c *Controller) Delete(conv domain.Conversation) bool {
	if !c.store.Remove(conv) {
		return false
	}
	if key := domain.ThreadKeyFor(conv); key != "" {
		c.bus.Publish(events.TopicConversationGone, domain.ConversationRemoved{ThreadKey: key})
	}

	return true
}

func (c *Controller) handleTyping(ctx context.Context, typing domain.TypingEvent) {
	surface := c.chatSurfaceRef()
	if surface == nil {
		return
	}
	contact, found, err := c.contacts.ContactByID(ctx, typing.ContactID)
	if err != nil {
		c.logger.Warn("contact lookup for typing failed", "contact_id", typing.ContactID, "error", err)

		return
	}
	if !found || contact.BlockedByMe || contact.BlockedByPeer {
		return
	}
	surface.TypingStatus(typing.ContactID, typing.Typing)
}

func (c *Controller) handleReceipt(receipt domain.DeliveryReceipt) {
	if surface := c.chatSurfaceRef(); surface != nil {
		surface.DeliveryStatus(receipt)
	}
}

func (c *Controller) handleContactUpdate(update domain.ContactUpdate) {
	row, ok := c.store.RowForContact(update.ContactID)
	if !ok {
		return
	}
	if o := c.observerRef(); o != nil {
		o.RowUpdated(row)
	}
}

func (c *Controller) postStartedLoading() {
	c.post(func() {
		if o := c.observerRef(); o != nil {
			o.StartedLoading()
		}
	})
}

func (c *Controller) post(task func()) {
	select {
	case c.tasks <- task:
	default:
		c.logger.Debug("dispatch queue full, dropping signal")
	}
}

func (c *Controller) requestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// drainTasks runs every task already queued before a refresh is served, so a
// pending StartedLoading reaches the observer before the ListUpdated it led to.
func (c *Controller) drainTasks() {
	for {
		select {
		case task := <-c.tasks:
			task()
		default:
			return
		}
	}
}

func (c *Controller) signalListUpdated() {
	if o := c.observerRef(); o != nil {
		o.ListUpdated()
	}
}

func (c *Controller) observerRef() Observer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.observer
}

func (c *Controller) chatSurfaceRef() ChatSurface {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.chatSurface
}
