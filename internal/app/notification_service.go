package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"parley/internal/bus"
	"parley/internal/config"
	"parley/internal/domain"
	"parley/internal/events"
	"parley/internal/notifications"
)

// NotificationService listens to bus events and emits user-facing notifications.
type NotificationService struct {
	bus           bus.MessageBus
	currentConfig func() config.AppConfig
	isForeground  func() bool
	sender        notifications.Sender
	logger        *slog.Logger

	connStatusMu     sync.Mutex
	lastConnState    events.ConnectionState
	lastConnStateSet bool
}

func NewNotificationService(
	messageBus bus.MessageBus,
	currentConfig func() config.AppConfig,
	isForeground func() bool,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:           messageBus,
		currentConfig: currentConfig,
		isForeground:  isForeground,
		sender:        sender,
		logger:        logger,
	}
}

func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	batchSub := s.bus.Subscribe(events.TopicConversations)
	connSub := s.bus.Subscribe(events.TopicConnStatus)

	go func() {
		defer s.bus.Unsubscribe(batchSub, events.TopicConversations)
		defer s.bus.Unsubscribe(connSub, events.TopicConnStatus)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-batchSub:
				if !ok {
					return
				}
				batch, ok := raw.(domain.ConversationBatch)
				if !ok {
					continue
				}
				s.handleBatch(batch)
			case raw, ok := <-connSub:
				if !ok {
					return
				}
				status, ok := raw.(events.ConnStatus)
				if !ok {
					continue
				}
				s.handleConnStatus(status)
			}
		}
	}()
}

func (s *NotificationService) handleBatch(batch domain.ConversationBatch) {
	prefs := s.notificationPrefs()
	if !s.shouldNotify(prefs, prefs.Events.IncomingMessage) {
		return
	}

	now := time.Now()
	for _, conv := range batch.Items {
		if conv.Direction != domain.DirectionIn || conv.Unread <= 0 {
			continue
		}
		if conv.MutedUntil.After(now) {
			continue
		}
		s.send(conversationPayload(conv))
	}
}

func (s *NotificationService) handleConnStatus(status events.ConnStatus) {
	prefs := s.notificationPrefs()
	if status.State == "" {
		return
	}

	s.connStatusMu.Lock()
	if s.lastConnStateSet && s.lastConnState == status.State {
		s.connStatusMu.Unlock()

		return
	}
	s.lastConnState = status.State
	s.lastConnStateSet = true
	s.connStatusMu.Unlock()

	if status.State != events.ConnectionStateConnected &&
		status.State != events.ConnectionStateDisconnected {
		return
	}
	if !s.shouldNotify(prefs, prefs.Events.ConnectionStatus) {
		return
	}

	stream := strings.TrimSpace(status.StreamName)
	if stream == "" {
		stream = "Event stream"
	}
	details := "No connection details"
	if errText := strings.TrimSpace(status.Err); errText != "" {
		details = fmt.Sprintf("error: %s", errText)
	}

	s.send(notifications.Payload{
		Title:   fmt.Sprintf("%s - %s", stream, status.State),
		Content: details,
	})
}

func (s *NotificationService) shouldNotify(prefs config.NotificationConfig, kindEnabled bool) bool {
	if !kindEnabled {
		return false
	}
	if prefs.NotifyWhenFocused {
		return true
	}
	if s.isForeground == nil {
		return true
	}

	return !s.isForeground()
}

func (s *NotificationService) notificationPrefs() config.NotificationConfig {
	cfg := config.Default()
	if s.currentConfig != nil {
		cfg = s.currentConfig()
		cfg.FillMissingDefaults()
	}

	return cfg.UI.Notifications
}

func (s *NotificationService) send(notification notifications.Payload) {
	title := strings.TrimSpace(notification.Title)
	content := strings.TrimSpace(notification.Content)
	if title == "" && content == "" {
		return
	}
	s.logger.Debug("sending notification", "title", title)
	s.sender.Send(notifications.Payload{
		Title:   title,
		Content: content,
	})
}

// conversationPayload renders a conversation row the way chat lists
// label threads, "#channel" or "@contact".
func conversationPayload(conv domain.Conversation) notifications.Payload {
	titlePrefix := "@"
	if conv.IsGroup {
		titlePrefix = "#"
	}
	subject := strings.TrimSpace(conv.Title)
	if subject == "" {
		subject = strings.TrimSpace(domain.ThreadKeyFor(conv))
	}
	if subject == "" {
		subject = "unknown"
	}

	body := strings.TrimSpace(conv.Preview)
	if body == "" {
		body = "(empty)"
	}

	return notifications.Payload{
		Title:   titlePrefix + subject,
		Content: body,
	}
}
