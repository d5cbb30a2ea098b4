package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"parley/internal/app"
	"parley/internal/backend"
	"parley/internal/convlist"
	"parley/internal/domain"
)

const (
	mergeWaitTimeout = 5 * time.Second
	maxPreviewLen    = 64
	maxRowsLogged    = 10
)

func main() {
	if err := run(); err != nil {
		slog.Error("run debug tool", "error", err)
		os.Exit(1)
	}
}

func run() error {
	listenFor := flag.Duration("listen-for", 0, "listen duration, e.g. 30s")
	eventDelay := flag.Duration("event-delay", 400*time.Millisecond, "delay between scripted feed events")
	demoMute := flag.Bool("mute", true, "mute the seeded channel after the history page lands")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, general := seedSimulator()
	stream := backend.NewScriptedStream("scripted", *eventDelay, scriptedEvents(time.Now()))

	rt, err := app.Initialize(ctx, sim.Services(), stream, func() bool { return false })
	if err != nil {
		return fmt.Errorf("initialize runtime: %w", err)
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			slog.Warn("close runtime", "error", closeErr)
		}
	}()

	logger := rt.LogManager.Logger("cli")
	logger.Info("starting parley debug", "version", app.VersionString())

	view := &consoleView{logger: logger, controller: rt.Controller}
	rt.Controller.SetObserver(view)
	rt.Controller.SetChatSurface(view)
	defer rt.Controller.ClearObserver()
	defer rt.Controller.ClearChatSurface()

	if err := rt.Controller.Load(rt.Ctx); err != nil {
		return fmt.Errorf("load conversation list: %w", err)
	}
	if err := rt.Controller.FetchMore(rt.Ctx); err != nil {
		return fmt.Errorf("fetch history page: %w", err)
	}
	if err := waitForRows(ctx, rt.Controller, 4, mergeWaitTimeout); err != nil {
		logger.Warn("history page wait", "error", err)
	}
	logger.Info("history page merged", "rows", rt.Controller.Count())

	if deleted := rt.Controller.Delete(domain.Conversation{ContactID: "bob"}); deleted {
		logger.Info("deleted conversation", "thread", domain.ThreadKeyForContact("bob"))
	}

	if *demoMute {
		until := time.Now().Add(30 * time.Minute)
		if ok := <-rt.Mutes.Mute(rt.Ctx, general, until); ok {
			logger.Info("muted channel", "group_id", general.GroupID, "until", until.Format(time.RFC3339))
		} else {
			logger.Warn("mute channel failed", "group_id", general.GroupID)
		}
	}

	aliceThread := domain.ThreadKeyForContact("alice")
	if err := rt.Typing.Publish(rt.Ctx, aliceThread, true); err != nil {
		logger.Warn("publish typing", "error", err)
	}
	if err := rt.Typing.Publish(rt.Ctx, aliceThread, false); err != nil {
		logger.Warn("publish typing stop", "error", err)
	}
	logger.Info("typing calls recorded", "count", len(sim.TypingCalls()))

	if *listenFor > 0 {
		logger.Info("listen mode", "duration", *listenFor)
		select {
		case <-ctx.Done():
		case <-time.After(*listenFor):
		}
		logSnapshot(logger, rt.Controller)
		return nil
	}

	logger.Info("listening until interrupt")
	<-ctx.Done()
	logSnapshot(logger, rt.Controller)

	return nil
}

func seedSimulator() (*backend.Simulator, domain.Conversation) {
	sim := backend.NewSimulator()
	sim.AddChannel(backend.Channel{Key: "ch-general", GroupID: "grp-general", Title: "general"})
	sim.AddChannel(backend.Channel{Key: "ch-random", GroupID: "grp-random", Title: "random"})
	sim.AddContact(backend.Contact{ID: "alice", DisplayName: "Alice"})
	sim.AddContact(backend.Contact{ID: "bob", DisplayName: "Bob", BlockedByMe: true})

	now := time.Now()
	general := domain.Conversation{
		GroupID:   "grp-general",
		IsGroup:   true,
		Title:     "general",
		Preview:   "welcome aboard",
		Direction: domain.DirectionIn,
		Unread:    2,
		CreatedAt: now.Add(-90 * time.Minute),
	}
	sim.SeedConversations(
		general,
		domain.Conversation{ContactID: "alice", Title: "Alice", Preview: "see you tomorrow", Direction: domain.DirectionOut, CreatedAt: now.Add(-2 * time.Hour)},
		domain.Conversation{GroupID: "grp-random", IsGroup: true, Title: "random", Preview: "lunch?", Direction: domain.DirectionIn, Unread: 5, CreatedAt: now.Add(-4 * time.Hour)},
		domain.Conversation{ContactID: "bob", Title: "Bob", Preview: "ping", Direction: domain.DirectionIn, Unread: 1, CreatedAt: now.Add(-26 * time.Hour)},
	)

	return sim, general
}

func scriptedEvents(now time.Time) []backend.Event {
	incoming := domain.Conversation{
		Key:       "conv-alice",
		ContactID: "alice",
		Title:     "Alice",
		Preview:   "are you around?",
		Direction: domain.DirectionIn,
		Unread:    1,
		CreatedAt: now,
	}
	standup := domain.Conversation{
		Key:       "conv-general",
		GroupID:   "grp-general",
		IsGroup:   true,
		Title:     "general",
		Preview:   "standup in five",
		Direction: domain.DirectionIn,
		Unread:    3,
		CreatedAt: now.Add(2 * time.Second),
	}

	return []backend.Event{
		{Conversations: &domain.ConversationBatch{Items: []domain.Conversation{incoming}}},
		{Typing: &domain.TypingEvent{ContactID: "alice", Typing: true}},
		{Conversations: &domain.ConversationBatch{Items: []domain.Conversation{standup}}},
		{Typing: &domain.TypingEvent{ContactID: "alice", Typing: false}},
		{Receipt: &domain.DeliveryReceipt{MessageKey: "msg-281", ContactID: "alice", Status: domain.DeliveryStateRead}},
		{Contact: &domain.ContactUpdate{ContactID: "alice"}},
	}
}

func waitForRows(ctx context.Context, controller *convlist.Controller, want int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if controller.Count() >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	return fmt.Errorf("list has %d rows, want %d within %s", controller.Count(), want, timeout)
}

// consoleView renders observer signals as log lines.
type consoleView struct {
	logger     *slog.Logger
	controller *convlist.Controller
}

func (v *consoleView) StartedLoading() {
	v.logger.Info("list loading")
}

func (v *consoleView) ListUpdated() {
	count := v.controller.Count()
	v.logger.Info("list updated", "count", count)
	for i := 0; i < count; i++ {
		if i >= maxRowsLogged {
			v.logger.Info("list truncated", "remaining", count-i)
			break
		}
		conv, ok := v.controller.ConversationAt(i)
		if !ok {
			break
		}
		v.logger.Info("row", "index", i, "line", conversationLine(conv))
	}
}

func (v *consoleView) RowUpdated(position int) {
	conv, ok := v.controller.ConversationAt(position)
	if !ok {
		v.logger.Info("row refreshed", "index", position)
		return
	}
	v.logger.Info("row refreshed", "index", position, "line", conversationLine(conv))
}

func (v *consoleView) TypingStatus(contactID string, typing bool) {
	v.logger.Info("typing", "contact", contactID, "typing", typing)
}

func (v *consoleView) DeliveryStatus(receipt domain.DeliveryReceipt) {
	v.logger.Info("delivery", "message", receipt.MessageKey, "contact", receipt.ContactID, "status", receipt.Status)
}

func logSnapshot(logger *slog.Logger, controller *convlist.Controller) {
	count := controller.Count()
	logger.Info("final list", "count", count)
	for i := 0; i < count; i++ {
		conv, ok := controller.ConversationAt(i)
		if !ok {
			break
		}
		logger.Info("final row", "index", i, "line", conversationLine(conv))
	}
}

// conversationLine renders a row the way list UIs label threads,
// "#channel" or "@contact", with unread count and a preview snippet.
func conversationLine(conv domain.Conversation) string {
	marker := "@"
	if conv.IsGroup {
		marker = "#"
	}
	title := strings.TrimSpace(conv.Title)
	if title == "" {
		title = domain.ThreadKeyFor(conv)
	}
	if title == "" {
		title = "unknown"
	}

	line := marker + title
	if conv.Unread > 0 {
		line = fmt.Sprintf("%s (%d unread)", line, conv.Unread)
	}
	if preview := previewText(conv.Preview); preview != "" {
		line = line + ": " + preview
	}

	return line
}

func previewText(preview string) string {
	preview = strings.TrimSpace(preview)
	if len(preview) <= maxPreviewLen {
		return preview
	}
	return preview[:maxPreviewLen] + "..."
}
