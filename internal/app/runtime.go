package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"parley/internal/backend"
	"parley/internal/bus"
	"parley/internal/config"
	"parley/internal/convlist"
	"parley/internal/domain"
	"parley/internal/events"
	"parley/internal/logging"
	"parley/internal/notifications"
	"parley/internal/persistence"
)

// Runtime owns every long-lived component of a client session and the
// order they come up and go down in.
type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.Bus
	DB         *sql.DB

	ConversationRepo *persistence.ConversationRepo
	SyncStateRepo    *persistence.SyncStateRepo
	WriterQueue      *persistence.WriterQueue

	List *domain.ListStore

	Feed       *backend.FeedService
	Controller *convlist.Controller
	Mutes      *convlist.MuteCoordinator
	Typing     *convlist.TypingPublisher

	connStatusMu    sync.RWMutex
	connStatus      events.ConnStatus
	connStatusKnown bool
}

// Initialize brings up config, logging, the cache database, the event
// feed and the conversation components. A nil stream skips the feed,
// which keeps the runtime usable against a backend without live events.
func Initialize(parent context.Context, services backend.Services, stream backend.Stream, isForeground func() bool) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting parley runtime", "version", VersionString())

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.DB = db

	rt.ConversationRepo = persistence.NewConversationRepo(db)
	rt.SyncStateRepo = persistence.NewSyncStateRepo(db)

	list := domain.NewListStore()
	if err := domain.LoadListFromRepository(ctx, list, rt.ConversationRepo); err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.List = list

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b
	connSub := b.Subscribe(events.TopicConnStatus)
	go rt.captureConnStatus(ctx, connSub)

	writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), 512)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue
	domain.StartPersistenceProjection(ctx, b, writerQueue, rt.ConversationRepo)

	if stream != nil {
		rt.Feed = backend.NewFeedService(logMgr.Logger("feed"), b, stream)
		rt.Feed.Start(ctx)
	}

	rt.Controller = convlist.NewController(
		logMgr.Logger("convlist"),
		b,
		list,
		rt.ConversationRepo,
		rt.SyncStateRepo,
		services.Conversations,
		services.Contacts,
		cfg.Sync.PageSize,
	)
	rt.Controller.Start(ctx)

	rt.Mutes = convlist.NewMuteCoordinator(logMgr.Logger("mutes"), services.Channels, services.Contacts)

	typingInterval := time.Duration(cfg.UI.TypingIntervalSeconds) * time.Second
	rt.Typing = convlist.NewTypingPublisher(logMgr.Logger("typing"), services.Typing, typingInterval)
	rt.Typing.Start(ctx)

	sender := notifications.NewBeeepSender(logMgr.Logger("notifications"), Name)
	notifySvc := NewNotificationService(b, rt.CurrentConfig, isForeground, sender, logMgr.Logger("app.notifications"))
	notifySvc.Start(ctx)

	return rt, nil
}

func (r *Runtime) captureConnStatus(ctx context.Context, sub bus.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-sub:
			if !ok {
				return
			}
			status, ok := raw.(events.ConnStatus)
			if !ok {
				continue
			}
			r.setConnStatus(status)
		}
	}
}

func (r *Runtime) setConnStatus(status events.ConnStatus) {
	r.connStatusMu.Lock()
	r.connStatus = status
	r.connStatusKnown = true
	r.connStatusMu.Unlock()
}

func (r *Runtime) CurrentConnStatus() (events.ConnStatus, bool) {
	r.connStatusMu.RLock()
	status := r.connStatus
	known := r.connStatusKnown
	r.connStatusMu.RUnlock()
	return status, known
}

func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	cfg := r.Config
	r.mu.RUnlock()

	return cfg
}

func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	cfg.UI.LastSelectedThread = r.Config.UI.LastSelectedThread
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()
		return err
	}
	r.Config = cfg
	r.mu.Unlock()

	if err := r.LogManager.Configure(cfg.Logging, r.Paths.LogFile); err != nil {
		return err
	}

	return nil
}

func (r *Runtime) RememberSelectedThread(threadKey string) {
	normalized := strings.TrimSpace(threadKey)

	r.mu.Lock()
	if r.Config.UI.LastSelectedThread == normalized {
		r.mu.Unlock()
		return
	}
	cfg := r.Config
	cfg.UI.LastSelectedThread = normalized
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()
		slog.Warn("save selected thread", "error", err)
		return
	}
	r.Config = cfg
	r.mu.Unlock()
}

// ClearDatabase wipes the conversation cache and empties the in-memory
// list. The next Load repages from the platform.
func (r *Runtime) ClearDatabase() error {
	if r.DB == nil {
		return fmt.Errorf("database is not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := persistence.ClearDatabase(ctx, r.DB); err != nil {
		return err
	}

	if r.List != nil {
		r.List.Reset()
	}
	slog.Info("database cleared")

	return nil
}

func (r *Runtime) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}
	return nil
}
