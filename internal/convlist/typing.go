package convlist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"parley/internal/backend"
)

const (
	typingSweepInterval = time.Minute
	typingIdleTTL       = 5 * time.Minute
)

// TypingPublisher forwards the local user's typing state to the
// platform, throttled per thread so holding a key down does not flood
// the service. Stop events always go out so the remote indicator
// clears.
type TypingPublisher struct {
	logger   *slog.Logger
	typing   backend.TypingService
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*typingLimiter
}

type typingLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewTypingPublisher(logger *slog.Logger, typing backend.TypingService, interval time.Duration) *TypingPublisher {
	if interval <= 0 {
		interval = time.Second
	}

	return &TypingPublisher{
		logger:   logger,
		typing:   typing,
		interval: interval,
		limiters: make(map[string]*typingLimiter),
	}
}

// Start runs the idle-entry sweeper until ctx ends.
func (p *TypingPublisher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(typingSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.sweepIdle(time.Now())
			}
		}
	}()
}

// Publish forwards the typing state for a thread. Start events beyond
// the per-thread rate are dropped; stop events bypass the throttle.
func (p *TypingPublisher) Publish(ctx context.Context, threadKey string, typing bool) error {
	if threadKey == "" {
		return nil
	}
	if !typing {
		return p.typing.SetTyping(ctx, threadKey, false)
	}
	if !p.limiterFor(threadKey).Allow() {
		return nil
	}

	return p.typing.SetTyping(ctx, threadKey, true)
}

func (p *TypingPublisher) limiterFor(threadKey string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.limiters[threadKey]
	if !ok {
		entry = &typingLimiter{lim: rate.NewLimiter(rate.Every(p.interval), 1)}
		p.limiters[threadKey] = entry
	}
	entry.lastSeen = time.Now()

	return entry.lim
}

func (p *TypingPublisher) sweepIdle(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, entry := range p.limiters {
		if now.Sub(entry.lastSeen) > typingIdleTTL {
			delete(p.limiters, key)
		}
	}
	p.logger.Debug("typing limiter sweep", "entries", len(p.limiters))
}
