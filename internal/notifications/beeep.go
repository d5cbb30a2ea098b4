package notifications

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// BeeepSender shows desktop notifications through beeep, which picks
// the native mechanism per platform (D-Bus, toasts, osascript).
type BeeepSender struct {
	logger *slog.Logger
}

func NewBeeepSender(logger *slog.Logger, appName string) *BeeepSender {
	if appName != "" {
		beeep.AppName = appName
	}

	return &BeeepSender{logger: logger}
}

func (s *BeeepSender) Send(payload Payload) {
	if err := beeep.Notify(payload.Title, payload.Content, ""); err != nil {
		s.logger.Warn("desktop notification failed", "error", err)
	}
}
