package convlist

import (
	"context"
	"log/slog"
	"time"

	"parley/internal/backend"
	"parley/internal/domain"
)

// MuteCoordinator routes mute intents to the channel or user mute
// service depending on the record's shape. Failures surface only as a
// false result; detail stays in the logs.
type MuteCoordinator struct {
	logger   *slog.Logger
	channels backend.ChannelService
	contacts backend.ContactService
}

func NewMuteCoordinator(logger *slog.Logger, channels backend.ChannelService, contacts backend.ContactService) *MuteCoordinator {
	return &MuteCoordinator{
		logger:   logger,
		channels: channels,
		contacts: contacts,
	}
}

// Mute submits a mute request for the conversation's thread. The result
// channel receives exactly one boolean and is then closed. There is no
// retry or timeout; cancellation is whatever ctx carries.
func (m *MuteCoordinator) Mute(ctx context.Context, conv domain.Conversation, until time.Time) <-chan bool {
	resCh := make(chan bool, 1)
	go func() {
		defer close(resCh)
		resCh <- m.mute(ctx, conv, until)
	}()

	return resCh
}

// Unmute is a mute expiring immediately.
func (m *MuteCoordinator) Unmute(ctx context.Context, conv domain.Conversation) <-chan bool {
	return m.Mute(ctx, conv, time.Now())
}

func (m *MuteCoordinator) mute(ctx context.Context, conv domain.Conversation, until time.Time) bool {
	if conv.IsGroup {
		if conv.GroupID == "" {
			return false
		}
		channel, found, err := m.channels.ChannelByGroupID(ctx, conv.GroupID)
		if err != nil {
			m.logger.Warn("channel lookup failed", "group_id", conv.GroupID, "error", err)

			return false
		}
		if !found {
			return false
		}
		if err := m.channels.MuteChannel(ctx, backend.ChannelMuteRequest{ChannelKey: channel.Key, Until: until}); err != nil {
			m.logger.Warn("channel mute failed", "channel_key", channel.Key, "error", err)

			return false
		}

		return true
	}

	if conv.ContactID == "" {
		return false
	}
	contact, found, err := m.contacts.ContactByID(ctx, conv.ContactID)
	if err != nil {
		m.logger.Warn("contact lookup failed", "contact_id", conv.ContactID, "error", err)

		return false
	}
	if !found {
		return false
	}
	if err := m.contacts.MuteUser(ctx, backend.UserMuteRequest{UserID: contact.ID, Until: until}); err != nil {
		m.logger.Warn("user mute failed", "contact_id", contact.ID, "error", err)

		return false
	}

	return true
}
