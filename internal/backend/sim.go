package backend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parley/internal/domain"
)

// Simulator is an in-memory platform used by the debug CLI and tests.
// It implements every service port plus enough bookkeeping to inspect
// what was called.
type Simulator struct {
	mu            sync.Mutex
	channels      map[string]Channel
	contacts      map[string]Contact
	conversations []domain.Conversation
	channelMutes  []ChannelMuteRequest
	userMutes     []UserMuteRequest
	typingCalls   []TypingCall
}

type TypingCall struct {
	ThreadKey string
	Typing    bool
}

func NewSimulator() *Simulator {
	return &Simulator{
		channels: make(map[string]Channel),
		contacts: make(map[string]Contact),
	}
}

// Services returns the simulator wired into a runtime service bundle.
func (s *Simulator) Services() Services {
	return Services{Channels: s, Contacts: s, Conversations: s, Typing: s}
}

func (s *Simulator) AddChannel(channel Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel.Key == "" {
		channel.Key = uuid.NewString()
	}
	s.channels[channel.GroupID] = channel
}

func (s *Simulator) AddContact(contact Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.ID] = contact
}

// SeedConversations loads server-side history. Records without a key get
// a generated one.
func (s *Simulator) SeedConversations(items ...domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item.Key == "" {
			item.Key = uuid.NewString()
		}
		s.conversations = append(s.conversations, item)
	}
}

func (s *Simulator) ChannelByGroupID(_ context.Context, groupID string) (Channel, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.channels[groupID]

	return channel, ok, nil
}

func (s *Simulator) MuteChannel(_ context.Context, req ChannelMuteRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelMutes = append(s.channelMutes, req)
	for _, channel := range s.channels {
		if channel.Key != req.ChannelKey {
			continue
		}
		for i := range s.conversations {
			if s.conversations[i].GroupID == channel.GroupID {
				s.conversations[i].MutedUntil = req.Until
			}
		}
	}

	return nil
}

func (s *Simulator) ContactByID(_ context.Context, contactID string) (Contact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[contactID]

	return contact, ok, nil
}

func (s *Simulator) MuteUser(_ context.Context, req UserMuteRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMutes = append(s.userMutes, req)
	for i := range s.conversations {
		if s.conversations[i].GroupID == "" && s.conversations[i].ContactID == req.UserID {
			s.conversations[i].MutedUntil = req.Until
		}
	}

	return nil
}

func (s *Simulator) FetchConversations(_ context.Context, before time.Time, limit int) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Conversation, 0, limit)
	for _, c := range s.conversations {
		if c.CreatedAt.IsZero() || !c.CreatedAt.Before(before) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *Simulator) SetTyping(_ context.Context, threadKey string, typing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typingCalls = append(s.typingCalls, TypingCall{ThreadKey: threadKey, Typing: typing})

	return nil
}

func (s *Simulator) ChannelMutes() []ChannelMuteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChannelMuteRequest, len(s.channelMutes))
	copy(out, s.channelMutes)

	return out
}

func (s *Simulator) UserMutes() []UserMuteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UserMuteRequest, len(s.userMutes))
	copy(out, s.userMutes)

	return out
}

func (s *Simulator) TypingCalls() []TypingCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TypingCall, len(s.typingCalls))
	copy(out, s.typingCalls)

	return out
}

// ScriptedStream replays a fixed event sequence with a delay between
// frames, then blocks until the context ends.
type ScriptedStream struct {
	name  string
	delay time.Duration

	mu     sync.Mutex
	script []Event
	pos    int
}

func NewScriptedStream(name string, delay time.Duration, script []Event) *ScriptedStream {
	return &ScriptedStream{
		name:   name,
		delay:  delay,
		script: script,
	}
}

func (s *ScriptedStream) Name() string {
	return s.name
}

func (s *ScriptedStream) Connect(_ context.Context) error {
	return nil
}

func (s *ScriptedStream) Close() error {
	return nil
}

func (s *ScriptedStream) Next(ctx context.Context) (Event, error) {
	s.mu.Lock()
	if s.pos >= len(s.script) {
		s.mu.Unlock()
		<-ctx.Done()

		return Event{}, ctx.Err()
	}
	event := s.script[s.pos]
	s.pos++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	return event, nil
}
