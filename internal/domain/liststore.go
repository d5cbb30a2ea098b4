package domain

import (
	"sort"
	"sync"
	"time"
)

// ListStore holds the ordered conversation list backing the UI. A thread
// appears at most once; Merge keeps the invariant. All methods are safe
// for concurrent use.
type ListStore struct {
	mu    sync.RWMutex
	items []Conversation
}

func NewListStore() *ListStore {
	return &ListStore{}
}

func (s *ListStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// At returns the record at index. Out-of-range indexes report false
// instead of panicking so stale UI row references stay harmless.
func (s *ListStore) At(index int) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.items) {
		return Conversation{}, false
	}

	return s.items[index], true
}

// ReplaceAll swaps the whole list for items, keeping its own copy.
func (s *ListStore) ReplaceAll(items []Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]Conversation, len(items))
	copy(s.items, items)
}

// Merge folds a batch into the list. A record matching an existing
// thread replaces it in place, a novel thread appends. Matching runs
// against the live list, so when two batch items share a thread the
// later one overwrites the earlier. When more than one record remains
// the list is re-sorted by recency.
func (s *ListStore) Merge(batch ConversationBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, incoming := range batch.Items {
		pos := s.indexOfThreadLocked(incoming)
		if pos >= 0 {
			s.items[pos] = incoming

			continue
		}
		s.items = append(s.items, incoming)
	}

	if len(s.items) > 1 {
		sort.SliceStable(s.items, func(i, j int) bool {
			return moreRecent(s.items[i], s.items[j])
		})
	}
}

// Remove deletes the stored record equal to conv, matching on the
// backend record key when present and falling back to thread identity.
// Removing an absent record is a no-op.
func (s *ListStore) Remove(conv Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if !sameRecord(existing, conv) {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)

		return true
	}

	return false
}

// RowForContact locates the first group-less row for the contact. A
// group whose latest sender happens to match never claims the row.
func (s *ListStore) RowForContact(contactID string) (int, bool) {
	if contactID == "" {
		return 0, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, c := range s.items {
		if c.GroupID == "" && c.ContactID == contactID {
			return i, true
		}
	}

	return 0, false
}

func (s *ListStore) Snapshot() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conversation, len(s.items))
	copy(out, s.items)

	return out
}

// OldestCreatedAt returns the oldest known timestamp in the list, zero
// when the list is empty or no record carries one. Used as the paging
// anchor for server fetches.
func (s *ListStore) OldestCreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest time.Time
	for _, c := range s.items {
		if c.CreatedAt.IsZero() {
			continue
		}
		if oldest.IsZero() || c.CreatedAt.Before(oldest) {
			oldest = c.CreatedAt
		}
	}

	return oldest
}

func (s *ListStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *ListStore) indexOfThreadLocked(c Conversation) int {
	for i, existing := range s.items {
		if SameThread(existing, c) {
			return i
		}
	}

	return -1
}

// moreRecent orders a before b only when both carry timestamps and a's
// is strictly newer. Pairs involving an unknown timestamp keep their
// current relative order under the stable sort.
func moreRecent(a, b Conversation) bool {
	if a.CreatedAt.IsZero() || b.CreatedAt.IsZero() {
		return false
	}

	return a.CreatedAt.After(b.CreatedAt)
}

func sameRecord(a, b Conversation) bool {
	if b.Key != "" {
		return a.Key == b.Key
	}

	return SameThread(a, b)
}
