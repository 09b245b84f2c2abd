// Package chatstate holds per-chat moderation settings and the ids of the
// welcome messages still outstanding in each chat. State lives for the
// lifetime of the process and is never persisted.
package chatstate

import (
	"log/slog"
	"sync"
	"time"
)

// Settings are the per-chat switches. They are copied from the configured
// defaults the first time a chat is seen.
type Settings struct {
	DeleteJoinNotice  bool
	DeleteLeaveNotice bool
	DeletePinNotice   bool
	WelcomeEnabled    bool
	AutoDeleteSeconds uint
}

// AutoDeleteDelay is zero when scheduled deletion is disabled.
func (s Settings) AutoDeleteDelay() time.Duration {
	return time.Duration(s.AutoDeleteSeconds) * time.Second
}

type ChatState struct {
	Settings

	// PendingWelcomeIDs are the welcome messages sent for the most recent
	// join batch, in send order.
	PendingWelcomeIDs []string
}

func (s *ChatState) clone() *ChatState {
	c := &ChatState{Settings: s.Settings}
	if s.PendingWelcomeIDs != nil {
		c.PendingWelcomeIDs = append([]string(nil), s.PendingWelcomeIDs...)
	}
	return c
}

// TakePending returns the pending ids and clears the list.
func (s *ChatState) TakePending() []string {
	ids := s.PendingWelcomeIDs
	s.PendingWelcomeIDs = nil
	return ids
}

func (s *ChatState) AddPending(messageID string) {
	s.PendingWelcomeIDs = append(s.PendingWelcomeIDs, messageID)
}

type entry struct {
	mu    sync.Mutex
	state *ChatState
}

// Store maps chat ids to their state. Handlers for the same chat are
// serialized by a per-chat lock; distinct chats never contend beyond the
// map lookup.
type Store struct {
	mu       sync.Mutex
	chats    map[string]*entry
	defaults Settings
}

func NewStore(defaults Settings) *Store {
	return &Store{
		chats:    make(map[string]*entry),
		defaults: defaults,
	}
}

func (s *Store) getOrInitEntry(chatID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.chats[chatID]
	if !ok {
		e = &entry{state: &ChatState{Settings: s.defaults}}
		s.chats[chatID] = e
		slog.Debug("Initialized chat state", "chat_id", chatID)
	}
	return e
}

// GetOrInit returns a snapshot of the chat's state, installing the defaults
// on first use. Mutating the snapshot does not affect the store.
func (s *Store) GetOrInit(chatID string) ChatState {
	e := s.getOrInitEntry(chatID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.state.clone()
}

// Update runs fn with exclusive access to the chat's state. fn may block on
// outbound calls; other handlers for the same chat wait until it returns.
func (s *Store) Update(chatID string, fn func(state *ChatState) error) error {
	e := s.getOrInitEntry(chatID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

// Configure replaces the chat's settings, keeping its pending ids.
func (s *Store) Configure(chatID string, settings Settings) {
	_ = s.Update(chatID, func(state *ChatState) error {
		state.Settings = settings
		return nil
	})
}

func (s *Store) Defaults() Settings {
	return s.defaults
}

func (s *Store) ChatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}
