// Package chat holds the conversation log shown by the chat view and the
// dispatcher that runs one request/reply cycle per user message.
package chat

import (
	"fmt"
	"sync"

	"github.com/raphaelgruber/sccse-chat/internal/session"
)

// Sender identifies who authored an entry.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageEntry is one displayed chat bubble. Entries are never modified after creation.
type MessageEntry struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// WelcomeMessage returns the greeting seeded for a user with a display name.
func WelcomeMessage(displayName string) string {
	return fmt.Sprintf("👋 Welcome back, %s! How can I help you today?", displayName)
}

// Conversation is an append-only, ordered log of entries for one chat view
// instance. The slice order is the display order.
type Conversation struct {
	mu      sync.RWMutex
	entries []MessageEntry
	seeded  bool
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{entries: make([]MessageEntry, 0)}
}

// Seed appends the welcome greeting when s has a display name. It runs at
// most once per conversation; later calls are no-ops. Reports whether an
// entry was appended.
func (c *Conversation) Seed(s session.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seeded {
		return false
	}
	c.seeded = true

	if s.DisplayName == "" {
		return false
	}
	c.entries = append(c.entries, MessageEntry{Sender: SenderBot, Text: WelcomeMessage(s.DisplayName)})
	return true
}

// Append adds e to the tail.
func (c *Conversation) Append(e MessageEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// Entries returns a copy of the log in insertion order.
func (c *Conversation) Entries() []MessageEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]MessageEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Last returns the most recent entry, or false if the log is empty.
func (c *Conversation) Last() (MessageEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return MessageEntry{}, false
	}
	return c.entries[len(c.entries)-1], true
}
