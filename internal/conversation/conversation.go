// Package conversation is the chat client: an in-memory conversation, a send
// operation that relays the full history, and an optional voice-note capture.
package conversation

import (
	"sync"

	"tienda-chat/internal/domain"
)

// Entry is one displayed element of a conversation. Clip is set for voice
// notes and stays local. Err is set on the apology turn that replaced a
// failed reply.
type Entry struct {
	Turn domain.Turn
	Clip *Clip
	Err  error
}

// Conversation is an append-only list of entries.
type Conversation struct {
	mu      sync.RWMutex
	entries []Entry
}

// append adds e and returns the turns of the whole conversation afterwards.
func (c *Conversation) append(e Entry) []domain.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return turnsOf(c.entries)
}

func (c *Conversation) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Conversation) Turns() []domain.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return turnsOf(c.entries)
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func turnsOf(entries []Entry) []domain.Turn {
	turns := make([]domain.Turn, len(entries))
	for i, e := range entries {
		turns[i] = e.Turn
	}
	return turns
}
