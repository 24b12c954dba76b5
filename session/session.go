// Package session keeps a bounded, TTL-pruned conversation history for the
// chat layer. A History is an explicit value scoped to one conversation;
// it is passed to whoever needs it rather than held in package state.
package session

import (
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxMessages bounds how much context one conversation retains.
	DefaultMaxMessages = 16
	// DefaultTTL evicts messages older than 30 minutes; zero disables the
	// age check.
	DefaultTTL = 30 * time.Minute
)

type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"ts"`
}

// History is safe for concurrent use; turns for the same conversation may
// arrive in parallel.
type History struct {
	max int
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	msgs []Message
}

func NewHistory(max int, ttl time.Duration) *History {
	return &History{
		max: max,
		ttl: ttl,
		now: time.Now,
	}
}

// Append records a message, trimming surrounding whitespace, and prunes.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune()
	h.msgs = append(h.msgs, Message{
		Role:    role,
		Content: strings.TrimSpace(content),
		At:      h.now(),
	})
	h.prune()
}

// Messages returns the retained history, oldest first.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune()
	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = nil
}

// prune is called with mu held.
func (h *History) prune() {
	if h.ttl > 0 {
		cutoff := h.now().Add(-h.ttl)
		kept := h.msgs[:0]
		for _, m := range h.msgs {
			if !m.At.Before(cutoff) {
				kept = append(kept, m)
			}
		}
		h.msgs = kept
	}
	if h.max > 0 && len(h.msgs) > h.max {
		h.msgs = h.msgs[len(h.msgs)-h.max:]
	}
}
