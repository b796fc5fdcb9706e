// Package session keeps per-session conversation history in process memory.
package session

import (
	"sync"
	"time"

	"kust-server/support-api/internal/domain/llm"
)

// InMemoryStore is a thread-safe chat.Store backed by a map. History lives
// for the process lifetime unless reset or pruned by the idle janitor.
type InMemoryStore struct {
	mu           sync.RWMutex
	sessions     map[string]*entry
	systemPrompt string
}

type entry struct {
	messages []llm.ChatMessage
	lastSeen time.Time
}

// NewInMemoryStore creates a store seeding new sessions with systemPrompt.
func NewInMemoryStore(systemPrompt string) *InMemoryStore {
	return &InMemoryStore{
		sessions:     make(map[string]*entry),
		systemPrompt: systemPrompt,
	}
}

// Get returns a copy of the session's history, creating the session first
// if needed.
func (s *InMemoryStore) Get(sessionID string) []llm.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensure(sessionID)
	e.lastSeen = time.Now()
	out := make([]llm.ChatMessage, len(e.messages))
	copy(out, e.messages)
	return out
}

// Append adds one message to the session. Empty content is ignored.
func (s *InMemoryStore) Append(sessionID, role, content string) {
	if content == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensure(sessionID)
	e.messages = append(e.messages, llm.ChatMessage{Role: role, Content: content})
	e.lastSeen = time.Now()
}

// Replace swaps the session's history wholesale.
func (s *InMemoryStore) Replace(sessionID string, messages []llm.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]llm.ChatMessage, len(messages))
	copy(kept, messages)
	s.sessions[sessionID] = &entry{messages: kept, lastSeen: time.Now()}
}

// Reset deletes the session. Resetting an absent session is a no-op.
func (s *InMemoryStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Prune drops sessions idle for longer than maxIdle and reports how many
// were removed.
func (s *InMemoryStore) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *InMemoryStore) ensure(sessionID string) *entry {
	if e, ok := s.sessions[sessionID]; ok {
		return e
	}
	e := &entry{
		messages: []llm.ChatMessage{{Role: "system", Content: s.systemPrompt}},
		lastSeen: time.Now(),
	}
	s.sessions[sessionID] = e
	return e
}
