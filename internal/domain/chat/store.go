package chat

import "kust-server/support-api/internal/domain/llm"

// Message roles. Index 0 of every conversation is the system prompt and is
// never evicted by trimming.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store owns per-session conversation history. Sessions are assumed
// single-writer: one in-flight chat request per session id at a time.
type Store interface {
	// Get returns the conversation for the session, seeding a fresh one
	// with the system prompt if absent.
	Get(sessionID string) []llm.ChatMessage
	// Append adds a message to the session. Empty content is dropped.
	Append(sessionID, role, content string)
	// Replace swaps the session's entire history, used by trimming.
	Replace(sessionID string, messages []llm.ChatMessage)
	// Reset deletes the session entirely; a later Get reseeds it.
	Reset(sessionID string)
}
