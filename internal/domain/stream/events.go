// Package stream contains the live classification of upstream model output
// and the event vocabulary emitted toward the browser client.
package stream

import "encoding/json"

// EventType identifies a client-facing stream event.
type EventType string

const (
	EventToken     EventType = "token"
	EventToolStart EventType = "tool_start"
	EventToolEnd   EventType = "tool_end"
	EventError     EventType = "error"
	EventDone      EventType = "done"
	EventPing      EventType = "ping"
)

// Event is the unit emitted toward the browser over SSE.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
	Tool    string    `json:"tool,omitempty"`
	Input   string    `json:"input,omitempty"`
	Result  string    `json:"result,omitempty"`
}

// Emitter consumes events in the order they are produced. Implementations
// must preserve that order on the wire.
type Emitter interface {
	Emit(Event) error
}

// Token builds a text fragment event.
func Token(content string) Event {
	return Event{Type: EventToken, Content: content}
}

// ToolStart announces a tool invocation.
func ToolStart(tool, input string) Event {
	return Event{Type: EventToolStart, Tool: tool, Input: input}
}

// ToolEnd closes a tool invocation.
func ToolEnd() Event {
	return Event{Type: EventToolEnd, Result: "Done"}
}

// Error reports a failed turn.
func Error(content string) Event {
	return Event{Type: EventError, Content: content}
}

// Done terminates a successful turn.
func Done() Event {
	return Event{Type: EventDone}
}

// Ping is sent once on connection open to defeat proxy buffering.
func Ping() Event {
	return Event{Type: EventPing}
}

// Marshal renders the event payload for one SSE data frame.
func (e Event) Marshal() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		// Event fields are plain strings; this cannot fail in practice.
		return []byte(`{"type":"error","content":"event encoding failed"}`)
	}
	return data
}
