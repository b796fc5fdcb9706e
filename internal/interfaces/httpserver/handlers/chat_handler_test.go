package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kust-server/support-api/internal/domain/llm"
	"kust-server/support-api/internal/domain/stream"
	"kust-server/support-api/internal/interfaces/httpserver/handlers"
)

// MockChatService scripts the orchestrator behind the handler.
type MockChatService struct {
	StreamFunc func(ctx context.Context, sessionID, userMessage string, emit stream.Emitter)
}

func (m *MockChatService) Stream(ctx context.Context, sessionID, userMessage string, emit stream.Emitter) {
	m.StreamFunc(ctx, sessionID, userMessage, emit)
}

// MockStore records reset calls.
type MockStore struct {
	ResetCalls []string
}

func (m *MockStore) Get(sessionID string) []llm.ChatMessage          { return nil }
func (m *MockStore) Append(sessionID, role, content string)          {}
func (m *MockStore) Replace(sessionID string, ms []llm.ChatMessage)  {}
func (m *MockStore) Reset(sessionID string)                          { m.ResetCalls = append(m.ResetCalls, sessionID) }

func newRouter(service handlers.ChatService, store *MockStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := handlers.NewChatHandler(service, store, zerolog.Nop())
	engine.POST("/chat/stream", handler.Stream)
	engine.POST("/api/reset", handler.Reset)
	return engine
}

func parseFrames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame without data prefix: %q", frame)
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &ev); err != nil {
			t.Fatalf("frame is not JSON: %q", frame)
		}
		events = append(events, ev)
	}
	return events
}

func TestStreamEndpointFraming(t *testing.T) {
	service := &MockChatService{
		StreamFunc: func(ctx context.Context, sessionID, userMessage string, emit stream.Emitter) {
			emit.Emit(stream.Token("Hello"))
			emit.Emit(stream.Token(" there"))
			emit.Emit(stream.Done())
		},
	}
	router := newRouter(service, &MockStore{})

	body := bytes.NewBufferString(`{"message":"hi","session_id":"s1"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("Cache-Control = %q", cc)
	}
	if ab := w.Header().Get("X-Accel-Buffering"); ab != "no" {
		t.Fatalf("X-Accel-Buffering = %q", ab)
	}
	if sid := w.Header().Get("X-Session-ID"); sid != "s1" {
		t.Fatalf("X-Session-ID = %q", sid)
	}

	events := parseFrames(t, w.Body.String())
	if len(events) != 4 {
		t.Fatalf("got %d events: %v", len(events), events)
	}
	if events[0]["type"] != "ping" {
		t.Fatalf("first frame = %v, want ping", events[0])
	}
	if events[1]["content"] != "Hello" || events[2]["content"] != " there" {
		t.Fatalf("token frames = %v", events)
	}
	if events[3]["type"] != "done" {
		t.Fatalf("last frame = %v, want done", events[3])
	}
}

func TestStreamEndpointGeneratesSessionID(t *testing.T) {
	var seen string
	service := &MockChatService{
		StreamFunc: func(ctx context.Context, sessionID, userMessage string, emit stream.Emitter) {
			seen = sessionID
			emit.Emit(stream.Done())
		},
	}
	router := newRouter(service, &MockStore{})

	req := httptest.NewRequest(http.MethodPost, "/chat/stream", bytes.NewBufferString(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("no session id generated")
	}
	if w.Header().Get("X-Session-ID") != seen {
		t.Fatalf("header session %q != service session %q", w.Header().Get("X-Session-ID"), seen)
	}
}

func TestStreamEndpointRejectsEmptyMessage(t *testing.T) {
	router := newRouter(&MockChatService{}, &MockStore{})

	req := httptest.NewRequest(http.MethodPost, "/chat/stream", bytes.NewBufferString(`{"session_id":"s1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	store := &MockStore{}
	router := newRouter(&MockChatService{}, store)

	req := httptest.NewRequest(http.MethodPost, "/api/reset", bytes.NewBufferString(`{"session_id":"s1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(store.ResetCalls) != 1 || store.ResetCalls[0] != "s1" {
		t.Fatalf("reset calls = %v", store.ResetCalls)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %s", w.Body.String())
	}
	if resp["status"] != "cleared" || resp["new_id"] == "" {
		t.Fatalf("response = %v", resp)
	}
}

func TestResetEndpointRequiresSessionID(t *testing.T) {
	router := newRouter(&MockChatService{}, &MockStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/reset", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
