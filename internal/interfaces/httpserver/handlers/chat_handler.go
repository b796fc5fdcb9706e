package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kust-server/support-api/internal/domain/chat"
	"kust-server/support-api/internal/domain/stream"
	"kust-server/support-api/internal/infrastructure/metrics"
	"kust-server/support-api/internal/infrastructure/observability"
)

// ChatService is the orchestrator contract the handler depends on.
type ChatService interface {
	Stream(ctx context.Context, sessionID, userMessage string, emit stream.Emitter)
}

// ChatHandler exposes the chat streaming and session reset endpoints.
type ChatHandler struct {
	service  ChatService
	sessions chat.Store
	log      zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service ChatService, sessions chat.Store, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:  service,
		sessions: sessions,
		log:      log.With().Str("handler", "chat").Logger(),
	}
}

type chatStreamRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

type resetRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Stream handles POST /chat/stream: it upgrades the response to SSE and
// forwards orchestrator events as data frames. A ping frame is sent first
// to defeat proxy buffering.
func (h *ChatHandler) Stream(c *gin.Context) {
	started := time.Now()

	var req chatStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordRequest(http.MethodPost, "/chat/stream", "400", time.Since(started).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("X-Session-ID", sessionID)

	emitter := newSSEEmitter(c.Writer, flusher)
	if err := emitter.Emit(stream.Ping()); err != nil {
		h.log.Debug().Err(err).Msg("initial ping failed")
		return
	}

	ctx, span := observability.StartChatSpan(c.Request.Context(), sessionID)
	defer span.End()

	h.service.Stream(ctx, sessionID, req.Message, emitter)
	metrics.RecordRequest(http.MethodPost, "/chat/stream", "200", time.Since(started).Seconds())
}

// Reset handles POST /api/reset: it wipes the session's history and hands
// the client a fresh id to continue with.
func (h *ChatHandler) Reset(c *gin.Context) {
	started := time.Now()

	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordRequest(http.MethodPost, "/api/reset", "400", time.Since(started).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.sessions.Reset(req.SessionID)
	h.log.Info().Str("session", req.SessionID).Msg("session cleared")

	metrics.RecordRequest(http.MethodPost, "/api/reset", "200", time.Since(started).Seconds())
	c.JSON(http.StatusOK, gin.H{
		"status": "cleared",
		"new_id": uuid.NewString(),
	})
}

// sseEmitter serializes stream events as SSE data frames. The mutex keeps
// frames whole if emitters are ever shared across goroutines.
type sseEmitter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

func newSSEEmitter(w http.ResponseWriter, flusher http.Flusher) *sseEmitter {
	return &sseEmitter{writer: w, flusher: flusher}
}

func (e *sseEmitter) Emit(ev stream.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.writer, "data: %s\n\n", ev.Marshal()); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

var _ stream.Emitter = (*sseEmitter)(nil)
