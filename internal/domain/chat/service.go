// Package chat drives one logical assistant turn to completion: it streams
// the model's output to the client, intercepts embedded tool-call JSON,
// executes the requested tool and feeds the result back to the model.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kust-server/support-api/internal/domain/llm"
	"kust-server/support-api/internal/domain/stream"
	"kust-server/support-api/internal/domain/tool"
	"kust-server/support-api/internal/infrastructure/metrics"
)

// Options tune the orchestration loop.
type Options struct {
	Model string
	// MaxTurns bounds the tool round-trip loop.
	MaxTurns int
	// HistoryWindow is the message count beyond which history compression
	// kicks in before a request is sent upstream.
	HistoryWindow int
	// RecentKeep is how many trailing messages survive compression verbatim.
	RecentKeep int
	// DetectorBuffer caps how much text the tool detector may withhold.
	DetectorBuffer int
	// SummarizeTimeout bounds the auxiliary compression call.
	SummarizeTimeout time.Duration
	Temperature      float64
	MaxTokens        int
}

// Service orchestrates chat turns between the session store, the upstream
// model and the local tool registry.
type Service struct {
	provider llm.Provider
	store    Store
	tools    *tool.Registry
	opts     Options
	log      zerolog.Logger
}

// NewService constructs the orchestrator.
func NewService(provider llm.Provider, store Store, tools *tool.Registry, opts Options, log zerolog.Logger) *Service {
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = 3
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 12
	}
	if opts.RecentKeep <= 0 {
		opts.RecentKeep = 3
	}
	if opts.SummarizeTimeout <= 0 {
		opts.SummarizeTimeout = 10 * time.Second
	}
	return &Service{
		provider: provider,
		store:    store,
		tools:    tools,
		opts:     opts,
		log:      log.With().Str("component", "chat").Logger(),
	}
}

// Stream runs one user turn: append the message, compress history if it has
// grown too long, then loop model turns until one finishes without a tool
// call. Every event is emitted in production order; a done or error event
// always terminates the stream.
func (s *Service) Stream(ctx context.Context, sessionID, userMessage string, emit stream.Emitter) {
	s.store.Append(sessionID, RoleUser, userMessage)
	s.compressHistory(ctx, sessionID)

	recovered := false

	for turn := 0; turn < s.opts.MaxTurns; turn++ {
		messages := s.store.Get(sessionID)
		metrics.StreamTurnsTotal.Inc()

		upstream, err := s.provider.CreateChatCompletionStream(ctx, s.buildRequest(messages))
		if errors.Is(err, llm.ErrBadRequest) && !recovered {
			// Context overflow despite compression: cut history down to the
			// system prompt plus the latest user message and try once more.
			recovered = true
			s.log.Warn().Str("session", sessionID).Msg("upstream 400, cutting history and retrying")
			s.store.Replace(sessionID, hardCut(messages))
			turn--
			continue
		}
		if err != nil {
			s.log.Error().Err(err).Str("session", sessionID).Msg("open upstream stream")
			metrics.StreamErrorsTotal.WithLabelValues("upstream").Inc()
			s.emit(emit, stream.Error(fmt.Sprintf("inference unavailable: %v", err)))
			return
		}

		outcome := s.runTurn(ctx, sessionID, upstream, emit)
		upstream.Close()

		switch outcome.kind {
		case turnToolCall:
			continue
		case turnFailed:
			metrics.StreamErrorsTotal.WithLabelValues("stream").Inc()
			s.emit(emit, stream.Error(outcome.diagnostic))
			return
		default:
			if outcome.assistantText != "" {
				s.store.Append(sessionID, RoleAssistant, outcome.assistantText)
			}
			s.emit(emit, stream.Done())
			return
		}
	}

	metrics.StreamErrorsTotal.WithLabelValues("tool_loop").Inc()
	s.emit(emit, stream.Error("tool loop exceeded"))
}

type turnKind int

const (
	turnText turnKind = iota
	turnToolCall
	turnFailed
)

type turnResult struct {
	kind          turnKind
	assistantText string
	diagnostic    string
}

// runTurn drains one upstream stream through the detector. Text fragments
// go straight to the client; a complete JSON object is inspected for a tool
// call. Once a tool call is handled the rest of the stream is abandoned.
func (s *Service) runTurn(ctx context.Context, sessionID string, upstream llm.Stream, emit stream.Emitter) turnResult {
	detector := stream.NewDetector(s.opts.DetectorBuffer)
	var assistant strings.Builder

	handle := func(frags []stream.Fragment) *turnResult {
		for _, frag := range frags {
			if frag.Kind == stream.KindText {
				assistant.WriteString(frag.Content)
				s.emit(emit, stream.Token(frag.Content))
				continue
			}
			if done := s.handleJSON(ctx, sessionID, frag.Content, emit, &assistant); done {
				return &turnResult{kind: turnToolCall}
			}
		}
		return nil
	}

	for {
		delta, err := upstream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.log.Error().Err(err).Str("session", sessionID).Msg("read upstream stream")
			return turnResult{kind: turnFailed, diagnostic: fmt.Sprintf("stream interrupted: %v", err)}
		}
		if res := handle(detector.Feed(delta)); res != nil {
			return *res
		}
	}

	if res := handle(detector.Flush()); res != nil {
		return *res
	}
	return turnResult{kind: turnText, assistantText: assistant.String()}
}

// handleJSON decides whether a complete top-level JSON object is a tool
// call. Anything that does not parse into {tool, query} is degraded to
// plain text so model output is never silently dropped. Returns true when
// a tool round-trip was recorded and the turn should restart.
func (s *Service) handleJSON(ctx context.Context, sessionID, raw string, emit stream.Emitter, assistant *strings.Builder) bool {
	var call tool.Call
	if err := json.Unmarshal([]byte(raw), &call); err != nil || call.Tool == "" {
		assistant.WriteString(raw)
		s.emit(emit, stream.Token(raw))
		return false
	}

	s.log.Info().Str("session", sessionID).Str("tool", call.Tool).Str("query", call.Query).Msg("tool call detected")
	s.emit(emit, stream.ToolStart(call.Tool, call.Query))

	start := time.Now()
	result := s.tools.Execute(ctx, call.Tool, call.Query)
	metrics.ToolCallsTotal.WithLabelValues(call.Tool).Inc()
	metrics.ToolDuration.WithLabelValues(call.Tool).Observe(time.Since(start).Seconds())

	s.emit(emit, stream.ToolEnd())

	// Record the model's own invocation verbatim so a replay shows it what
	// it asked for, then inject the result as a synthetic system turn.
	s.store.Append(sessionID, RoleAssistant, raw)
	s.store.Append(sessionID, RoleSystem, "TOOL_RESULT: "+result)
	return true
}

// compressHistory condenses the middle of an overgrown conversation into a
// short summary via a non-streaming model call, falling back to a hard
// truncation when the call fails.
func (s *Service) compressHistory(ctx context.Context, sessionID string) {
	history := s.store.Get(sessionID)
	if len(history) <= s.opts.HistoryWindow {
		return
	}

	systemMsg := history[0]
	recent := history[len(history)-s.opts.RecentKeep:]
	middle := history[1 : len(history)-s.opts.RecentKeep]
	if len(middle) == 0 {
		return
	}

	s.log.Info().Str("session", sessionID).Int("messages", len(history)).Msg("compressing history")

	var transcript strings.Builder
	for _, msg := range middle {
		transcript.WriteString(strings.ToUpper(msg.Role))
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	summaryCtx, cancel := context.WithTimeout(ctx, s.opts.SummarizeTimeout)
	defer cancel()

	temperature := 0.3
	maxTokens := 200
	resp, err := s.provider.CreateChatCompletion(summaryCtx, llm.ChatCompletionRequest{
		Model: s.opts.Model,
		Messages: []llm.ChatMessage{
			{Role: RoleSystem, Content: SummaryPrompt},
			{Role: RoleUser, Content: transcript.String()},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil || len(resp.Choices) == 0 {
		s.log.Warn().Err(err).Str("session", sessionID).Msg("summarization failed, truncating")
		s.store.Replace(sessionID, append([]llm.ChatMessage{systemMsg}, recent...))
		return
	}

	compressed := make([]llm.ChatMessage, 0, len(recent)+2)
	compressed = append(compressed, systemMsg)
	compressed = append(compressed, llm.ChatMessage{
		Role:    RoleSystem,
		Content: "[PREVIOUS CHAT SUMMARY]: " + resp.Choices[0].Message.Content,
	})
	compressed = append(compressed, recent...)
	s.store.Replace(sessionID, compressed)
}

func (s *Service) buildRequest(messages []llm.ChatMessage) llm.ChatCompletionRequest {
	req := llm.ChatCompletionRequest{
		Model:    s.opts.Model,
		Messages: messages,
		Stream:   true,
	}
	if s.opts.Temperature > 0 {
		req.Temperature = &s.opts.Temperature
	}
	if s.opts.MaxTokens > 0 {
		req.MaxTokens = &s.opts.MaxTokens
	}
	return req
}

func (s *Service) emit(emit stream.Emitter, ev stream.Event) {
	if err := emit.Emit(ev); err != nil {
		s.log.Debug().Err(err).Msg("client write failed")
	}
}

// hardCut reduces history to the system prompt and the most recent user
// message, the last resort after an upstream 400.
func hardCut(messages []llm.ChatMessage) []llm.ChatMessage {
	if len(messages) == 0 {
		return messages
	}
	cut := []llm.ChatMessage{messages[0]}
	for i := len(messages) - 1; i > 0; i-- {
		if messages[i].Role == RoleUser {
			cut = append(cut, messages[i])
			break
		}
	}
	return cut
}
