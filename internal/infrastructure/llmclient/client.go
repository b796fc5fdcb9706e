// Package llmclient talks to the OpenAI-compatible inference API.
package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"kust-server/support-api/internal/domain/llm"
)

// Client implements the llm.Provider interface.
type Client struct {
	httpClient   *resty.Client
	streamClient *http.Client
	baseURL      string
	apiKey       string
}

// NewClient creates a Resty-backed client for non-streaming calls plus a
// plain net/http client for SSE reads, which resty would buffer.
func NewClient(baseURL, apiKey string, requestTimeout, streamTimeout time.Duration) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		httpClient: resty.New().
			SetBaseURL(base).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(apiKey).
			SetTimeout(requestTimeout),
		streamClient: &http.Client{Timeout: streamTimeout},
		baseURL:      base,
		apiKey:       apiKey,
	}
}

// CreateChatCompletion performs a blocking /v1/chat/completions call, used
// for history summarization.
func (c *Client) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	req.Stream = false

	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if resp.StatusCode() == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", llm.ErrBadRequest, resp.String())
	}
	if resp.IsError() {
		return nil, fmt.Errorf("inference api error: %d %s", resp.StatusCode(), resp.String())
	}
	return &completion, nil
}

// CreateChatCompletionStream opens a streaming /v1/chat/completions call.
// Cancelling ctx closes the connection, which also tears the stream down
// when the browser client disconnects.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		detail, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", llm.ErrBadRequest, string(detail))
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("inference api error: %d %s", resp.StatusCode, string(detail))
	}

	return &sseStream{
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)

// sseStream implements llm.Stream backed by http.Response body with SSE
// parsing. Frames without content (role announcements, keepalives,
// malformed chunks) are skipped.
type sseStream struct {
	resp   *http.Response
	reader *bufio.Reader
}

func (s *sseStream) Recv() (string, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimSpace(line)

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return "", io.EOF
		}

		var delta llm.ChatCompletionDelta
		if err := json.Unmarshal([]byte(data), &delta); err != nil {
			continue
		}
		if len(delta.Choices) == 0 {
			continue
		}
		if content := delta.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *sseStream) Close() error {
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}
