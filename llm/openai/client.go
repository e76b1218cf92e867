package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aschepis/backscratcher/companion/llm"
	openai "github.com/sashabaranov/go-openai"
)

const (
	completionsPath = "/v1/chat/completions"

	// DefaultTimeout bounds a single round trip when no timeout is configured.
	DefaultTimeout = 120 * time.Second
)

// OpenAIClient implements llm.Sender for OpenAI-compatible completion
// endpoints. It performs no retries and no backoff.
type OpenAIClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithHTTPClient replaces the HTTP client used for round trips.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *OpenAIClient) {
		c.httpClient = httpClient
	}
}

// WithAPIKey sends the key as a bearer token. Local inference servers
// usually do not need one.
func WithAPIKey(apiKey string) Option {
	return func(c *OpenAIClient) {
		c.apiKey = apiKey
	}
}

// NewOpenAIClient creates a new OpenAIClient for the provider at baseURL.
// The chat completions path is appended to baseURL.
// If timeout is zero, DefaultTimeout is used.
func NewOpenAIClient(baseURL string, timeout time.Duration, opts ...Option) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &OpenAIClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + completionsPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the full completions URL.
func (c *OpenAIClient) Endpoint() string {
	return c.endpoint
}

// Send implements llm.Sender.Send.
func (c *OpenAIClient) Send(ctx context.Context, messages []llm.Message, model string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("model is required")
	}

	body, err := json.Marshal(NewChatRequest(model, messages))
	if err != nil {
		return "", llm.NewRequestFailedError("encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", llm.NewRequestFailedError("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", llm.NewRequestFailedError("post "+c.endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Body is fully read below

	responseText, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.NewRequestFailedError("read response body", err)
	}

	return parseResponse(responseText, resp.StatusCode)
}

// parseResponse decodes a completions response body. The error envelope is
// checked before the success envelope: some providers report errors with
// HTTP 200.
func parseResponse(body []byte, statusCode int) (string, error) {
	if message, ok := parseErrorEnvelope(body); ok {
		return "", llm.NewErrorResponse(message, statusCode)
	}

	var chatResp openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", llm.NewParseFailedError("decode completion response", statusCode, err)
	}
	if chatResp.Choices == nil {
		return "", llm.NewParseFailedError(
			fmt.Sprintf("completion response has no choices field: %s", truncate(body, 200)),
			statusCode, nil)
	}
	if len(chatResp.Choices) == 0 {
		return "", nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

// parseErrorEnvelope recognizes {"error": "text"} as well as the OpenAI
// object form {"error": {"message": "text", ...}}.
func parseErrorEnvelope(body []byte) (string, bool) {
	var plain struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(body, &plain); err == nil && plain.Error != nil {
		return *plain.Error, true
	}

	var structured openai.ErrorResponse
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error != nil {
		return structured.Error.Message, true
	}
	return "", false
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}

// Ensure OpenAIClient implements llm.Sender
var _ llm.Sender = (*OpenAIClient)(nil)
