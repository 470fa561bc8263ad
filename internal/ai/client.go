package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenAI REST endpoint. Any OpenAI-compatible
// gateway (OpenRouter, vLLM, ...) can be used through NewClientWithBaseURL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client calls /chat/completions on an OpenAI-compatible endpoint.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	maxAttempts int
	backoff     backoff
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is one chat completion. A nil Temperature leaves the
// provider default in place; a zero one is sent as 0.
type GenerateRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Float64 returns a pointer to v, for GenerateRequest.Temperature.
func Float64(v float64) *float64 { return &v }

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Choice struct {
	Message Message `json:"message"`
}

type GenerateResponse struct {
	ID        string   `json:"id"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
	RequestID string   `json:"-"`
}

// NewClient targets DefaultBaseURL. retryMax counts total attempts, so 1
// disables retries; zero durations pick the defaults.
func NewClient(apiKey string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: httpTimeout},
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		maxAttempts: retryMax,
		backoff:     backoff{base: baseDelay, max: maxDelay},
	}
}

// NewClientWithBaseURL is NewClient against another endpoint (gateways, tests).
func NewClientWithBaseURL(apiKey string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration, baseURL string) *Client {
	c := NewClient(apiKey, httpTimeout, retryMax, baseDelay, maxDelay)
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// Generate sends one chat completion. Rate limits, 5xx replies and
// dropped connections are retried while attempts remain; waits end
// early when ctx is cancelled.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is missing")
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		out, err := c.post(ctx, payload, req.Model)
		if err == nil {
			return out, nil
		}
		if attempt >= c.maxAttempts || !temporary(err) || ctx.Err() != nil {
			return nil, err
		}
		if werr := sleepCtx(ctx, c.backoff.delay(attempt, err)); werr != nil {
			return nil, werr
		}
	}
}

// post performs a single HTTP round trip and returns a typed error for
// anything but a decodable 2xx.
func (c *Client) post(ctx context.Context, payload []byte, model string) (*GenerateResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UnreachableError{Host: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classify(readAPIError(resp), model, rateLimitWait(resp.Header))
	}
	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out.RequestID = requestID(resp.Header)
	return &out, nil
}

// openAIError is the {"error": {...}} body; some gateways send the inner
// object at top level instead.
type openAIError struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Code    json.RawMessage `json:"code"`
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID(resp.Header)}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	var wrapped struct {
		Error *openAIError `json:"error"`
	}
	var flat openAIError
	src := &flat
	if json.Unmarshal(body, &wrapped) == nil && wrapped.Error != nil {
		src = wrapped.Error
	} else if json.Unmarshal(body, &flat) != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Message = src.Message
	// code is a string, a number or null depending on the provider
	var code string
	if json.Unmarshal(src.Code, &code) == nil && code != "" {
		apiErr.Code = code
	} else {
		apiErr.Code = src.Type
	}
	return apiErr
}

func requestID(h http.Header) string {
	for _, k := range []string{"X-Request-Id", "Openrouter-Request-Id"} {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return ""
}
