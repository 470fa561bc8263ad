package ai

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Error codes OpenAI-compatible endpoints put in error.code (or error.type).
const (
	codeInvalidAPIKey     = "invalid_api_key"
	codeInsufficientQuota = "insufficient_quota"
	codeRateLimited       = "rate_limit_exceeded"
	codeModelNotFound     = "model_not_found"
	codeContextLength     = "context_length_exceeded"
)

// APIError is a non-2xx reply from a chat endpoint.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status %d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(" (" + e.Code + ")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.RequestID != "" {
		b.WriteString(" [request " + e.RequestID + "]")
	}
	return b.String()
}

// AuthError is a rejected API key (401/403 or invalid_api_key).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return "API key rejected, check OPENAI_API_KEY: " + e.APIError.Error()
}

// RateLimitError is a 429 rate_limit_exceeded. Wait carries the server's
// hint from Retry-After or the x-ratelimit-reset-* headers, 0 if none.
type RateLimitError struct {
	*APIError
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	if e.Wait > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %s", e.Wait, e.APIError.Error())
	}
	return "rate limited: " + e.APIError.Error()
}

// Temporary reports that the request can succeed after waiting.
func (e *RateLimitError) Temporary() bool { return true }

// QuotaExceededError is a 429 insufficient_quota: the account has no
// credit left, so waiting does not help.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return "quota exhausted, check plan and billing: " + e.APIError.Error()
}

// ModelNotFoundError names a model the endpoint does not serve.
type ModelNotFoundError struct {
	*APIError
	Model string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not available (see 'earnings models'): %s", e.Model, e.APIError.Error())
}

// PromptTooLongError is a 400 context_length_exceeded. A smaller
// sample_rows shrinks the fallback prompt.
type PromptTooLongError struct{ *APIError }

func (e *PromptTooLongError) Error() string {
	return "prompt exceeds the model context, lower sample_rows: " + e.APIError.Error()
}

// BadRequestError is any other 400.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return "bad request: " + e.APIError.Error() }

// ServerError is a 5xx from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return "provider error: " + e.APIError.Error() }

// Temporary reports that the request can succeed on a later attempt.
func (e *ServerError) Temporary() bool { return true }

// UnreachableError wraps a transport failure before any reply arrived.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Host, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Temporary is true for timeouts and dropped connections, false for
// refused connections and bad hosts.
func (e *UnreachableError) Temporary() bool {
	var nerr net.Error
	if errors.As(e.Err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(e.Err, io.EOF) || errors.Is(e.Err, io.ErrUnexpectedEOF)
}

// classify maps an APIError to the typed error for its status and code.
func classify(apiErr *APIError, model string, wait time.Duration) error {
	switch {
	case apiErr.StatusCode == 401 || apiErr.StatusCode == 403 || apiErr.Code == codeInvalidAPIKey:
		return &AuthError{APIError: apiErr}
	case apiErr.Code == codeInsufficientQuota || (apiErr.StatusCode == 429 && containsFold(apiErr.Message, "quota")):
		return &QuotaExceededError{APIError: apiErr}
	case apiErr.StatusCode == 429 || apiErr.Code == codeRateLimited:
		return &RateLimitError{APIError: apiErr, Wait: wait}
	case apiErr.Code == codeModelNotFound || (apiErr.StatusCode == 404 && containsFold(apiErr.Message, "model")):
		return &ModelNotFoundError{APIError: apiErr, Model: model}
	case apiErr.Code == codeContextLength:
		return &PromptTooLongError{APIError: apiErr}
	case apiErr.StatusCode == 400:
		return &BadRequestError{APIError: apiErr}
	case apiErr.StatusCode >= 500:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
