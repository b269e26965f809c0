package llm

import (
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrRequestRejected indicates the provider refused the request itself
// (a 4xx other than 429). Retrying the same request will not help.
type ErrRequestRejected struct {
	StatusCode int
	Err        error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("LLM request rejected (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// ErrSafetyBlocked indicates the provider's content filter blocked the
// prompt or the reply.
type ErrSafetyBlocked struct {
	Reason string
}

func (e *ErrSafetyBlocked) Error() string {
	return fmt.Sprintf("LLM output blocked by safety filter (%s)", e.Reason)
}

// ErrEmptyOutput indicates the model finished without producing any text.
type ErrEmptyOutput struct {
	StopReason string
}

func (e *ErrEmptyOutput) Error() string {
	return fmt.Sprintf("LLM returned no output (stop reason: %s)", e.StopReason)
}
