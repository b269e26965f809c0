// Package client calls the exam generation API. Calls are retried with
// exponential backoff on transport errors and 5xx answers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/examgen/internal/extract"
	"github.com/abhisek/examgen/internal/logging"
	"github.com/abhisek/examgen/internal/modelout"
	"github.com/abhisek/examgen/internal/questions"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = time.Second
	DefaultEndpoint       = "http://localhost:8080/api/generate"
)

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// GenerationRequest is the body of POST /api/generate.
type GenerationRequest struct {
	Subject    string            `json:"subject"`
	Grade      string            `json:"grade"`
	UserPrompt string            `json:"userPrompt"`
	Material   *extract.Material `json:"materialData"`

	// IsAppend selects merge behaviour on the caller side; it is not sent.
	IsAppend bool `json:"-"`
}

// Client posts JSON payloads to a single endpoint.
type Client struct {
	endpoint       string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many retries follow the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialBackoff sets the wait before the first retry. Each later wait
// doubles.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// New creates a client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:       endpoint,
		httpClient:     &http.Client{Timeout: 2 * time.Minute},
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string { return c.endpoint }

// Call posts payload, retrying transport errors and 5xx answers up to
// maxRetries times. A 4xx answer is returned at once. When retries run out
// the last response is returned, or the last transport error if no
// response was ever received.
func (c *Client) Call(ctx context.Context, payload []byte) (*Response, error) {
	log := logging.WithContext(ctx)

	var (
		lastResp *Response
		lastErr  error
	)
	backoff := c.initialBackoff
	retries := c.maxRetries

	for attempt := 1; ; attempt++ {
		resp, err := c.post(ctx, payload)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if resp != nil {
			lastResp = resp
		}
		lastErr = err

		if retries == 0 {
			break
		}

		entry := log.WithFields(logrus.Fields{"attempt": attempt, "wait": backoff})
		if err != nil {
			entry.WithError(err).Warn("request failed, retrying")
		} else {
			entry.WithField("status", resp.StatusCode).Warn("server error, retrying")
		}

		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		retries--
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Generate sends req and returns the validated questions. Shape problems in
// individual questions are logged; the questions are still returned.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (questions.Set, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.Call(ctx, payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &ErrServiceUnavailable{Err: err}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &ErrServiceUnavailable{StatusCode: resp.StatusCode, Message: serviceMessage(resp.Body)}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &ErrRequestFailed{StatusCode: resp.StatusCode, Message: envelopeMessage(resp)}
	}

	parsed, err := modelout.Parse(string(resp.Body))
	if err != nil {
		return nil, err
	}
	batch, err := questions.Validate(parsed)
	if err != nil {
		return nil, err
	}

	log := logging.WithContext(ctx)
	for _, issue := range batch.Issues {
		log.WithFields(logrus.Fields{
			"index": issue.Index,
			"type":  issue.Type,
		}).Warn("question failed shape check: " + issue.Message)
	}
	return batch.Questions, nil
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// serviceMessage returns the message of an {"error":{"message":...}} body,
// or "".
func serviceMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Error.Message
}

// envelopeMessage is serviceMessage falling back to the raw body and then
// the status text.
func envelopeMessage(resp *Response) string {
	if msg := serviceMessage(resp.Body); msg != "" {
		return msg
	}
	if body := strings.TrimSpace(string(resp.Body)); body != "" && len(body) <= 200 {
		return body
	}
	return http.StatusText(resp.StatusCode)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
