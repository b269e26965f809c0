package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned reply for MockProvider.
type MockResponse struct {
	Text       string
	Usage      Usage
	StopReason string // defaults to "end"
	Err        error
}

// MockProvider replays canned responses in FIFO order and records every
// request. Once the queue is drained it answers with Fallback, or with
// ErrProviderUnavailable when Fallback is nil.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	// Fallback answers every request after the queue is empty.
	Fallback *MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewSampleProvider returns a MockProvider that answers every request with
// a small fixed exam. It lets the server run without an API key.
func NewSampleProvider() *MockProvider {
	return &MockProvider{Fallback: &MockResponse{Text: sampleExam}}
}

const sampleExam = `{"questions":[
{"type":"multiple-choice","question":"Which gas do plants absorb from the air for photosynthesis?","options":["Oxygen","Carbon dioxide","Nitrogen","Hydrogen"],"correctAnswer":1,"explanation":"Plants take in carbon dioxide and release oxygen."},
{"type":"fill-in-the-blank","question":"Water freezes at ___ degrees Celsius.","options":[],"correctAnswer":"0"},
{"type":"essay","question":"Explain why the Moon shows phases.","options":[],"correctAnswer":"Mentions the Sun lighting half the Moon and our changing view of that half during its orbit."}
]}`

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		resp = *m.Fallback
	default:
		return nil, &ErrProviderUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	stop := resp.StopReason
	if stop == "" {
		stop = "end"
	}
	return &Response{
		Text:       resp.Text,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: stop,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another canned response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastRequest returns the most recent request, or false if none was made.
func (m *MockProvider) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
