package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examgen/internal/extract"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/modelout"
	"github.com/abhisek/examgen/internal/questiongen"
	"github.com/abhisek/examgen/internal/questions"
)

type stubGenerator struct {
	batch *questions.Batch
	err   error
	panic bool
	got   questiongen.Request
}

func (s *stubGenerator) Generate(_ context.Context, req questiongen.Request) (*questions.Batch, error) {
	if s.panic {
		panic("boom")
	}
	s.got = req
	return s.batch, s.err
}

func (s *stubGenerator) ModelID() string { return "stub-model" }

func errFormat() error {
	return &modelout.ErrUnrecoverableFormat{Content: "nope", Err: errors.New("invalid character 'n'")}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Message
}

func TestGenerate_Success(t *testing.T) {
	gen := &stubGenerator{batch: &questions.Batch{Questions: questions.Set{
		&questions.FillInBlank{Question: "The sky is ___", CorrectAnswer: "blue"},
	}}}
	h := NewRouter(gen)

	rec := post(t, h, `{"subject":"Science","grade":"3","userPrompt":"go","materialData":{"content":"aGk=","type":"text/plain"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"questions":[{"type":"fill-in-the-blank","question":"The sky is ___","options":[],"correctAnswer":"blue"}]}`,
		rec.Body.String())

	assert.Equal(t, "Science", gen.got.Subject)
	assert.Equal(t, "3", gen.got.Grade)
	assert.Equal(t, "go", gen.got.UserPrompt)
	require.NotNil(t, gen.got.Material)
	assert.Equal(t, extract.MIMEPlainText, gen.got.Material.MIMEType)
}

func TestGenerate_EmptyBatchIsEmptyArray(t *testing.T) {
	h := NewRouter(&stubGenerator{batch: &questions.Batch{}})
	rec := post(t, h, `{"userPrompt":"x","materialData":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"questions":[]}`, rec.Body.String())
}

func TestGenerate_InvalidBody(t *testing.T) {
	h := NewRouter(&stubGenerator{})
	rec := post(t, h, `{"subject":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", errorMessage(t, rec))
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	h := NewRouter(&stubGenerator{})
	big := `{"userPrompt":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := post(t, h, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "5 MB")
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"empty prompt", questiongen.ErrEmptyPrompt, 400, "prompt must not be empty"},
		{"extraction", &extract.ErrExtractionFailed{MIMEType: extract.MIMEPDF, Err: errors.New("malformed xref")}, 422, "malformed xref"},
		{"safety", fmt.Errorf("LLM generation failed: %w", &llm.ErrSafetyBlocked{Reason: "SAFETY"}), 422, "changing the topic"},
		{"rate limit", fmt.Errorf("LLM generation failed: %w", &llm.ErrRateLimit{RetryAfter: 1500 * time.Millisecond}), 429, "Too many requests"},
		{"unavailable", fmt.Errorf("LLM generation failed: %w", &llm.ErrProviderUnavailable{}), 503, "busy"},
		{"empty output", fmt.Errorf("LLM generation failed: %w", &llm.ErrEmptyOutput{StopReason: "MAX_TOKENS"}), 502, "MAX_TOKENS"},
		{"format", fmt.Errorf("parse: %w", errFormat()), 502, "unfixable format"},
		{"missing key", &questions.ErrMissingQuestionsKey{Key: "questions"}, 502, "expected schema"},
		{"rejected", &llm.ErrRequestRejected{StatusCode: 400, Err: errors.New("bad")}, 502, "rejected"},
		{"deadline", fmt.Errorf("LLM generation failed: %w", context.DeadlineExceeded), 504, "too long"},
		{"unknown", errors.New("???"), 500, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(&stubGenerator{err: tt.err})
			rec := post(t, h, `{"userPrompt":"x"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tt.message)
		})
	}
}

func TestGenerate_RetryAfterHeader(t *testing.T) {
	h := NewRouter(&stubGenerator{err: &llm.ErrRateLimit{RetryAfter: 1500 * time.Millisecond}})
	rec := post(t, h, `{"userPrompt":"x"}`)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestGenerate_PanicRecovered(t *testing.T) {
	h := NewRouter(&stubGenerator{panic: true})
	rec := post(t, h, `{"userPrompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
}

func TestHealth(t *testing.T) {
	h := NewRouter(&stubGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","model":"stub-model"}`, rec.Body.String())
}

func TestRouting_NotFoundAndMethod(t *testing.T) {
	h := NewRouter(&stubGenerator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorMessage(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// End to end through the real generator with a mock provider.
func TestGenerate_WithLLMGenerator(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: "Here you go:\n```json\n{\"questions\":[{\"type\":\"multiple-choice\",\"question\":\"2+2?\",\"options\":[\"1\",\"2\",\"3\",\"4\"],\"correctAnswer\":3,},]}\n```",
	})
	srv := httptest.NewServer(NewRouter(questiongen.New(mock, questiongen.DefaultConfig())))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate", "application/json",
		strings.NewReader(`{"subject":"Math","grade":"2","userPrompt":"addition","materialData":null}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Questions questions.Set `json:"questions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Questions, 1)
	mc, ok := out.Questions[0].(*questions.MultipleChoice)
	require.True(t, ok)
	assert.Equal(t, 3, mc.CorrectAnswer)
	assert.Equal(t, 1, mock.CallCount())
	assert.True(t, mock.Calls[0].JSON)
}

func TestGenerate_UnreadableMaterialStillGenerates(t *testing.T) {
	bodies := []string{
		`{"subject":"Art","grade":"6","userPrompt":"colours","materialData":{"content":"iVBORw0KGgo=","type":"image/png"}}`,
		`{"subject":"Art","grade":"6","userPrompt":"colours","materialData":{"content":"","type":""}}`,
	}
	for _, body := range bodies {
		mock := llm.NewSampleProvider()
		h := NewRouter(questiongen.New(mock, questiongen.DefaultConfig()))

		rec := post(t, h, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out struct {
			Questions questions.Set `json:"questions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Len(t, out.Questions, 3)

		req, ok := mock.LastRequest()
		require.True(t, ok)
		assert.NotContains(t, req.Messages[0].Content, "Source material")
	}
}

func TestConfig(t *testing.T) {
	t.Setenv("EXAMGEN_ADDR", "127.0.0.1:9999")
	cfg := ConfigFromEnv()
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.NoError(t, cfg.Validate())

	cfg.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WriteTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, &stubGenerator{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
