package llm

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"questions":[]}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "```json\n{}\n```"},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != `{"questions":[]}` {
		t.Fatalf("unexpected text %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "```json\n{}\n```" {
		t.Fatalf("unexpected text %q", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "{}"})

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		JSON:     true,
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" || !mock.Calls[0].JSON {
		t.Fatalf("request not recorded: %+v", mock.Calls[0])
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrSafetyBlocked{Reason: "SAFETY"}})

	_, err := mock.Generate(context.Background(), Request{})
	var blocked *ErrSafetyBlocked
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ErrSafetyBlocked, got: %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "question-gen")
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrSafetyBlocked{Reason: "SAFETY"}, "LLM output blocked by safety filter (SAFETY)"},
		{&ErrEmptyOutput{StopReason: "MAX_TOKENS"}, "LLM returned no output (stop reason: MAX_TOKENS)"},
		{&ErrProviderUnavailable{}, "LLM provider unavailable"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	inner := errors.New("bad request")
	rejected := &ErrRequestRejected{StatusCode: 400, Err: inner}
	if !errors.Is(rejected, inner) {
		t.Fatal("ErrRequestRejected should unwrap to its cause")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"negative timeout", Config{Provider: "mock", Timeout: -time.Second}, true},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"EXAMGEN_LLM_PROVIDER", "EXAMGEN_LLM_TIMEOUT", "EXAMGEN_LLM_MAX_TOKENS",
		"EXAMGEN_GEMINI_API_KEY", "EXAMGEN_OPENAI_API_KEY", "EXAMGEN_ANTHROPIC_API_KEY",
		"EXAMGEN_OPENROUTER_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("EXAMGEN_LLM_PROVIDER", "openai")
	t.Setenv("EXAMGEN_OPENAI_API_KEY", "sk-env")
	t.Setenv("EXAMGEN_LLM_TIMEOUT", "15s")
	t.Setenv("EXAMGEN_LLM_MAX_TOKENS", "4096")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("timeout = %s, want 15s", cfg.Timeout)
	}
	if cfg.MaxTokens != 4096 {
		t.Fatalf("max tokens = %d, want 4096", cfg.MaxTokens)
	}
}

func TestDefaultConfigTimeout(t *testing.T) {
	if got := DefaultConfig().Timeout; got != 60*time.Second {
		t.Fatalf("default timeout = %s, want 60s", got)
	}
}

func TestResolve_FallsBackToDiscovery(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, ok := Resolve()
	if !ok {
		t.Fatal("expected discovered config")
	}
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestResolve_NothingConfigured(t *testing.T) {
	clearLLMEnv(t)
	if _, ok := Resolve(); ok {
		t.Fatal("expected no config")
	}
}

func TestTimeoutProvider(t *testing.T) {
	slow := providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p := WithTimeout(slow, 5*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("zero timeout should return the provider unchanged")
	}
}

// providerFunc adapts a function to Provider.
type providerFunc func(context.Context, Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64 // input price, -1 when unknown
	}{
		{"gemini-2.5-flash", 0.3},
		{"models/gemini-2.5-flash", 0.3},
		{"gemini-2.5-flash-001", 0.3},
		{"gemini-2.5-flash-lite-001", 0.1},
		{"claude-haiku-4-5-20251001", 1},
		{"google/gemini-2.5-pro", 1.25},
		{"mock", -1},
		{"gemini", -1},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if tt.want < 0 {
			if c != nil {
				t.Errorf("LookupCost(%q) = %+v, want nil", tt.model, c)
			}
			continue
		}
		if c == nil || c.InputPerMTok != tt.want {
			t.Errorf("LookupCost(%q) = %+v, want input %v", tt.model, c, tt.want)
		}
	}

	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	if got := c.Cost(1_000_000, 200_000); got != 2 {
		t.Errorf("Cost = %v, want 2", got)
	}
}
