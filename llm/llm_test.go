package llm

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/clipkit/errors"
)

type mockProvider struct {
	responses []string
	errs      []error
	calls     int
	delay     time.Duration
	lastReq   Request
}

func (m *mockProvider) Name() string                        { return "mock" }
func (m *mockProvider) IsAvailable(_ context.Context) bool { return true }

func (m *mockProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	i := m.calls
	m.calls++
	m.lastReq = req
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	content := ""
	if i < len(m.responses) {
		content = m.responses[i]
	}
	return &Response{Content: content, Model: "mock"}, nil
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"bare array", `[{"a":1},{"a":2}]`, `[{"a":1},{"a":2}]`},
		{"fenced json", "```json\n[1, 2]\n```", "[1, 2]"},
		{"fenced plain", "```\n{\"x\": true}\n```", `{"x": true}`},
		{"prose around", "Here you go:\n[{\"a\":1}]\nEnjoy!", `[{"a":1}]`},
		{"object wrapping array", `{"moments":[{"a":1}]}`, `{"moments":[{"a":1}]}`},
		{"no json", "sorry, I cannot help", ""},
		{"unterminated", "[1, 2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompleteJSON(t *testing.T) {
	p := &mockProvider{responses: []string{"```json\n{\"name\": \"Bob\", \"age\": 41}\n```"}}
	var out struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	if err := CompleteJSON(context.Background(), p, Request{Messages: []Message{UserMessage("hi")}}, &out); err != nil {
		t.Fatal(err)
	}
	if out.Name != "Bob" || out.Age != 41 {
		t.Errorf("out = %+v", out)
	}
}

func TestCompleteJSON_ParseError(t *testing.T) {
	for _, content := range []string{"no json here", `[{"start": }]`} {
		p := &mockProvider{responses: []string{content}}
		var out []map[string]any
		err := CompleteJSON(context.Background(), p, Request{}, &out)
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeParse {
			t.Fatalf("content %q: err = %v, want parse error", content, err)
		}
		if appErr.Details["raw_response"] != content {
			t.Errorf("raw_response = %v", appErr.Details["raw_response"])
		}
	}
}

func TestWithResilience_RetriesTransientErrors(t *testing.T) {
	p := &mockProvider{
		errs:      []error{errors.ExternalServiceError("mock", stderrors.New("502"))},
		responses: []string{"", "ok"},
	}
	r := WithResilience(p, Config{MaxAttempts: 3, Timeout: 5 * time.Second})
	resp, err := r.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" || p.calls != 2 {
		t.Errorf("content = %q after %d calls", resp.Content, p.calls)
	}
}

func TestWithResilience_DoesNotRetryConfiguration(t *testing.T) {
	p := &mockProvider{errs: []error{errors.Configuration("llm.api_key", "rejected")}}
	r := WithResilience(p, Config{MaxAttempts: 3})
	_, err := r.Complete(context.Background(), Request{})
	if !errors.IsCode(err, errors.ErrCodeConfiguration) || p.calls != 1 {
		t.Errorf("err = %v after %d calls", err, p.calls)
	}
}

func TestWithResilience_Timeout(t *testing.T) {
	p := &mockProvider{delay: time.Second}
	r := WithResilience(p, Config{MaxAttempts: 1, Timeout: 20 * time.Millisecond})
	_, err := r.Complete(context.Background(), Request{})
	if !errors.IsCode(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want timeout", err)
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Provider != "openai" || cfg.Model != DefaultModel || cfg.Timeout != 90*time.Second || cfg.MaxAttempts != 3 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "nope"})
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("err = %v", err)
	}
}

func TestSchemaFor(t *testing.T) {
	type item struct {
		Title string `json:"title"`
	}
	s := SchemaFor[struct {
		Items []item `json:"items"`
	}]("items", "a list")
	if s.Name != "items" || s.Value == nil {
		t.Errorf("schema = %+v", s)
	}
}
