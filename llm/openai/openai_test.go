package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/llm"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(b)
}

func TestComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody(`{"moments":[]}`))
	}))
	defer srv.Close()

	p, err := New(llm.Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Complete(context.Background(), llm.Request{
		System:   "be brief",
		Messages: []llm.Message{llm.UserMessage("hello")},
		Schema:   llm.SchemaFor[struct{ Moments []string `json:"moments"` }]("moments", "picked"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != `{"moments":[]}` || resp.Usage.TotalTokens != 15 {
		t.Errorf("resp = %+v", resp)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("first message = %v", first)
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Errorf("response_format = %v", body["response_format"])
	}
	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", body["model"])
	}
}

func TestComplete_ErrorMapping(t *testing.T) {
	tests := []struct {
		status    int
		code      errors.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, errors.ErrCodeConfiguration, false},
		{http.StatusTooManyRequests, errors.ErrCodeRateLimited, true},
		{http.StatusBadGateway, errors.ErrCodeExternalService, true},
		{http.StatusBadRequest, errors.ErrCodeExternalService, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"invalid_request_error"}}`)
			}))
			defer srv.Close()

			p, err := New(llm.Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
			if err != nil {
				t.Fatal(err)
			}
			_, err = p.Complete(context.Background(), llm.Request{Messages: []llm.Message{llm.UserMessage("x")}})
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != tt.code || appErr.Retryable != tt.retryable {
				t.Errorf("err = %v (retryable %v), want %s retryable=%v", err, ok && appErr.Retryable, tt.code, tt.retryable)
			}
		})
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(llm.Config{})
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("err = %v", err)
	}
}

func TestRegistered(t *testing.T) {
	p, err := llm.New(llm.Config{Provider: ProviderName, APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name = %s", p.Name())
	}
}
