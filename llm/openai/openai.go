// Package openai implements llm.Provider on the OpenAI chat completions API
// (and any endpoint compatible with it via base_url).
package openai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/llm"
)

// ProviderName is the registered name for this provider.
const ProviderName = "openai"

func init() {
	llm.Register(ProviderName, New)
}

// Provider calls the chat completions endpoint.
type Provider struct {
	client openai.Client
	cfg    llm.Config
}

// New creates a Provider. A missing API key is a configuration error.
func New(cfg llm.Config) (llm.Provider, error) {
	cfg.ApplyDefaults()
	if cfg.APIKey == "" {
		return nil, errors.Configuration("llm.api_key", "an API key is required for the openai provider")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are handled by llm.WithResilience.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{client: openai.NewClient(opts...), cfg: cfg}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the configured model can be retrieved.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Models.Get(ctx, p.cfg.Model)
	return err == nil
}

// Complete sends the request as a chat completion. When req.Schema is set
// the response is constrained with a strict JSON schema.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages: messages(req),
		Model:    openai.ChatModel(p.model(req)),
	}
	temp := p.cfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	params.Temperature = openai.Float(temp)
	if n := req.MaxTokens; n > 0 {
		params.MaxCompletionTokens = openai.Int(int64(n))
	} else if p.cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.cfg.MaxTokens))
	}
	if s := req.Schema; s != nil {
		schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   s.Name,
			Schema: s.Value,
			Strict: openai.Bool(true),
		}
		if s.Description != "" {
			schemaParam.Description = openai.String(s.Description)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("no choices in response"))
	}
	return &llm.Response{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
		Usage: llm.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func (p *Provider) model(req llm.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return p.cfg.Model
}

func messages(req llm.Request) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// mapError classifies API failures: rejected credentials are configuration
// errors, throttling and server faults are retryable, other client errors
// are not.
func mapError(err error) error {
	var apiErr *openai.Error
	if !stderrors.As(err, &apiErr) {
		return errors.ExternalServiceError(ProviderName, err)
	}
	switch code := apiErr.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Configuration("llm.api_key", "rejected by provider").WithCause(err)
	case code == http.StatusTooManyRequests:
		return errors.RateLimited(ProviderName).WithCause(err)
	case code >= 500:
		return errors.ExternalServiceError(ProviderName, err)
	default:
		e := errors.ExternalServiceError(ProviderName, err)
		e.Retryable = false
		return e.WithDetail("status", code)
	}
}
