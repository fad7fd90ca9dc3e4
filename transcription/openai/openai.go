// Package openai implements transcription.Provider on the OpenAI audio
// transcriptions endpoint with word-level timestamps.
package openai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/transcript"
	"github.com/kbukum/clipkit/transcription"
)

// ProviderName is the registered name for this provider.
const ProviderName = "openai"

// DefaultModel is the only model that returns word timestamps.
const DefaultModel = openai.AudioModelWhisper1

func init() {
	transcription.Register(ProviderName, New)
}

// Provider calls the audio transcriptions endpoint.
type Provider struct {
	client   openai.Client
	model    string
	language string
}

// New creates a Provider. A missing API key is a configuration error.
func New(cfg transcription.Config) (transcription.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.Configuration("transcription.api_key", "an API key is required for the openai provider")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: openai.NewClient(opts...), model: model, language: cfg.Language}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the transcription model can be retrieved.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Models.Get(ctx, p.model)
	return err == nil
}

// verbose is the verbose_json body with word granularity.
type verbose struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe uploads the audio and returns its words.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, errors.InvalidInput("audio_path", err.Error())
	}
	defer f.Close()

	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	params := openai.AudioTranscriptionNewParams{
		File:                   f,
		Model:                  openai.AudioModel(model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	lang := p.language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		params.Language = openai.String(lang)
	}

	tr, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	var body verbose
	if err := json.Unmarshal([]byte(tr.RawJSON()), &body); err != nil {
		return nil, errors.Parse(ProviderName+" transcription", tr.RawJSON(), err)
	}
	resp := &transcription.Response{
		Text:     body.Text,
		Language: body.Language,
		Duration: body.Duration,
		Words:    make([]transcript.Word, 0, len(body.Words)),
	}
	for _, w := range body.Words {
		resp.Words = append(resp.Words, transcript.Word{Text: w.Word, Start: w.Start, End: w.End})
	}
	return resp, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if !stderrors.As(err, &apiErr) {
		return errors.ExternalServiceError(ProviderName, err)
	}
	switch code := apiErr.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Configuration("transcription.api_key", "rejected by provider").WithCause(err)
	case code == http.StatusTooManyRequests:
		return errors.RateLimited(ProviderName).WithCause(err)
	case code >= 500:
		return errors.ExternalServiceError(ProviderName, err)
	default:
		e := errors.ExternalServiceError(ProviderName, fmt.Errorf("status %d: %w", code, err))
		e.Retryable = false
		return e
	}
}
