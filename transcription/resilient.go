package transcription

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/resilience"
)

type resilientProvider struct {
	Provider
	retry   resilience.RetryConfig
	timeout time.Duration
}

// WithResilience bounds every Transcribe call by cfg.Timeout and retries
// transient failures. An exhausted deadline is reported as a timeout error.
func WithResilience(p Provider, cfg Config) Provider {
	cfg.ApplyDefaults()
	return &resilientProvider{
		Provider: p,
		retry:    resilience.RetryConfigFor("transcription."+p.Name(), cfg.MaxAttempts),
		timeout:  cfg.Timeout,
	}
}

func (r *resilientProvider) Transcribe(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := resilience.Retry(callCtx, r.retry, func() (*Response, error) {
		return r.Provider.Transcribe(callCtx, req)
	})
	if err != nil && ctx.Err() == nil && stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, errors.Timeout(r.Name() + " transcription").WithCause(err)
	}
	return resp, err
}
