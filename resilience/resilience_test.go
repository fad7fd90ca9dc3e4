package resilience

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/clipkit/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"first attempt", []error{nil}, 1, false},
		{"transient then success", []error{stderrors.New("reset"), stderrors.New("reset"), nil}, 3, false},
		{"exhausted", []error{stderrors.New("a"), stderrors.New("b"), stderrors.New("c")}, 3, true},
		{"retryable app error", []error{errors.ServiceUnavailable("transcription"), nil}, 2, false},
		{"parse error is final", []error{errors.Parse("llm", "{", nil), nil}, 1, true},
		{"config error is final", []error{errors.Configuration("llm.api_key", "missing"), nil}, 1, true},
		{"input error is final", []error{errors.InvalidInput("url", "bad"), nil}, 1, true},
		{"context error is final", []error{context.DeadlineExceeded, nil}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := Retry(context.Background(), fastRetry(3), func() (string, error) {
				e := tt.errs[calls]
				calls++
				if e != nil {
					return "", e
				}
				return "ok", nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != "ok" {
				t.Errorf("result = %q", got)
			}
		})
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := RetryFunc(ctx, fastRetry(3), func() error {
		calls++
		return nil
	})
	if !stderrors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryConfigFor(t *testing.T) {
	cfg := RetryConfigFor("llm", 5)
	if cfg.Name != "llm" || cfg.MaxAttempts != 5 || cfg.OnRetry == nil {
		t.Errorf("cfg = %+v", cfg)
	}
	if RetryConfigFor("llm", 0).MaxAttempts != 3 {
		t.Error("zero attempts should keep the default")
	}
}

func TestBackoffFor(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, BackoffFactor: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := backoffFor(i+1, cfg); got != w {
			t.Errorf("attempt %d backoff = %v, want %v", i+1, got, w)
		}
	}
}

func TestCircuitBreaker_Opens(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "ffmpeg",
		MaxFailures: 2,
		Timeout:     20 * time.Millisecond,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})
	crash := stderrors.New("exit status 1")

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return crash })
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !stderrors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("open breaker ran the call: err = %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("probe err = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state = %s, want closed after successful probe", cb.State())
	}
	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_IgnoresCallerErrors(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "ffmpeg", MaxFailures: 1})
	_ = cb.Execute(func() error { return errors.InvalidInput("segments", "empty") })
	_ = cb.Execute(func() error { return context.Canceled })
	if cb.State() != StateClosed || cb.Failures() != 0 {
		t.Errorf("state = %s failures = %d", cb.State(), cb.Failures())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "ffmpeg", MaxFailures: 1, Timeout: 10 * time.Millisecond})
	_ = cb.Execute(func() error { return stderrors.New("boom") })
	time.Sleep(15 * time.Millisecond)
	_ = cb.Execute(func() error { return stderrors.New("boom") })
	if cb.State() != StateOpen {
		t.Errorf("state = %s, want open", cb.State())
	}
	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("state after Reset = %s", cb.State())
	}
}

func TestBulkhead(t *testing.T) {
	b := NewBulkhead("encode", 2, 0)
	if b.Capacity() != 2 {
		t.Fatalf("Capacity = %d", b.Capacity())
	}

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
	if b.InUse() != 0 {
		t.Errorf("InUse = %d after all calls", b.InUse())
	}
}

func TestBulkhead_Timeout(t *testing.T) {
	b := NewBulkhead("encode", 1, 5*time.Millisecond)
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	err := b.Execute(context.Background(), func() error { return nil })
	close(release)
	if !stderrors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("err = %v, want ErrBulkheadTimeout", err)
	}
}
