package process

import (
	"context"
	"time"

	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/resilience"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Name identifies the tool in logs and breaker transitions.
	Name string
	// GracePeriod is applied to commands that do not set their own.
	GracePeriod time.Duration
	// Timeout bounds each run. Zero means no per-run timeout.
	Timeout time.Duration
	// MaxConcurrent bounds simultaneous runs. Zero means unbounded.
	MaxConcurrent int
	// Breaker enables a circuit breaker when non-nil.
	Breaker *resilience.CircuitBreakerConfig
}

// Runner executes commands with shared resilience state: a bulkhead that
// bounds concurrent processes and a circuit breaker that fails fast after
// repeated crashes. The breaker state persists across calls.
type Runner struct {
	cfg      RunnerConfig
	breaker  *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{cfg: cfg, log: logger.WithComponent("process")}
	if cfg.Breaker != nil {
		bc := *cfg.Breaker
		if bc.Name == "" {
			bc.Name = cfg.Name
		}
		if bc.OnStateChange == nil {
			bc.OnStateChange = func(name string, from, to resilience.State) {
				r.log.Warn("tool circuit state changed", logger.Fields("tool", name, "from", from.String(), "to", to.String()))
			}
		}
		r.breaker = resilience.NewCircuitBreaker(bc)
	}
	if cfg.MaxConcurrent > 0 {
		r.bulkhead = resilience.NewBulkhead(cfg.Name, cfg.MaxConcurrent, 0)
	}
	return r
}

// Run executes cmd. The Result is returned even on failure so callers can
// report the tool's stderr.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = r.cfg.GracePeriod
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var res *Result
	run := func() error {
		var err error
		res, err = Run(ctx, cmd)
		return err
	}
	guarded := run
	if r.breaker != nil {
		guarded = func() error { return r.breaker.Execute(run) }
	}

	r.log.WithContext(ctx).Debug("running tool", logger.Fields("tool", r.cfg.Name, "command", cmd.String()))
	var err error
	if r.bulkhead != nil {
		err = r.bulkhead.Execute(ctx, guarded)
	} else {
		err = guarded()
	}
	if res != nil {
		r.log.WithContext(ctx).Debug("tool finished", logger.Fields(
			"tool", r.cfg.Name, "exit_code", res.ExitCode, logger.FieldDuration, res.Duration.Milliseconds()))
	}
	return res, err
}

// BreakerState reports the circuit state, or closed when no breaker is set.
func (r *Runner) BreakerState() resilience.State {
	if r.breaker == nil {
		return resilience.StateClosed
	}
	return r.breaker.State()
}
