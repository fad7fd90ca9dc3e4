package resilience

import (
	"context"
	"errors"
	"time"
)

// Bulkhead bounds the number of concurrent calls. Callers wait for a slot
// until MaxWait passes or their context ends.
type Bulkhead struct {
	name    string
	maxWait time.Duration
	sem     chan struct{}
}

// ErrBulkheadTimeout is returned when no slot freed up within MaxWait.
var ErrBulkheadTimeout = errors.New("bulkhead wait timeout")

// NewBulkhead creates a bulkhead with maxConcurrent slots. maxWait <= 0
// waits until the context ends.
func NewBulkhead(name string, maxConcurrent int, maxWait time.Duration) *Bulkhead {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Bulkhead{name: name, maxWait: maxWait, sem: make(chan struct{}, maxConcurrent)}
}

// Execute runs fn while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-b.sem }()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if b.maxWait > 0 {
		timer := time.NewTimer(b.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timeout:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// Capacity returns the number of slots.
func (b *Bulkhead) Capacity() int { return cap(b.sem) }
