package application

import (
	"context"
	"sync"
	"time"

	"tweetsweep/internal/ports"
)

// Pacer enforces a fixed minimum interval between consecutive remote calls.
// The interval is unconditional, not adaptive: the remote system penalizes
// burst patterns, so this is a hard requirement rather than an optimization.
type Pacer struct {
	interval time.Duration
	clock    ports.Clock
	sleep    func(context.Context, time.Duration) error

	mu   sync.Mutex
	last time.Time
}

func NewPacer(interval time.Duration, clock ports.Clock) *Pacer {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Pacer{
		interval: interval,
		clock:    clock,
		sleep:    sleepContext,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait returned, then marks the current instant as the new baseline.
// The first call returns immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	var gap time.Duration
	if !p.last.IsZero() {
		if remaining := p.interval - p.clock.Now().Sub(p.last); remaining > 0 {
			gap = remaining
		}
	}
	p.mu.Unlock()

	if gap > 0 {
		if err := p.sleep(ctx, gap); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.last = p.clock.Now()
	p.mu.Unlock()

	return nil
}

func (p *Pacer) Interval() time.Duration {
	return p.interval
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
