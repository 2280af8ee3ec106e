package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process lock. It only serializes writers within one process.
type Local struct {
	sem     chan struct{}
	timeout time.Duration
}

func NewLocal(timeout time.Duration) *Local {
	return &Local{
		sem:     make(chan struct{}, 1),
		timeout: timeout,
	}
}

func (l *Local) Acquire(ctx context.Context) (Lease, error) {
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()
	// Prefer the lock when both are ready.
	select {
	case l.sem <- struct{}{}:
		return &localLease{sem: l.sem}, nil
	default:
	}
	select {
	case l.sem <- struct{}{}:
		return &localLease{sem: l.sem}, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

type localLease struct {
	once sync.Once
	sem  chan struct{}
}

func (l *localLease) Release() error {
	l.once.Do(func() { <-l.sem })
	return nil
}
