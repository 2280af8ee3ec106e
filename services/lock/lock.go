// Package lock provides the exclusive lock guarding configuration read-modify-write cycles.
package lock

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
)

// ErrTimeout is returned when the lock could not be acquired within the wait bound.
var ErrTimeout = errors.New("timed out waiting for configuration lock")

var errContended = errors.New("lock is held")

// Locker acquires an exclusive lock. At most one lease is outstanding at a time
// across every Locker sharing the same backing resource.
type Locker interface {
	// Acquire blocks until the lock is held, ctx is done or the configured timeout
	// elapses, in which case ErrTimeout is returned.
	Acquire(ctx context.Context) (Lease, error)
}

// Lease is a held lock.
type Lease interface {
	// Release gives up the lock. Releasing more than once is a no-op.
	Release() error
}

type Diagnostic interface {
	Acquired(backend string, waited time.Duration)
	Released(backend string, held time.Duration)
	Error(msg string, err error)
}

// New returns the Locker described by c.
func New(c Config, d Diagnostic) (Locker, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	timeout := time.Duration(c.Timeout)
	var l Locker
	switch c.Backend {
	case LocalBackend:
		l = NewLocal(timeout)
	case FileBackend:
		l = NewFile(c.Path, timeout)
	case RedisBackend:
		l = NewRedis(newRedisClient(c), c.RedisKey, time.Duration(c.TTL), timeout)
	}
	return &diagLocker{backend: c.Backend, l: l, diag: d}, nil
}

// withTimeout bounds ctx by timeout, a zero timeout leaves ctx unbounded.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// poll calls try with exponential backoff until it reports the lock was taken,
// fails, or ctx is done.
func poll(ctx context.Context, try func() (bool, error)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 0

	var failure error
	err := backoff.Retry(func() error {
		ok, err := try()
		if err != nil {
			failure = err
			return nil
		}
		if !ok {
			return errContended
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if failure != nil {
		return failure
	}
	if err != nil {
		return ErrTimeout
	}
	return nil
}

type diagLocker struct {
	backend string
	l       Locker
	diag    Diagnostic
}

func (d *diagLocker) Acquire(ctx context.Context) (Lease, error) {
	start := time.Now()
	lease, err := d.l.Acquire(ctx)
	if err != nil {
		d.diag.Error("failed to acquire lock", err)
		return nil, err
	}
	acquired := time.Now()
	d.diag.Acquired(d.backend, acquired.Sub(start))
	return &diagLease{d: d, lease: lease, acquired: acquired}, nil
}

type diagLease struct {
	d        *diagLocker
	lease    Lease
	acquired time.Time
}

func (l *diagLease) Release() error {
	if err := l.lease.Release(); err != nil {
		l.d.diag.Error("failed to release lock", err)
		return err
	}
	l.d.diag.Released(l.d.backend, time.Since(l.acquired))
	return nil
}
