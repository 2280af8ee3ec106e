package notification

import (
	"context"
	"strings"
	"time"

	"github.com/heraldhq/herald/services/lock"
	"github.com/pkg/errors"
)

type Diagnostic interface {
	ConfigWritten(op string, digest Digest)
	UnknownTarget(name string)
	RuleMatched(rule string, targets []string)
	Error(msg string, err error)
}

// Store reads and mutates the shared configuration.
// Reads never lock, every mutation is a single locked read-modify-write cycle.
type Store struct {
	backend Backend
	locker  lock.Locker
	metrics *metrics
	diag    Diagnostic
}

// NewStore returns a store persisting to b and serialized by l. d must not be nil.
func NewStore(b Backend, l lock.Locker, d Diagnostic) *Store {
	return &Store{
		backend: b,
		locker:  l,
		diag:    d,
	}
}

// Read returns the current configuration and its digest.
// The default configuration is returned when nothing was written yet.
func (s *Store) Read(ctx context.Context) (Snapshot, Digest, error) {
	data, err := s.backend.Load(ctx)
	if err == ErrNoDocument {
		d := DefaultSnapshot()
		return d, d.Digest(), nil
	}
	if err != nil {
		return Snapshot{}, "", errors.Wrapf(ErrIO, "%v", err)
	}
	snapshot, err := Parse(data)
	if err != nil {
		return Snapshot{}, "", err
	}
	return snapshot, snapshot.Digest(), nil
}

// Write replaces the whole configuration.
func (s *Store) Write(ctx context.Context, snapshot Snapshot) error {
	return s.mutate(ctx, "write", "", func(current *Snapshot) error {
		*current = snapshot
		return nil
	})
}

func (s *Store) save(ctx context.Context, snapshot Snapshot) error {
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return errors.Wrapf(ErrIO, "%v", err)
	}
	return nil
}

// mutate runs f on a private copy of the current configuration while holding the lock
// and saves the result if it is valid.
func (s *Store) mutate(ctx context.Context, op string, digest Digest, f func(*Snapshot) error) (err error) {
	defer func() { s.metrics.observeMutation(op, err) }()

	start := time.Now()
	lease, err := s.locker.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, op)
	}
	s.metrics.observeLockWait(time.Since(start))
	defer func() {
		if rerr := lease.Release(); rerr != nil {
			s.diag.Error("failed to release configuration lock", rerr)
		}
	}()

	current, currentDigest, err := s.Read(ctx)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if digest != "" && digest != currentDigest {
		return conflictErrorf("%s: configuration was modified, digest %s does not match %s", op, digest, currentDigest)
	}
	next, err := current.Copy()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if err := f(&next); err != nil {
		return errors.Wrap(err, op)
	}
	if err := next.Validate(); err != nil {
		return errors.Wrap(err, op)
	}
	if err := s.save(ctx, next); err != nil {
		return errors.Wrap(err, op)
	}
	s.diag.ConfigWritten(op, next.Digest())
	return nil
}

// AddEndpoint adds an endpoint of any kind.
func (s *Store) AddEndpoint(ctx context.Context, e Endpoint) error {
	if e == nil {
		return validationErrorf("missing endpoint")
	}
	return s.mutate(ctx, "add-"+string(e.Kind()), "", func(c *Snapshot) error {
		if _, err := c.Endpoint(e.EndpointName()); err == nil {
			return conflictErrorf("endpoint %q already exists", e.EndpointName())
		}
		if err := e.Validate(); err != nil {
			return err
		}
		switch e := e.(type) {
		case SendmailEndpoint:
			c.Sendmail = append(c.Sendmail, e)
		case GotifyEndpoint:
			c.Gotify = append(c.Gotify, e)
		case SMTPEndpoint:
			c.SMTP = append(c.SMTP, e)
		default:
			return validationErrorf("unsupported endpoint type %T", e)
		}
		return nil
	})
}

// UpdateEndpoint applies a partial update to the named endpoint of any kind.
func (s *Store) UpdateEndpoint(ctx context.Context, r UpdateRequest) error {
	p, err := r.Patch()
	if err != nil {
		return err
	}
	return s.mutate(ctx, "update-endpoint", r.Digest, func(c *Snapshot) error {
		var target interface{}
		if i := indexOf(c.Sendmail, r.Name); i >= 0 {
			target = &c.Sendmail[i]
		} else if i := indexOf(c.Gotify, r.Name); i >= 0 {
			target = &c.Gotify[i]
		} else if i := indexOf(c.SMTP, r.Name); i >= 0 {
			target = &c.SMTP[i]
		} else {
			return notFoundErrorf("endpoint %q", r.Name)
		}
		if err := p.Apply(target); err != nil {
			return errors.Wrapf(err, "endpoint %q", r.Name)
		}
		return nil
	})
}

// DeleteEndpoint removes the named endpoint. Endpoints targeted by a matcher
// cannot be deleted.
func (s *Store) DeleteEndpoint(ctx context.Context, name string, digest Digest) error {
	return s.mutate(ctx, "delete-endpoint", digest, func(c *Snapshot) error {
		if _, err := c.Endpoint(name); err != nil {
			return err
		}
		if refs := c.referencedBy(name); len(refs) > 0 {
			return validationErrorf("endpoint %q is still used by matchers: %s", name, strings.Join(refs, ", "))
		}
		if i := indexOf(c.Sendmail, name); i >= 0 {
			c.Sendmail = removeAt(c.Sendmail, i)
		} else if i := indexOf(c.Gotify, name); i >= 0 {
			c.Gotify = removeAt(c.Gotify, i)
		} else if i := indexOf(c.SMTP, name); i >= 0 {
			c.SMTP = removeAt(c.SMTP, i)
		}
		return nil
	})
}

// AddMatcher appends a matcher. Every target must name an existing endpoint.
func (s *Store) AddMatcher(ctx context.Context, m MatcherConfig) error {
	return s.mutate(ctx, "add-matcher", "", func(c *Snapshot) error {
		if _, err := c.Matcher(m.Name); err == nil {
			return conflictErrorf("matcher %q already exists", m.Name)
		}
		if err := m.Validate(); err != nil {
			return err
		}
		if err := c.checkTargets(m); err != nil {
			return err
		}
		c.Matchers = append(c.Matchers, m)
		return nil
	})
}

// UpdateMatcher applies a partial update to the named matcher.
// Targets are checked only when the update sets them.
func (s *Store) UpdateMatcher(ctx context.Context, r UpdateRequest) error {
	p, err := r.Patch()
	if err != nil {
		return err
	}
	return s.mutate(ctx, "update-matcher", r.Digest, func(c *Snapshot) error {
		i := matcherIndex(c.Matchers, r.Name)
		if i < 0 {
			return notFoundErrorf("matcher %q", r.Name)
		}
		if err := p.Apply(&c.Matchers[i]); err != nil {
			return errors.Wrapf(err, "matcher %q", r.Name)
		}
		if err := c.Matchers[i].Validate(); err != nil {
			return err
		}
		// Targets already dangling in a hand edited document do not block other edits.
		if p.Get("target").Op != SetOp {
			return nil
		}
		return c.checkTargets(c.Matchers[i])
	})
}

// DeleteMatcher removes the named matcher.
func (s *Store) DeleteMatcher(ctx context.Context, name string, digest Digest) error {
	return s.mutate(ctx, "delete-matcher", digest, func(c *Snapshot) error {
		i := matcherIndex(c.Matchers, name)
		if i < 0 {
			return notFoundErrorf("matcher %q", name)
		}
		c.Matchers = removeAt(c.Matchers, i)
		return nil
	})
}

func (s *Snapshot) checkTargets(m MatcherConfig) error {
	for _, t := range m.Target {
		if _, err := s.Endpoint(t); err != nil {
			return validationErrorf("matcher %q: target %q does not exist", m.Name, t)
		}
	}
	return nil
}

func matcherIndex(ms []MatcherConfig, name string) int {
	for i, m := range ms {
		if m.Name == name {
			return i
		}
	}
	return -1
}
