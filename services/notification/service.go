package notification

import (
	"context"

	"github.com/heraldhq/herald/notify"
	"github.com/heraldhq/herald/services/lock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Service exposes the configuration store and evaluates events against it.
type Service struct {
	*Store

	Engine *notify.Engine

	metrics  *metrics
	registry prometheus.Registerer
	diag     Diagnostic
}

// NewService returns a service backed by b and serialized by l.
// A nil registry disables metrics, d must not be nil.
func NewService(c Config, b Backend, l lock.Locker, registry prometheus.Registerer, d Diagnostic) (*Service, error) {
	loc, err := c.location()
	if err != nil {
		return nil, err
	}
	s := &Service{
		Store:    NewStore(b, l, d),
		Engine:   notify.NewEngine(loc, d),
		registry: registry,
		diag:     d,
	}
	if registry != nil {
		s.metrics = newMetrics()
		s.Store.metrics = s.metrics
	}
	return s, nil
}

func (s *Service) Open() error {
	if s.metrics != nil {
		if err := s.metrics.register(s.registry); err != nil {
			return errors.Wrap(err, "registering metrics")
		}
	}
	return nil
}

func (s *Service) Close() error {
	if s.metrics != nil {
		s.metrics.unregister(s.registry)
	}
	return nil
}

// Evaluate runs the current matchers against the event.
func (s *Service) Evaluate(ctx context.Context, event notify.Event) (notify.Result, error) {
	snapshot, _, err := s.Read(ctx)
	if err != nil {
		return notify.Result{}, err
	}
	rules, err := snapshot.Rules()
	if err != nil {
		return notify.Result{}, err
	}
	res := s.Engine.Evaluate(rules, event)
	s.metrics.observeEvaluation(len(res.Targets))
	return res, nil
}

// Targets returns the names of the endpoints that should receive the event.
// Names that do not resolve to an endpoint are included.
func (s *Service) Targets(ctx context.Context, event notify.Event) ([]string, error) {
	res, err := s.Evaluate(ctx, event)
	if err != nil {
		return nil, err
	}
	return res.Targets, nil
}

// Resolve maps target names to endpoints, skipping names without an endpoint.
func (s *Service) Resolve(snapshot Snapshot, names []string) []Endpoint {
	endpoints := make([]Endpoint, 0, len(names))
	for _, name := range names {
		e, err := snapshot.Endpoint(name)
		if err != nil {
			s.diag.UnknownTarget(name)
			continue
		}
		endpoints = append(endpoints, e)
	}
	return endpoints
}
