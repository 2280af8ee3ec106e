// Package server wires the herald services together from a Config.
package server

import (
	"github.com/heraldhq/herald/services/diagnostic"
	"github.com/heraldhq/herald/services/lock"
	"github.com/heraldhq/herald/services/notification"
	"github.com/heraldhq/herald/services/storage"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Service is a component with a lifecycle managed by the Server.
type Service interface {
	Open() error
	Close() error
}

type namedService struct {
	name string
	Service
}

// Server manages the startup and shutdown of all services in the proper order.
type Server struct {
	config *Config

	DiagService         *diagnostic.Service
	StorageService      *storage.Service
	NotificationService *notification.Service
	Locker              lock.Locker

	// Registry holds the metrics of all services.
	Registry *prometheus.Registry

	services []namedService
	diag     *diagnostic.ServerHandler
}

// New returns a server built from c. The diagnostic service must already be open.
func New(c *Config, diagService *diagnostic.Service) (*Server, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		config:      c,
		DiagService: diagService,
		Registry:    prometheus.NewRegistry(),
		diag:        diagService.NewServerHandler(),
	}

	l, err := lock.New(c.LockConfig(), diagService.NewLockHandler())
	if err != nil {
		return nil, errors.Wrap(err, "lock")
	}
	s.Locker = l

	if c.Storage.Backend == storage.BoltBackend {
		s.StorageService = storage.NewService(c.Storage, diagService.NewStorageHandler())
	}
	return s, nil
}

// Open opens all services. Services opened before a failure are closed again.
func (s *Server) Open() error {
	if err := s.open(); err != nil {
		s.Close()
		return err
	}
	return nil
}

func (s *Server) open() error {
	if s.StorageService != nil {
		if err := s.openService("storage", s.StorageService); err != nil {
			return err
		}
	}

	var backend notification.Backend
	if s.StorageService != nil {
		backend = notification.NewKVBackend(s.StorageService.Store("notification"))
	} else {
		backend = notification.NewFileBackend(s.config.Storage.Path)
	}
	svc, err := notification.NewService(
		s.config.Notification,
		backend,
		s.Locker,
		s.Registry,
		s.DiagService.NewNotificationHandler(),
	)
	if err != nil {
		return errors.Wrap(err, "notification")
	}
	s.NotificationService = svc
	return s.openService("notification", svc)
}

func (s *Server) openService(name string, svc Service) error {
	s.diag.OpeningService(name)
	if err := svc.Open(); err != nil {
		return errors.Wrapf(err, "open service %s", name)
	}
	s.services = append(s.services, namedService{name: name, Service: svc})
	return nil
}

// Close closes the opened services in reverse order and returns the first error.
func (s *Server) Close() error {
	var first error
	for i := len(s.services) - 1; i >= 0; i-- {
		svc := s.services[i]
		s.diag.ClosingService(svc.name)
		if err := svc.Close(); err != nil {
			s.diag.Error("error closing service", err)
			if first == nil {
				first = err
			}
		}
	}
	s.services = nil
	return first
}
