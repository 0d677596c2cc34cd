package app

import (
	"github.com/chimera-hq/guardian/internal/adapters/graph"
	"github.com/chimera-hq/guardian/internal/adapters/mq/queue"
	"github.com/chimera-hq/guardian/pkg/logger"
)

// Option configures the service.
type Option func(*Service)

// WithStore injects a graph store, bypassing configuration-driven setup.
func WithStore(store graph.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithQueue injects a task queue, bypassing configuration-driven setup.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}
