package graph

import (
	"time"

	"github.com/chimera-hq/guardian/pkg/logger"
)

// Neo4jOption configures the Neo4j store.
type Neo4jOption func(*Neo4jStore)

// WithDatabase selects the Neo4j database name.
func WithDatabase(name string) Neo4jOption {
	return func(s *Neo4jStore) {
		if name != "" {
			s.database = name
		}
	}
}

// WithNeo4jLogger attaches a logger for backend diagnostics.
func WithNeo4jLogger(l logger.Logger) Neo4jOption {
	return func(s *Neo4jStore) {
		s.logger = l
	}
}

// RetryOption configures the retrying decorator.
type RetryOption func(*RetryingStore)

// WithMaxRetries bounds retry attempts per operation.
func WithMaxRetries(n uint64) RetryOption {
	return func(s *RetryingStore) {
		s.maxRetries = n
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(s *RetryingStore) {
		if d > 0 {
			s.initialInterval = d
		}
	}
}

// WithMaxInterval caps the backoff delay.
func WithMaxInterval(d time.Duration) RetryOption {
	return func(s *RetryingStore) {
		if d > 0 {
			s.maxInterval = d
		}
	}
}

// WithRetryLogger attaches a logger for retry diagnostics.
func WithRetryLogger(l logger.Logger) RetryOption {
	return func(s *RetryingStore) {
		s.logger = l
	}
}
