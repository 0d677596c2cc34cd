package dossier

import (
	"time"

	"github.com/chimera-hq/guardian/pkg/logger"
)

// Option configures the builder.
type Option func(*Builder)

// WithCitationsPerSkill caps evidence citations per justification.
func WithCitationsPerSkill(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.citationsPerSkill = n
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger attaches a logger for build diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}
