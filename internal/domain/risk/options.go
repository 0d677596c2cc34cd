package risk

import (
	"time"

	"github.com/chimera-hq/guardian/pkg/logger"
)

// Option configures the analyzer.
type Option func(*Analyzer)

// WithConflictRatioThreshold sets the ratio at which shared history counts
// as adversarial.
func WithConflictRatioThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t > 0 && t <= 1 {
			a.conflictRatioThreshold = t
		}
	}
}

// WithSevereConflictRatio sets the ratio at which an adversarial pair
// escalates from medium to high severity.
func WithSevereConflictRatio(t float64) Option {
	return func(a *Analyzer) {
		if t > 0 && t <= 1 {
			a.severeConflictRatio = t
		}
	}
}

// WithFreshnessWindow sets how long a competency record stays fresh before
// coverage resting on it is flagged stale.
func WithFreshnessWindow(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.freshnessWindow = d
		}
	}
}

// WithLinchpinLevel sets the qualifying level for sole-holder detection.
func WithLinchpinLevel(level float64) Option {
	return func(a *Analyzer) {
		if level > 0 && level <= 1 {
			a.linchpinLevel = level
		}
	}
}

// WithLogger attaches a logger for analysis diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}
