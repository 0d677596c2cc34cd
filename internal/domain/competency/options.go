// Package competency derives bounded competency levels from raw evidence.
package competency

import (
	"github.com/chimera-hq/guardian/pkg/logger"
)

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithDecayRate sets the per-day exponential decay rate.
func WithDecayRate(ratePerDay float64) Option {
	return func(e *Estimator) {
		if ratePerDay >= 0 {
			e.decayRatePerDay = ratePerDay
		}
	}
}

// WithSaturation sets the k constant of the 1-exp(-k*sum) saturation curve.
func WithSaturation(k float64) Option {
	return func(e *Estimator) {
		if k > 0 {
			e.saturationK = k
		}
	}
}

// WithCitationThreshold sets the minimum decayed contribution an evidence
// item needs to be cited in the justification set.
func WithCitationThreshold(threshold float64) Option {
	return func(e *Estimator) {
		if threshold >= 0 {
			e.citationThreshold = threshold
		}
	}
}

// WithTypeWeights sets base weights per evidence type and the default weight
// for unknown types.
func WithTypeWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(e *Estimator) {
		if len(weights) > 0 {
			e.typeWeights = make(map[string]float64, len(weights))
			for t, w := range weights {
				if w > 0 {
					e.typeWeights[t] = w
				}
			}
		}
		if defaultWeight > 0 {
			e.defaultWeight = defaultWeight
		}
	}
}

// WithLogger sets a custom logger for anomaly reporting.
func WithLogger(l logger.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}
