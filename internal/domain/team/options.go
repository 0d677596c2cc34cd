package team

import "github.com/chimera-hq/guardian/pkg/logger"

// Option configures the search engine.
type Option func(*Engine)

// WithRestarts sets how many construction attempts each search runs.
func WithRestarts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.restarts = n
		}
	}
}

// WithWorkers bounds how many restarts run concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSwapLimit bounds the swap-improvement passes per restart.
func WithSwapLimit(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.swapLimit = n
		}
	}
}

// WithRedundancyTarget sets how many qualified members per skill count as
// fully redundant coverage.
func WithRedundancyTarget(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.redundancy = n
		}
	}
}

// WithMaxProposals caps the ranked proposal list.
func WithMaxProposals(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxProposals = n
		}
	}
}

// WithWeights replaces the base objective weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithLogger attaches a logger for search diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}
