package worker

import "github.com/chimera-hq/guardian/pkg/logger"

// Option configures the pool.
type Option func(*Pool)

// WithWorkerCount sets how many workers drain the queue.
func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.count = n
		}
	}
}

// WithLogger attaches a logger for worker diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}
