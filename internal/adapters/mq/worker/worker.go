// Package worker drains the recompute queue and refreshes competency
// records through the estimator.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chimera-hq/guardian/internal/adapters/graph"
	"github.com/chimera-hq/guardian/internal/adapters/mq/queue"
	"github.com/chimera-hq/guardian/internal/domain/competency"
	"github.com/chimera-hq/guardian/internal/domain/inflight"
	"github.com/chimera-hq/guardian/pkg/logger"
	"github.com/chimera-hq/guardian/pkg/metrics"
)

// Pool runs a fixed set of workers against the recompute queue. Each task
// reads the full evidence trail, re-derives the competency record, and
// replaces the stored record wholesale. The inflight gate guarantees at
// most one concurrent recompute per (person, skill) pair.
type Pool struct {
	queue     queue.Queue
	store     graph.Store
	estimator *competency.Estimator
	gate      *inflight.Gate
	count     int
	logger    logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

// NewPool creates a worker pool with the given options.
func NewPool(q queue.Queue, store graph.Store, estimator *competency.Estimator, gate *inflight.Gate, opts ...Option) *Pool {
	p := &Pool{
		queue:     q,
		store:     store,
		estimator: estimator,
		gate:      gate,
		count:     4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. It returns immediately.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	metrics.UpdateWorkerCount(p.count)

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
		metrics.UpdateWorkerCount(0)
	})
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrQueueClosed) {
				return
			}
			if p.logger != nil {
				p.logger.Error(ctx, "dequeue failed", logger.Int("worker", id), logger.Error(err))
			}
			metrics.RecordWorkerError()
			continue
		}
		p.process(ctx, task)
	}
}

// process recomputes one (person, skill) pair. A pair already being
// recomputed elsewhere is skipped, not queued behind the holder: the holder
// reads the same evidence and writes the same record.
func (p *Pool) process(ctx context.Context, task queue.Task) {
	key := inflight.Key(task.PersonID, task.Skill)
	if !p.gate.Acquire(key) {
		metrics.RecordRecomputeSkipped()
		if p.logger != nil {
			p.logger.Debug(ctx, "recompute already inflight, skipping",
				logger.String("person", task.PersonID),
				logger.String("skill", task.Skill))
		}
		return
	}
	defer p.gate.Release(key)

	start := time.Now()
	defer func() {
		metrics.RecordRecomputeLatency(float64(time.Since(start).Milliseconds()))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	evidence, err := p.store.EvidenceFor(ctx, task.PersonID, task.Skill)
	if err != nil {
		p.fail(ctx, task, "read evidence", err)
		return
	}

	rec, err := p.estimator.Estimate(ctx, task.PersonID, task.Skill, evidence, time.Now())
	if err != nil {
		if errors.Is(err, competency.ErrNoEvidence) {
			// Nothing usable: the pair keeps no record rather than a
			// zero-level claim.
			metrics.RecordRecomputeCompleted()
			if p.logger != nil {
				p.logger.Debug(ctx, "no usable evidence, record left absent",
					logger.String("person", task.PersonID),
					logger.String("skill", task.Skill))
			}
			return
		}
		p.fail(ctx, task, "estimate", err)
		return
	}

	if err := p.store.UpsertCompetency(ctx, rec); err != nil {
		p.fail(ctx, task, "persist record", err)
		return
	}

	metrics.RecordRecomputeCompleted()
	if p.logger != nil {
		p.logger.Debug(ctx, "competency recomputed",
			logger.String("person", task.PersonID),
			logger.String("skill", task.Skill),
			logger.Float64("level", rec.Level))
	}
}

func (p *Pool) fail(ctx context.Context, task queue.Task, stage string, err error) {
	metrics.RecordRecomputeError()
	metrics.RecordWorkerError()
	if p.logger != nil {
		p.logger.Error(ctx, "recompute failed",
			logger.String("stage", stage),
			logger.String("person", task.PersonID),
			logger.String("skill", task.Skill),
			logger.Error(err))
	}
}
