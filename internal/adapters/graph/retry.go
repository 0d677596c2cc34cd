package graph

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/pkg/logger"
	"github.com/chimera-hq/guardian/pkg/metrics"
)

// RetryingStore decorates a Store with exponential backoff on transient
// failures. Only ErrUnavailable is retried; everything else surfaces
// immediately.
type RetryingStore struct {
	inner           Store
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          logger.Logger
}

// NewRetryingStore wraps inner with retry behavior.
func NewRetryingStore(inner Store, opts ...RetryOption) *RetryingStore {
	s := &RetryingStore{
		inner:           inner,
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RetryingStore) retry(ctx context.Context, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	policy.MaxInterval = s.maxInterval

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return backoff.Permanent(err)
		}
		metrics.RecordGraphRetry()
		if s.logger != nil {
			s.logger.Warn(ctx, "retrying graph operation",
				logger.String("op", op),
				logger.Int("attempt", attempt),
				logger.Error(err))
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx))
}

// Snapshot implements Store.
func (s *RetryingStore) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.retry(ctx, "snapshot", func() error {
		var err error
		snap, err = s.inner.Snapshot(ctx)
		return err
	})
	return snap, err
}

// Person implements Store.
func (s *RetryingStore) Person(ctx context.Context, personID string) (model.Person, error) {
	var p model.Person
	err := s.retry(ctx, "person", func() error {
		var err error
		p, err = s.inner.Person(ctx, personID)
		return err
	})
	return p, err
}

// EvidenceFor implements Store.
func (s *RetryingStore) EvidenceFor(ctx context.Context, personID, skill string) ([]model.Evidence, error) {
	var trail []model.Evidence
	err := s.retry(ctx, "evidence_for", func() error {
		var err error
		trail, err = s.inner.EvidenceFor(ctx, personID, skill)
		return err
	})
	return trail, err
}

// UpsertCompetency implements Store.
func (s *RetryingStore) UpsertCompetency(ctx context.Context, rec model.CompetencyRecord) error {
	return s.retry(ctx, "upsert_competency", func() error {
		return s.inner.UpsertCompetency(ctx, rec)
	})
}

// Ping implements Store.
func (s *RetryingStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close implements Store.
func (s *RetryingStore) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
