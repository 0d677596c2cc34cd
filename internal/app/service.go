// Package app wires the domain engine to its adapters and exposes the
// operations the transport layer serves.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/chimera-hq/guardian/internal/adapters/graph"
	"github.com/chimera-hq/guardian/internal/adapters/mq/queue"
	"github.com/chimera-hq/guardian/internal/adapters/mq/worker"
	"github.com/chimera-hq/guardian/internal/config"
	"github.com/chimera-hq/guardian/internal/domain/competency"
	"github.com/chimera-hq/guardian/internal/domain/dossier"
	"github.com/chimera-hq/guardian/internal/domain/inflight"
	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
	"github.com/chimera-hq/guardian/internal/domain/risk"
	"github.com/chimera-hq/guardian/internal/domain/team"
	"github.com/chimera-hq/guardian/pkg/logger"
)

// Service owns every long-lived component: the graph store, the recompute
// pipeline, the search engine, and the analysis stages behind it.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	store     graph.Store
	queue     queue.Queue
	pool      *worker.Pool
	engine    *team.Engine
	analyzer  *risk.Analyzer
	builder   *dossier.Builder
	estimator *competency.Estimator
	profiles  *profile.Registry
	gate      *inflight.Gate

	searchTimeout time.Duration
	startedAt     time.Time
}

// New assembles a Service from configuration. An empty graph URI selects
// the in-memory store; anything else connects to Neo4j behind the retry
// decorator.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:           cfg,
		log:           logger.Named("app"),
		profiles:      profile.NewRegistry(),
		gate:          inflight.NewGate(),
		searchTimeout: time.Duration(cfg.SearchTimeoutMS) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		store, err := buildStore(ctx, cfg, s.log)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	s.estimator = competency.New(
		competency.WithDecayRate(cfg.DecayRatePerDay),
		competency.WithSaturation(cfg.SaturationK),
		competency.WithCitationThreshold(cfg.CitationThreshold),
		competency.WithTypeWeights(cfg.EvidenceWeights, cfg.DefaultEvidenceWeight),
		competency.WithLogger(logger.Named("estimator")),
	)

	s.engine = team.NewEngine(
		team.WithRestarts(cfg.RestartCount),
		team.WithWorkers(cfg.SearchWorkers),
		team.WithSwapLimit(cfg.SwapIterations),
		team.WithRedundancyTarget(cfg.RedundancyTarget),
		team.WithWeights(team.Weights{
			Coverage:   cfg.CoverageWeight,
			Synergy:    cfg.SynergyWeight,
			SPOF:       cfg.SPOFPenaltyWeight,
			Experience: cfg.ExperienceWeight,
		}),
		team.WithLogger(logger.Named("search")),
	)

	s.analyzer = risk.NewAnalyzer(
		risk.WithConflictRatioThreshold(cfg.ConflictRatioThreshold),
		risk.WithSevereConflictRatio(cfg.SevereConflictRatio),
		risk.WithFreshnessWindow(time.Duration(cfg.FreshnessWindowDays)*24*time.Hour),
		risk.WithLinchpinLevel(cfg.LinchpinLevel),
		risk.WithLogger(logger.Named("risk")),
	)

	s.builder = dossier.NewBuilder(
		dossier.WithCitationsPerSkill(cfg.CitationsPerSkill),
		dossier.WithLogger(logger.Named("dossier")),
	)

	if s.queue == nil {
		s.queue = queue.NewInMemoryQueue(cfg.QueueSize)
	}
	s.pool = worker.NewPool(s.queue, s.store, s.estimator, s.gate,
		worker.WithWorkerCount(cfg.WorkerCount),
		worker.WithLogger(logger.Named("worker")),
	)

	return s, nil
}

func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (graph.Store, error) {
	if cfg.GraphURI == "" {
		log.Info(ctx, "graph URI empty, using in-memory store")
		return graph.NewMemoryStore(), nil
	}

	neo, err := graph.NewNeo4jStore(ctx, cfg.GraphURI, cfg.GraphUser, cfg.GraphPassword,
		graph.WithDatabase(cfg.GraphDatabase),
		graph.WithNeo4jLogger(logger.Named("neo4j")),
	)
	if err != nil {
		return nil, fmt.Errorf("connect graph store: %w", err)
	}
	return graph.NewRetryingStore(neo,
		graph.WithMaxRetries(uint64(cfg.GraphMaxRetries)),
		graph.WithInitialInterval(time.Duration(cfg.GraphRetryInitialMS)*time.Millisecond),
		graph.WithMaxInterval(time.Duration(cfg.GraphRetryMaxDelayMS)*time.Millisecond),
		graph.WithRetryLogger(logger.Named("graph-retry")),
	), nil
}

// Start launches the recompute workers.
func (s *Service) Start(ctx context.Context) error {
	s.startedAt = time.Now()
	s.pool.Start(ctx)
	s.log.Info(ctx, "service started",
		logger.Int("workers", s.cfg.WorkerCount),
		logger.Int("queue_capacity", s.queue.Capacity()))
	return nil
}

// Stop drains the pipeline and releases the store.
func (s *Service) Stop(ctx context.Context) error {
	s.queue.Close()
	s.pool.Stop()
	err := s.store.Close(ctx)
	s.log.Info(ctx, "service stopped")
	return err
}

// Store exposes the underlying graph store for seeding and tooling.
func (s *Service) Store() graph.Store {
	return s.store
}

// ProposeRequest is one team-formation query as accepted by the service.
type ProposeRequest struct {
	Requirements model.Requirements
	ProfileTag   string
	K            int
	Preferences  model.Preferences
}

// ProposeResult carries ranked, analyzed, evidence-backed dossiers.
type ProposeResult struct {
	Dossiers []model.Dossier
	PoolSize int
	TimedOut bool
}

// Propose runs the full pipeline for one request: validate, snapshot,
// search, analyze, build dossiers.
func (s *Service) Propose(ctx context.Context, req ProposeRequest) (ProposeResult, error) {
	if err := s.validatePropose(req); err != nil {
		return ProposeResult{}, err
	}
	prof, err := s.profiles.Get(req.ProfileTag)
	if err != nil {
		return ProposeResult{}, err
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return ProposeResult{}, fmt.Errorf("read graph snapshot: %w", err)
	}

	searchCtx := ctx
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	result, err := s.engine.Search(searchCtx, snap.Persons, snap.Edges, team.Request{
		Requirements: req.Requirements,
		Profile:      prof,
		K:            req.K,
		Preferences:  req.Preferences,
	})
	if err != nil {
		return ProposeResult{}, err
	}

	roster := make(map[string]model.Person, len(snap.Persons))
	for _, p := range snap.Persons {
		roster[p.ID] = p
	}

	out := ProposeResult{
		PoolSize: result.PoolSize,
		TimedOut: result.TimedOut,
	}
	for _, proposal := range result.Proposals {
		proposal.Risks = s.analyzer.Analyze(ctx, proposal, roster, snap.Edges, prof, time.Now())
		d, err := s.builder.Build(ctx, proposal, roster)
		if err != nil {
			return ProposeResult{}, fmt.Errorf("build dossier: %w", err)
		}
		out.Dossiers = append(out.Dossiers, d)
	}

	s.log.Info(ctx, "proposals generated",
		logger.Int("count", len(out.Dossiers)),
		logger.Int("pool_size", out.PoolSize),
		logger.Any("timed_out", out.TimedOut))
	return out, nil
}

func (s *Service) validatePropose(req ProposeRequest) error {
	if req.K < 1 {
		return fmt.Errorf("%w: team size must be at least 1", ErrValidation)
	}
	if len(req.Requirements) == 0 {
		return fmt.Errorf("%w: at least one skill requirement", ErrValidation)
	}
	for skill, level := range req.Requirements {
		if skill == "" {
			return fmt.Errorf("%w: empty skill name", ErrValidation)
		}
		if level <= 0 || level > 1 {
			return fmt.Errorf("%w: level for %q must be in (0,1]", ErrValidation, skill)
		}
	}
	for skill, w := range req.Preferences.SkillWeights {
		if w <= 0 {
			return fmt.Errorf("%w: weight for %q must be positive", ErrValidation, skill)
		}
	}
	excluded := make(map[string]struct{}, len(req.Preferences.Exclude))
	for _, id := range req.Preferences.Exclude {
		excluded[id] = struct{}{}
	}
	for _, id := range req.Preferences.Include {
		if _, clash := excluded[id]; clash {
			return fmt.Errorf("%w: %q is both included and excluded", ErrValidation, id)
		}
	}
	return nil
}

// RecomputeResult reports how many pairs entered the pipeline.
type RecomputeResult struct {
	Accepted int
	Rejected int
}

// Recompute queues competency recomputation for the given pairs. Accepted
// tasks run asynchronously; a full queue rejects the remainder instead of
// blocking the caller.
func (s *Service) Recompute(ctx context.Context, tasks []queue.Task) (RecomputeResult, error) {
	if len(tasks) == 0 {
		return RecomputeResult{}, fmt.Errorf("%w: no pairs given", ErrValidation)
	}
	for _, t := range tasks {
		if t.PersonID == "" || t.Skill == "" {
			return RecomputeResult{}, fmt.Errorf("%w: person and skill are both required", ErrValidation)
		}
	}

	var result RecomputeResult
	for _, t := range tasks {
		if err := s.queue.Enqueue(ctx, t); err != nil {
			result.Rejected++
			continue
		}
		result.Accepted++
	}

	s.log.Info(ctx, "recompute batch queued",
		logger.Int("accepted", result.Accepted),
		logger.Int("rejected", result.Rejected))
	return result, nil
}

// Profiles lists the registered mission profiles.
func (s *Service) Profiles() []profile.Profile {
	return s.profiles.List()
}

// Linchpins scans the whole roster for sole skill holders, scored with
// their collaboration-graph degree centrality.
func (s *Service) Linchpins(ctx context.Context) ([]risk.Linchpin, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read graph snapshot: %w", err)
	}
	return s.analyzer.Linchpins(ctx, snap.Persons, snap.Edges), nil
}

// Stats is a point-in-time view of the pipeline.
type Stats struct {
	QueueSize          int     `json:"queue_size"`
	QueueCapacity      int     `json:"queue_capacity"`
	QueueUtilization   float64 `json:"queue_utilization"`
	WorkerCount        int     `json:"worker_count"`
	InflightRecomputes int     `json:"inflight_recomputes"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
}

// GetStats reports pipeline state.
func (s *Service) GetStats() Stats {
	capacity := s.queue.Capacity()
	size := s.queue.Size()
	var utilization float64
	if capacity > 0 {
		utilization = float64(size) / float64(capacity)
	}
	return Stats{
		QueueSize:          size,
		QueueCapacity:      capacity,
		QueueUtilization:   utilization,
		WorkerCount:        s.cfg.WorkerCount,
		InflightRecomputes: s.gate.Size(),
		UptimeSeconds:      time.Since(s.startedAt).Seconds(),
	}
}

// Healthy verifies the storage backend is reachable.
func (s *Service) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}
