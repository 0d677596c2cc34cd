package team

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
	"github.com/chimera-hq/guardian/pkg/logger"
	"github.com/chimera-hq/guardian/pkg/metrics"
)

// gainEpsilon guards greedy and swap acceptance against float noise.
const gainEpsilon = 1e-9

// Request is one team-formation query, validated upstream.
type Request struct {
	Requirements model.Requirements
	Profile      profile.Profile
	K            int
	Preferences  model.Preferences

	// AsOf anchors recency computations; the zero value means time.Now().
	AsOf time.Time
}

// Result is the ranked outcome of one search.
type Result struct {
	Proposals []model.TeamProposal
	PoolSize  int
	TimedOut  bool
}

// Engine runs incremental score-guided team construction with parallel
// random restarts. The engine is stateless across searches; every search
// works on the immutable snapshot handed to it.
type Engine struct {
	restarts     int
	workers      int
	swapLimit    int
	redundancy   int
	maxProposals int
	weights      Weights

	logger logger.Logger
}

// NewEngine creates a search engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		restarts:     6,
		workers:      4,
		swapLimit:    10,
		redundancy:   2,
		maxProposals: 3,
		weights: Weights{
			Coverage:   0.5,
			Synergy:    0.35,
			SPOF:       0.15,
			Experience: 0.2,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search filters the person pool and explores k-member combinations.
// Restarts run concurrently but never observe each other's partial picks;
// the final merge and rank is single-threaded so tie-breaks stay
// deterministic. When ctx expires the best proposals found so far are
// returned with TimedOut set.
func (e *Engine) Search(ctx context.Context, persons []model.Person, edges []model.CollaborationEdge, req Request) (Result, error) {
	if req.K < 1 {
		return Result{}, fmt.Errorf("%w: k must be positive", ErrInvalidRequest)
	}
	if len(req.Requirements) == 0 {
		return Result{}, fmt.Errorf("%w: empty requirements", ErrInvalidRequest)
	}

	start := time.Now()
	defer func() {
		metrics.RecordSearchDuration(float64(time.Since(start).Milliseconds()))
	}()

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	pool := FilterCandidates(persons, req.Requirements, req.Preferences)
	metrics.RecordCandidatePoolSize(len(pool.Candidates))

	if len(pool.Candidates) == 0 {
		// Under-constrained to the point of emptiness: a single flagged
		// partial proposal, never an error and never an empty list.
		unmet := append([]string(nil), req.Requirements.Skills()...)
		sort.Strings(unmet)
		coverage := make(map[string][]string, len(unmet))
		for _, s := range unmet {
			coverage[s] = nil
		}
		metrics.RecordPartialProposal()
		return Result{
			Proposals: []model.TeamProposal{{
				Members:  nil,
				Coverage: coverage,
				Unmet:    unmet,
				Partial:  true,
			}},
			PoolSize: 0,
		}, nil
	}

	collab := NewCollab(edges)
	ev := newEvaluator(pool, req.Requirements, req.Profile, req.Preferences, collab, e.weights, e.redundancy, asOf)

	// Candidates ordered by aggregate competency for deterministic
	// diversification: restart i>0 bans the i-th strongest candidate.
	byStrength := make([]string, 0, len(pool.Candidates))
	for _, p := range pool.Candidates {
		byStrength = append(byStrength, p.ID)
	}
	sort.Slice(byStrength, func(i, j int) bool {
		if ev.aggregate[byStrength[i]] != ev.aggregate[byStrength[j]] {
			return ev.aggregate[byStrength[i]] > ev.aggregate[byStrength[j]]
		}
		return byStrength[i] < byStrength[j]
	})

	seedBase := requestSeed(req)
	forced := forcedSeed(req.Preferences, pool, req.K)

	restarts := e.restarts
	teams := make([][]string, restarts)

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := 0; i < restarts; i++ {
		i := i
		g.Go(func() error {
			metrics.RecordSearchRestart()
			rng := rand.New(rand.NewSource(int64(seedBase) + int64(i))) //nolint:gosec // reproducible exploration, not crypto
			banned := make(map[string]struct{})
			if i > 0 && len(byStrength) > 1 {
				banned[byStrength[(i-1)%len(byStrength)]] = struct{}{}
			}
			teams[i] = e.construct(ctx, ev, pool, req.K, forced, banned, rng, i > 0)
			return nil
		})
	}
	_ = g.Wait()

	timedOut := ctx.Err() != nil
	if timedOut {
		metrics.RecordSearchTimeout()
		if e.logger != nil {
			e.logger.Warn(ctx, "search budget exhausted, returning best found so far",
				logger.Int("pool_size", len(pool.Candidates)),
				logger.Int("k", req.K))
		}
	}

	proposals := e.rank(ev, teams, req.K)
	for _, p := range proposals {
		metrics.RecordProposalGenerated()
		if p.Partial {
			metrics.RecordPartialProposal()
		}
	}

	return Result{
		Proposals: proposals,
		PoolSize:  len(pool.Candidates),
		TimedOut:  timedOut,
	}, nil
}

// construct greedily builds one team: repeatedly add the candidate with the
// highest marginal objective gain, then run a bounded swap-improvement pass.
// Ties in marginal gain break by higher aggregate competency, then lower ID.
func (e *Engine) construct(ctx context.Context, ev *evaluator, pool Pool, k int, forced []string, banned map[string]struct{}, rng *rand.Rand, randomSeed bool) []string {
	team := make([]string, 0, k)
	inTeam := make(map[string]struct{}, k)
	add := func(id string) {
		team = append(team, id)
		inTeam[id] = struct{}{}
	}
	pinned := make(map[string]struct{}, len(forced))
	for _, id := range forced {
		if _, ok := inTeam[id]; !ok && len(team) < k {
			add(id)
			pinned[id] = struct{}{}
		}
	}

	available := func() []string {
		out := make([]string, 0, len(pool.Candidates))
		for _, p := range pool.Candidates {
			if _, taken := inTeam[p.ID]; taken {
				continue
			}
			if _, ban := banned[p.ID]; ban {
				continue
			}
			out = append(out, p.ID)
		}
		return out
	}

	// Diversification: non-primary restarts seed with a random candidate
	// so distinct local optima get explored.
	if randomSeed && len(team) < k {
		if avail := available(); len(avail) > 0 {
			add(avail[rng.Intn(len(avail))])
		}
	}

	for len(team) < k {
		if ctx.Err() != nil {
			return team // time budget spent; return best-so-far
		}
		avail := available()
		if len(avail) == 0 {
			break
		}

		current := ev.metrics(team).Objective
		best := ""
		bestGain := 0.0
		for _, id := range avail {
			gain := ev.metrics(append(team, id)).Objective - current
			switch {
			case best == "" || gain > bestGain+gainEpsilon:
				best, bestGain = id, gain
			case gain > bestGain-gainEpsilon && betterTieBreak(ev, id, best):
				best = id
			}
		}
		if best == "" || bestGain <= gainEpsilon {
			// No candidate improves the objective; emit what we have.
			break
		}
		add(best)
	}

	return e.improveBySwaps(ctx, ev, pool, team, inTeam, banned, pinned)
}

// improveBySwaps tries single-member swaps that raise the objective, for a
// bounded number of passes. Pinned members never leave the team.
func (e *Engine) improveBySwaps(ctx context.Context, ev *evaluator, pool Pool, team []string, inTeam, banned, pinned map[string]struct{}) []string {
	for iter := 0; iter < e.swapLimit; iter++ {
		if ctx.Err() != nil {
			return team
		}
		current := ev.metrics(team).Objective
		improved := false
		for pos := 0; pos < len(team) && !improved; pos++ {
			if _, pin := pinned[team[pos]]; pin {
				continue
			}
			for _, p := range pool.Candidates {
				if _, taken := inTeam[p.ID]; taken {
					continue
				}
				if _, ban := banned[p.ID]; ban {
					continue
				}
				trial := append([]string(nil), team...)
				out := trial[pos]
				trial[pos] = p.ID
				if ev.metrics(trial).Objective > current+gainEpsilon {
					delete(inTeam, out)
					inTeam[p.ID] = struct{}{}
					team = trial
					improved = true
					break
				}
			}
		}
		if !improved {
			break
		}
	}
	return team
}

// rank deduplicates restart outcomes, attaches metrics and coverage, and
// orders proposals best-first with deterministic tie-breaks.
func (e *Engine) rank(ev *evaluator, teams [][]string, k int) []model.TeamProposal {
	seen := make(map[string]struct{}, len(teams))
	proposals := make([]model.TeamProposal, 0, len(teams))

	for _, team := range teams {
		if len(team) == 0 {
			continue
		}
		key := memberKey(team)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		coverage, unmet := ev.coverageMap(team)
		proposals = append(proposals, model.TeamProposal{
			Members:  team,
			Metrics:  ev.metrics(team),
			Coverage: coverage,
			Unmet:    unmet,
			Partial:  len(unmet) > 0 || len(team) < k,
		})
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		if proposals[i].Metrics.Objective != proposals[j].Metrics.Objective {
			return proposals[i].Metrics.Objective > proposals[j].Metrics.Objective
		}
		if proposals[i].Metrics.Coverage != proposals[j].Metrics.Coverage {
			return proposals[i].Metrics.Coverage > proposals[j].Metrics.Coverage
		}
		return memberKey(proposals[i].Members) < memberKey(proposals[j].Members)
	})

	if len(proposals) > e.maxProposals {
		proposals = proposals[:e.maxProposals]
	}
	return proposals
}

// betterTieBreak orders equal-gain candidates by higher aggregate
// competency, then lower identifier, so construction is reproducible.
func betterTieBreak(ev *evaluator, a, b string) bool {
	if ev.aggregate[a] != ev.aggregate[b] {
		return ev.aggregate[a] > ev.aggregate[b]
	}
	return a < b
}

// memberKey is the canonical identity of a team regardless of pick order.
func memberKey(team []string) string {
	sorted := append([]string(nil), team...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// forcedSeed returns the deduplicated force-include list capped at k. Only
// persons present in the filtered pool are seated; an include naming someone
// unknown or excluded is silently unavailable rather than fabricated.
func forcedSeed(prefs model.Preferences, pool Pool, k int) []string {
	inPool := make(map[string]struct{}, len(pool.Candidates))
	for _, p := range pool.Candidates {
		inPool[p.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(prefs.Include))
	out := make([]string, 0, len(prefs.Include))
	for _, id := range prefs.Include {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := inPool[id]; !ok {
			continue
		}
		out = append(out, id)
		if len(out) == k {
			break
		}
	}
	return out
}

// requestSeed hashes the canonicalized request so restart seeds (and with
// them the ranked output) are reproducible for identical inputs.
func requestSeed(req Request) uint64 {
	h := fnv.New64a()
	skills := req.Requirements.Skills()
	sort.Strings(skills)
	for _, s := range skills {
		fmt.Fprintf(h, "%s=%.6f;", s, req.Requirements[s])
	}
	fmt.Fprintf(h, "profile=%s;k=%d;", req.Profile.Tag, req.K)

	include := append([]string(nil), req.Preferences.Include...)
	exclude := append([]string(nil), req.Preferences.Exclude...)
	sort.Strings(include)
	sort.Strings(exclude)
	fmt.Fprintf(h, "inc=%s;exc=%s;", strings.Join(include, ","), strings.Join(exclude, ","))

	overrides := make([]string, 0, len(req.Preferences.SkillWeights))
	for s := range req.Preferences.SkillWeights {
		overrides = append(overrides, s)
	}
	sort.Strings(overrides)
	for _, s := range overrides {
		fmt.Fprintf(h, "w:%s=%.6f;", s, req.Preferences.SkillWeights[s])
	}
	return h.Sum64()
}
