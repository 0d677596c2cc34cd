// Package competency derives bounded competency levels from raw evidence.
package competency

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/pkg/logger"
)

// Default estimator constants. All of them are policy choices surfaced as
// options; the defaults give evidence a half-life of roughly 90 days.
const (
	defaultDecayRatePerDay   = 0.0077
	defaultSaturationK       = 0.35
	defaultCitationThreshold = 0.05
	defaultEvidenceWeight    = 0.25

	hoursPerDay = 24
)

// Estimator turns the full evidence set for a (person, skill) pair into a
// CompetencyRecord. Estimate is a pure function of its inputs, which makes
// recomputation idempotent and race-free by construction: callers replace
// the previous record wholesale.
type Estimator struct {
	decayRatePerDay   float64
	saturationK       float64
	citationThreshold float64
	typeWeights       map[string]float64
	defaultWeight     float64

	logger logger.Logger
}

// New creates an Estimator with the given options.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		decayRatePerDay:   defaultDecayRatePerDay,
		saturationK:       defaultSaturationK,
		citationThreshold: defaultCitationThreshold,
		typeWeights: map[string]float64{
			model.EvidenceMerge:   1.0,
			model.EvidenceCommit:  1.0,
			model.EvidenceReview:  0.6,
			model.EvidenceIssue:   0.5,
			model.EvidenceComment: 0.25,
		},
		defaultWeight: defaultEvidenceWeight,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// contribution pairs an evidence item with its decayed weight.
type contribution struct {
	evidence model.Evidence
	weight   float64
}

// Estimate computes the competency record for one (person, skill) pair as of
// asOf. An empty or fully-malformed evidence list yields ErrNoEvidence: the
// engine never emits zero-evidence claims.
//
// Each usable item contributes base_weight(type) * exp(-decay * elapsed_days);
// the sum is mapped through 1 - exp(-k * sum) to land in [0,1]. Items whose
// decayed contribution falls below the citation threshold are excluded from
// the justification set to keep dossiers readable.
func (e *Estimator) Estimate(ctx context.Context, personID, skill string, evidence []model.Evidence, asOf time.Time) (model.CompetencyRecord, error) {
	if len(evidence) == 0 {
		return model.CompetencyRecord{}, ErrNoEvidence
	}

	contributions := make([]contribution, 0, len(evidence))
	var sum float64
	var lastObserved time.Time

	for _, ev := range evidence {
		if ev.Date.IsZero() {
			// Malformed or missing timestamp: exclude, log, continue.
			if e.logger != nil {
				e.logger.Warn(ctx, "evidence without usable timestamp excluded",
					logger.String("uid", ev.UID),
					logger.String("person", personID),
					logger.String("skill", skill),
				)
			}
			continue
		}

		elapsedDays := asOf.Sub(ev.Date).Hours() / hoursPerDay
		if elapsedDays < 0 {
			// Clock skew between trackers; treat as fresh rather than
			// letting a future timestamp inflate the level.
			elapsedDays = 0
		}

		w := e.typeWeight(ev.Type) * math.Exp(-e.decayRatePerDay*elapsedDays)
		sum += w
		contributions = append(contributions, contribution{evidence: ev, weight: w})

		if ev.Date.After(lastObserved) {
			lastObserved = ev.Date
		}
	}

	if len(contributions) == 0 {
		return model.CompetencyRecord{}, ErrNoEvidence
	}

	level := 1 - math.Exp(-e.saturationK*sum)

	citations := make([]model.Evidence, 0, len(contributions))
	for _, c := range contributions {
		if c.weight >= e.citationThreshold {
			citations = append(citations, c.evidence)
		}
	}
	// Most recent first; UID breaks date ties so recomputation is
	// bit-identical regardless of input order.
	sort.SliceStable(citations, func(i, j int) bool {
		if !citations[i].Date.Equal(citations[j].Date) {
			return citations[i].Date.After(citations[j].Date)
		}
		return citations[i].UID < citations[j].UID
	})

	return model.CompetencyRecord{
		PersonID:     personID,
		Skill:        skill,
		Level:        level,
		LastObserved: lastObserved,
		Evidence:     citations,
	}, nil
}

func (e *Estimator) typeWeight(evidenceType string) float64 {
	if w, ok := e.typeWeights[evidenceType]; ok {
		return w
	}
	return e.defaultWeight
}
