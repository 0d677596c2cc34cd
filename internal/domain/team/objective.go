package team

import (
	"time"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
)

// redundancyBlend controls how much of the coverage term rewards redundant
// coverage (up to the configured redundancy target) versus first coverage.
const redundancyBlend = 0.25

// Weights are the base objective weights before profile factors apply.
type Weights struct {
	Coverage   float64
	Synergy    float64
	SPOF       float64
	Experience float64
}

// evaluator scores candidate teams against one request. It is built once
// per search and shared read-only across restarts.
type evaluator struct {
	req          model.Requirements
	prof         profile.Profile
	weights      Weights
	redundancy   int
	skillWeights map[string]float64
	collab       *Collab
	asOf         time.Time

	// quals maps person -> skill -> level for qualifying skills only.
	quals     map[string]map[string]float64
	aggregate map[string]float64
}

func newEvaluator(pool Pool, req model.Requirements, prof profile.Profile, prefs model.Preferences, collab *Collab, weights Weights, redundancy int, asOf time.Time) *evaluator {
	ev := &evaluator{
		req:          req,
		prof:         prof,
		weights:      weights,
		redundancy:   redundancy,
		skillWeights: make(map[string]float64, len(req)),
		collab:       collab,
		asOf:         asOf,
		quals:        make(map[string]map[string]float64, len(pool.Candidates)),
		aggregate:    make(map[string]float64, len(pool.Candidates)),
	}

	// Per-skill weights: profile overrides first, caller preferences on top.
	for skill := range req {
		w := 1.0
		if o, ok := prof.SkillWeightOverrides[skill]; ok && o > 0 {
			w = o
		}
		if o, ok := prefs.SkillWeights[skill]; ok && o > 0 {
			w *= o
		}
		ev.skillWeights[skill] = w
	}

	for _, p := range pool.Candidates {
		quals := make(map[string]float64)
		var sum float64
		for skill, minLevel := range req {
			if rec, ok := p.Competency(skill); ok && rec.Level >= minLevel {
				quals[skill] = rec.Level
				sum += rec.Level
			}
		}
		ev.quals[p.ID] = quals
		if len(quals) > 0 {
			ev.aggregate[p.ID] = sum / float64(len(quals))
		}
	}

	return ev
}

// covers reports whether person id qualifies for skill.
func (ev *evaluator) covers(id, skill string) bool {
	_, ok := ev.quals[id][skill]
	return ok
}

// metrics scores one team. All component scores land in [0,1]; Objective is
// the profile-weighted combination used for ranking and greedy gain.
func (ev *evaluator) metrics(team []string) model.Metrics {
	var m model.Metrics
	if len(ev.req) == 0 {
		return m
	}

	// Coverage and SPOF over required skills.
	var weightSum, coveredW, redundantW float64
	var spofCount int
	for skill := range ev.req {
		w := ev.skillWeights[skill]
		weightSum += w

		count := 0
		for _, id := range team {
			if ev.covers(id, skill) {
				count++
			}
		}
		if count > 0 {
			coveredW += w
		}
		if count == 1 {
			spofCount++
		}
		capped := count
		if capped > ev.redundancy {
			capped = ev.redundancy
		}
		redundantW += w * float64(capped) / float64(ev.redundancy)
	}
	m.Coverage = coveredW / weightSum
	redundancy := redundantW / weightSum
	m.SPOFRisk = float64(spofCount) / float64(len(ev.req))

	// Experience: mean qualifying level of the members.
	if len(team) > 0 {
		var sum float64
		for _, id := range team {
			sum += ev.aggregate[id]
		}
		m.Experience = sum / float64(len(team))
	}

	// Synergy: pairwise collaboration strength normalized by the number of
	// pairs and the empirical per-edge maximum.
	if len(team) > 1 {
		var strength float64
		for i := 0; i < len(team); i++ {
			for j := i + 1; j < len(team); j++ {
				strength += ev.collab.Strength(team[i], team[j], ev.asOf)
			}
		}
		pairs := float64(len(team)*(len(team)-1)) / 2
		synergy := strength / (pairs * maxEdgeStrength)
		if synergy > 1 {
			synergy = 1
		}
		m.Synergy = synergy
	}

	coverageTerm := (1-redundancyBlend)*m.Coverage + redundancyBlend*redundancy
	m.Objective = ev.weights.Coverage*coverageTerm +
		ev.weights.Synergy*ev.prof.SynergyFactor*m.Synergy +
		ev.weights.Experience*ev.prof.ExperienceFactor*m.Experience -
		ev.weights.SPOF*ev.prof.SPOFFactor*m.SPOFRisk

	return m
}

// coverageMap credits each required skill with the team members qualified
// to cover it, and returns the skills left uncovered by this team.
func (ev *evaluator) coverageMap(team []string) (map[string][]string, []string) {
	coverage := make(map[string][]string, len(ev.req))
	var unmet []string
	for skill := range ev.req {
		var covering []string
		for _, id := range team {
			if ev.covers(id, skill) {
				covering = append(covering, id)
			}
		}
		coverage[skill] = covering
		if len(covering) == 0 {
			unmet = append(unmet, skill)
		}
	}
	return coverage, unmet
}
