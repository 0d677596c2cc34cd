// Package team implements candidate filtering and score-guided team search.
package team

import (
	"sort"

	"github.com/chimera-hq/guardian/internal/domain/model"
)

// Pool is the outcome of hard-requirement filtering: the candidates able to
// cover at least one required skill, the per-skill qualifier index, and the
// requirements nobody qualifies for.
type Pool struct {
	// Candidates hold at least one required skill at or above its minimum,
	// sorted by ID for deterministic iteration.
	Candidates []model.Person

	// QualifiedFor maps each required skill to the sorted IDs of persons
	// holding it at or above the minimum. The hard gate: a member may only
	// ever be credited with covering a skill they appear under here.
	QualifiedFor map[string][]string

	// Unmet lists required skills with no qualifier at all, sorted.
	Unmet []string
}

// FilterCandidates applies the hard requirement gate to the person pool.
// Preferences are applied as constraints: excluded persons are removed
// before qualification, and force-included persons join the candidate set
// even without a qualifying skill (they still receive no coverage credit
// for skills they do not meet).
func FilterCandidates(pool []model.Person, req model.Requirements, prefs model.Preferences) Pool {
	excluded := make(map[string]struct{}, len(prefs.Exclude))
	for _, id := range prefs.Exclude {
		excluded[id] = struct{}{}
	}
	forced := make(map[string]struct{}, len(prefs.Include))
	for _, id := range prefs.Include {
		forced[id] = struct{}{}
	}

	qualifiedFor := make(map[string][]string, len(req))
	byID := make(map[string]model.Person, len(pool))
	picked := make(map[string]struct{})
	var candidates []model.Person

	for _, p := range pool {
		byID[p.ID] = p
		if _, skip := excluded[p.ID]; skip {
			continue
		}

		qualifies := false
		for skill, minLevel := range req {
			rec, ok := p.Competency(skill)
			if ok && rec.Level >= minLevel {
				qualifiedFor[skill] = append(qualifiedFor[skill], p.ID)
				qualifies = true
			}
		}
		if _, force := forced[p.ID]; qualifies || force {
			candidates = append(candidates, p)
			picked[p.ID] = struct{}{}
		}
	}

	// A forced include that is not in the pool at all cannot be seated;
	// it is silently unavailable rather than fabricated.
	for id := range forced {
		if _, ok := picked[id]; ok {
			continue
		}
		if p, ok := byID[id]; ok {
			if _, skip := excluded[id]; !skip {
				candidates = append(candidates, p)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	for skill := range qualifiedFor {
		sort.Strings(qualifiedFor[skill])
	}

	var unmet []string
	for skill := range req {
		if len(qualifiedFor[skill]) == 0 {
			unmet = append(unmet, skill)
		}
	}
	sort.Strings(unmet)

	return Pool{
		Candidates:   candidates,
		QualifiedFor: qualifiedFor,
		Unmet:        unmet,
	}
}
