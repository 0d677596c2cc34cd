package risk

import (
	"context"
	"sort"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/pkg/logger"
)

// Linchpin is a person who is the sole qualified holder of one or more
// skills across the whole organization. Centrality is the person's
// normalized degree in the collaboration graph; a well-connected sole
// holder is harder to route around, so it feeds the severity.
type Linchpin struct {
	PersonID   string   `json:"person_id"`
	Name       string   `json:"name"`
	Skills     []string `json:"skills"`
	Degree     int      `json:"degree"`
	Centrality float64  `json:"centrality"`
	Severity   string   `json:"severity"`
}

// Linchpins scans the full roster for sole skill holders. A skill counts
// when exactly one person holds it at or above the qualifying level. The
// base severity grows with the number of skills resting on one person and
// escalates one rung when the holder is also a collaboration hub.
func (a *Analyzer) Linchpins(ctx context.Context, persons []model.Person, edges []model.CollaborationEdge) []Linchpin {
	holders := make(map[string][]string)
	names := make(map[string]string, len(persons))
	for _, p := range persons {
		names[p.ID] = p.Name
		for skill, rec := range p.Competencies {
			if rec.Level >= a.linchpinLevel {
				holders[skill] = append(holders[skill], p.ID)
			}
		}
	}

	degrees := make(map[string]int)
	for _, e := range edges {
		degrees[e.A]++
		degrees[e.B]++
	}

	soleSkills := make(map[string][]string)
	for skill, ids := range holders {
		if len(ids) == 1 {
			soleSkills[ids[0]] = append(soleSkills[ids[0]], skill)
		}
	}

	out := make([]Linchpin, 0, len(soleSkills))
	for id, skills := range soleSkills {
		sort.Strings(skills)
		degree := degrees[id]
		var centrality float64
		if len(persons) > 1 {
			centrality = float64(degree) / float64(len(persons)-1)
		}
		out = append(out, Linchpin{
			PersonID:   id,
			Name:       names[id],
			Skills:     skills,
			Degree:     degree,
			Centrality: centrality,
			Severity:   linchpinSeverity(len(skills), centrality),
		})
	}

	// Highest severity first, then widest exposure, ID breaks ties.
	sort.Slice(out, func(i, j int) bool {
		if severityRank[out[i].Severity] != severityRank[out[j].Severity] {
			return severityRank[out[i].Severity] > severityRank[out[j].Severity]
		}
		if len(out[i].Skills) != len(out[j].Skills) {
			return len(out[i].Skills) > len(out[j].Skills)
		}
		return out[i].PersonID < out[j].PersonID
	})

	if len(out) > 0 && a.logger != nil {
		a.logger.Debug(ctx, "linchpins detected", logger.Int("count", len(out)))
	}
	return out
}

// hubCentrality is the normalized degree a sole holder must exceed to
// count as a collaboration hub.
const hubCentrality = 0.5

var severityRank = map[string]int{
	model.SeverityLow:    0,
	model.SeverityMedium: 1,
	model.SeverityHigh:   2,
}

// linchpinSeverity maps exposure width to a severity rung, escalated one
// rung for collaboration hubs.
func linchpinSeverity(skillCount int, centrality float64) string {
	rung := 0
	switch {
	case skillCount >= 3:
		rung = 2
	case skillCount == 2:
		rung = 1
	}
	if centrality > hubCentrality && rung < 2 {
		rung++
	}
	switch rung {
	case 2:
		return model.SeverityHigh
	case 1:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
