// Package risk inspects proposals and the whole organization for
// structural weaknesses: concentration, friction, access and staleness.
package risk

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
	"github.com/chimera-hq/guardian/pkg/logger"
	"github.com/chimera-hq/guardian/pkg/metrics"
)

// Analyzer flags structural risks on team proposals. Analysis is advisory:
// findings never veto a proposal, they travel with it.
type Analyzer struct {
	conflictRatioThreshold float64
	severeConflictRatio    float64
	freshnessWindow        time.Duration
	linchpinLevel          float64

	logger logger.Logger
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		conflictRatioThreshold: 0.5,
		severeConflictRatio:    0.75,
		freshnessWindow:        180 * 24 * time.Hour,
		linchpinLevel:          0.5,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze inspects one proposal against the roster and the collaboration
// edges. Findings come back sorted by type then description so output is
// stable for identical inputs.
func (a *Analyzer) Analyze(ctx context.Context, proposal model.TeamProposal, persons map[string]model.Person, edges []model.CollaborationEdge, prof profile.Profile, asOf time.Time) []model.Risk {
	var risks []model.Risk

	risks = append(risks, a.singlePointsOfFailure(proposal)...)
	risks = append(risks, a.adversarialPairs(proposal, edges)...)
	risks = append(risks, a.accessMismatches(proposal, persons, prof)...)
	risks = append(risks, a.zoneFriction(proposal, persons, prof)...)
	risks = append(risks, a.staleCompetencies(proposal, persons, asOf)...)

	sort.Slice(risks, func(i, j int) bool {
		if risks[i].Type != risks[j].Type {
			return risks[i].Type < risks[j].Type
		}
		return risks[i].Description < risks[j].Description
	})

	for _, r := range risks {
		metrics.RecordRiskFlagged(r.Type, r.Severity)
	}
	if len(risks) > 0 && a.logger != nil {
		a.logger.Debug(ctx, "proposal risks flagged",
			logger.Int("count", len(risks)),
			logger.Int("members", len(proposal.Members)))
	}
	return risks
}

// singlePointsOfFailure flags skills held by exactly one member. Sole
// coverage is always high severity; a holder who is the only cover for
// several skills gets that breadth noted in the description.
func (a *Analyzer) singlePointsOfFailure(proposal model.TeamProposal) []model.Risk {
	soleCount := make(map[string]int)
	for _, covering := range proposal.Coverage {
		if len(covering) == 1 {
			soleCount[covering[0]]++
		}
	}

	skills := make([]string, 0, len(proposal.Coverage))
	for skill := range proposal.Coverage {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	var risks []model.Risk
	for _, skill := range skills {
		covering := proposal.Coverage[skill]
		if len(covering) != 1 {
			continue
		}
		holder := covering[0]
		desc := fmt.Sprintf("%s is the only member covering %s", holder, skill)
		if n := soleCount[holder]; n >= 2 {
			desc = fmt.Sprintf("%s (sole cover for %d required skills)", desc, n)
		}
		risks = append(risks, model.Risk{
			Type:        model.RiskSinglePointOfFailure,
			Severity:    model.SeverityHigh,
			Description: desc,
		})
	}
	return risks
}

// adversarialPairs flags member pairs whose shared history is dominated by
// conflict.
func (a *Analyzer) adversarialPairs(proposal model.TeamProposal, edges []model.CollaborationEdge) []model.Risk {
	inTeam := make(map[string]struct{}, len(proposal.Members))
	for _, id := range proposal.Members {
		inTeam[id] = struct{}{}
	}

	var risks []model.Risk
	for _, e := range edges {
		if _, ok := inTeam[e.A]; !ok {
			continue
		}
		if _, ok := inTeam[e.B]; !ok {
			continue
		}
		ratio := e.ConflictRatio()
		if e.Conflict == 0 || ratio < a.conflictRatioThreshold {
			continue
		}
		severity := model.SeverityMedium
		if ratio >= a.severeConflictRatio {
			severity = model.SeverityHigh
		}
		risks = append(risks, model.Risk{
			Type:     model.RiskAdversarialHistory,
			Severity: severity,
			Description: fmt.Sprintf("%s and %s share a conflict-heavy history (ratio %.2f)",
				minID(e.A, e.B), maxID(e.A, e.B), ratio),
		})
	}
	return risks
}

// accessMismatches flags members who lack internal access on profiles that
// demand it.
func (a *Analyzer) accessMismatches(proposal model.TeamProposal, persons map[string]model.Person, prof profile.Profile) []model.Risk {
	if !prof.InternalOnly {
		return nil
	}
	var risks []model.Risk
	for _, id := range proposal.Members {
		p, ok := persons[id]
		if !ok || p.HasAccess(model.AccessInternal) {
			continue
		}
		risks = append(risks, model.Risk{
			Type:        model.RiskAccessMismatch,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("%s lacks internal access required by the %s profile", id, prof.Tag),
		})
	}
	return risks
}

// zoneFriction flags geographic spread at medium severity: any spread on a
// single-zone profile, or spread across more than two zones otherwise.
func (a *Analyzer) zoneFriction(proposal model.TeamProposal, persons map[string]model.Person, prof profile.Profile) []model.Risk {
	zones := make(map[string]struct{})
	for _, id := range proposal.Members {
		if p, ok := persons[id]; ok && p.Zone != "" {
			zones[p.Zone] = struct{}{}
		}
	}
	if len(zones) <= 1 {
		return nil
	}

	names := make([]string, 0, len(zones))
	for z := range zones {
		names = append(names, z)
	}
	sort.Strings(names)

	if prof.SingleZone {
		return []model.Risk{{
			Type:        model.RiskZoneFriction,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("members span zones %v but the %s profile demands one zone", names, prof.Tag),
		}}
	}
	if len(zones) > 2 {
		return []model.Risk{{
			Type:        model.RiskZoneFriction,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("members span %d zones %v", len(zones), names),
		}}
	}
	return nil
}

// staleCompetencies flags coverage resting on competency records whose
// evidence trail has gone quiet.
func (a *Analyzer) staleCompetencies(proposal model.TeamProposal, persons map[string]model.Person, asOf time.Time) []model.Risk {
	skills := make([]string, 0, len(proposal.Coverage))
	for skill := range proposal.Coverage {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	var risks []model.Risk
	for _, skill := range skills {
		for _, id := range proposal.Coverage[skill] {
			p, ok := persons[id]
			if !ok {
				continue
			}
			rec, ok := p.Competency(skill)
			if !ok || rec.LastObserved.IsZero() {
				continue
			}
			age := asOf.Sub(rec.LastObserved)
			if age <= a.freshnessWindow {
				continue
			}
			risks = append(risks, model.Risk{
				Type:     model.RiskStaleCompetency,
				Severity: model.SeverityLow,
				Description: fmt.Sprintf("%s last demonstrated %s %d days ago",
					id, skill, int(age.Hours()/24)),
			})
		}
	}
	return risks
}

func minID(a, b string) string {
	if a < b {
		return a
	}
	return b
}

func maxID(a, b string) string {
	if a < b {
		return b
	}
	return a
}
