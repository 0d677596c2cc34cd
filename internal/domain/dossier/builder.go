// Package dossier turns ranked proposals into evidence-backed artifacts
// ready for human review.
package dossier

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/pkg/logger"
)

// Builder assembles dossiers. Building is read-only over the roster; the
// same proposal always yields the same content apart from the generated ID
// and timestamp.
type Builder struct {
	citationsPerSkill int
	now               func() time.Time

	logger logger.Logger
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		citationsPerSkill: 3,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the dossier for one proposal. Every claimed coverage entry
// is justified with the freshest evidence citations behind it; a proposal
// referencing a person missing from the roster is inconsistent and fails.
func (b *Builder) Build(ctx context.Context, proposal model.TeamProposal, persons map[string]model.Person) (model.Dossier, error) {
	members := make([]model.MemberSummary, 0, len(proposal.Members))
	covers := make(map[string][]string, len(proposal.Members))

	skills := make([]string, 0, len(proposal.Coverage))
	for skill := range proposal.Coverage {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	for _, skill := range skills {
		for _, id := range proposal.Coverage[skill] {
			covers[id] = append(covers[id], skill)
		}
	}

	var justifications []model.Justification
	for _, id := range proposal.Members {
		p, ok := persons[id]
		if !ok {
			return model.Dossier{}, fmt.Errorf("%w: member %q not in roster", ErrInconsistent, id)
		}

		var sum float64
		for _, skill := range covers[id] {
			rec, ok := p.Competency(skill)
			if !ok {
				return model.Dossier{}, fmt.Errorf("%w: %q credited with %s without a competency record", ErrInconsistent, id, skill)
			}
			sum += rec.Level
			justifications = append(justifications, model.Justification{
				PersonID: id,
				Skill:    skill,
				Level:    rec.Level,
				Evidence: b.citations(rec.Evidence),
			})
		}

		var aggregate float64
		if n := len(covers[id]); n > 0 {
			aggregate = sum / float64(n)
		}
		members = append(members, model.MemberSummary{
			ID:             id,
			Name:           p.Name,
			Zone:           p.Zone,
			Covers:         covers[id],
			AggregateLevel: aggregate,
		})
	}

	sort.Slice(justifications, func(i, j int) bool {
		if justifications[i].PersonID != justifications[j].PersonID {
			return justifications[i].PersonID < justifications[j].PersonID
		}
		return justifications[i].Skill < justifications[j].Skill
	})

	d := model.Dossier{
		ProposalID:     uuid.NewString(),
		GeneratedAt:    b.now().UTC(),
		Members:        members,
		Metrics:        proposal.Metrics,
		Risks:          proposal.Risks,
		Justifications: justifications,
		Partial:        proposal.Partial,
		Unmet:          proposal.Unmet,
	}

	if b.logger != nil {
		b.logger.Debug(ctx, "dossier assembled",
			logger.String("proposal_id", d.ProposalID),
			logger.Int("members", len(members)),
			logger.Int("justifications", len(justifications)))
	}
	return d, nil
}

// citations returns the freshest evidence first, capped at the configured
// count. Date descending, UID ascending on equal dates.
func (b *Builder) citations(evidence []model.Evidence) []model.Evidence {
	sorted := append([]model.Evidence(nil), evidence...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].UID < sorted[j].UID
	})
	if len(sorted) > b.citationsPerSkill {
		sorted = sorted[:b.citationsPerSkill]
	}
	return sorted
}
