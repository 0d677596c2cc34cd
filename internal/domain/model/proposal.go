package model

import "time"

// Requirements maps each required skill to its minimum acceptable level.
type Requirements map[string]float64

// Skills returns the required skill names in unspecified order.
func (r Requirements) Skills() []string {
	out := make([]string, 0, len(r))
	for s := range r {
		out = append(out, s)
	}
	return out
}

// Preferences are caller-supplied overrides applied before search.
type Preferences struct {
	Include      []string           `json:"include,omitempty"`
	Exclude      []string           `json:"exclude,omitempty"`
	SkillWeights map[string]float64 `json:"skill_weights,omitempty"`
}

// Metrics are the scoring components of one proposal. All values are in
// [0,1] except Objective, which is the weighted combination used for ranking.
type Metrics struct {
	Coverage   float64 `json:"coverage"`
	Synergy    float64 `json:"synergy"`
	Experience float64 `json:"experience"`
	SPOFRisk   float64 `json:"spof_risk"`
	Objective  float64 `json:"objective"`
}

// Risk finding types.
const (
	RiskSinglePointOfFailure = "single_point_of_failure"
	RiskAdversarialHistory   = "adversarial_history"
	RiskAccessMismatch       = "access_mismatch"
	RiskZoneFriction         = "zone_friction"
	RiskStaleCompetency      = "stale_competency"
)

// Risk severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Risk is a structural weakness in a proposal, surfaced for human review.
// Risks are advisory; they never block a proposal.
type Risk struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// TeamProposal is a transient search result. Members are listed in selection
// order; Coverage credits each required skill with the members qualified to
// cover it at or above the required minimum.
type TeamProposal struct {
	Members  []string            `json:"members"`
	Metrics  Metrics             `json:"metrics"`
	Coverage map[string][]string `json:"coverage"`
	Unmet    []string            `json:"unmet,omitempty"`
	Partial  bool                `json:"partial"`
	Risks    []Risk              `json:"risks,omitempty"`
}

// Justification cites the evidence behind one member's claim on one skill.
type Justification struct {
	PersonID string     `json:"person_id"`
	Skill    string     `json:"skill"`
	Level    float64    `json:"level"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// MemberSummary annotates one proposal member for presentation.
type MemberSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Zone           string   `json:"zone,omitempty"`
	Covers         []string `json:"covers"`
	AggregateLevel float64  `json:"aggregate_level"`
}

// Dossier is the externally visible artifact for one proposal: metrics,
// risks, annotated members, and per-member per-skill evidence citations.
type Dossier struct {
	ProposalID     string          `json:"proposal_id"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Members        []MemberSummary `json:"members"`
	Metrics        Metrics         `json:"metrics"`
	Risks          []Risk          `json:"risks"`
	Justifications []Justification `json:"justifications"`
	Partial        bool            `json:"partial"`
	Unmet          []string        `json:"unmet,omitempty"`
}
