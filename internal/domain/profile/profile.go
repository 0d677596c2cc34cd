// Package profile defines mission profiles: named weighting policies that
// alter how coverage, synergy, and risk are scored during team search.
//
// The weighting table is an explicit configuration object threaded through
// the search and the risk analyzer; nothing in the engine consults a global.
package profile

import (
	"fmt"
	"sort"
)

// Built-in profile tags.
const (
	TagMaintenance = "maintenance"
	TagGreenfield  = "greenfield"
	TagDelivery    = "delivery"
)

// Profile is one mission weighting policy. Factors multiply the engine's
// base objective weights; 1.0 is neutral.
type Profile struct {
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Description string `json:"description"`

	ExperienceFactor float64 `json:"experience_factor"`
	SynergyFactor    float64 `json:"synergy_factor"`
	SPOFFactor       float64 `json:"spof_factor"`

	// SkillWeightOverrides up- or down-weights individual skills in the
	// coverage term. Caller preferences stack on top of these.
	SkillWeightOverrides map[string]float64 `json:"skill_weight_overrides,omitempty"`

	// InternalOnly marks missions that must not include external-only
	// members; violations surface as access-mismatch risks.
	InternalOnly bool `json:"internal_only"`

	// SingleZone marks missions where spanning zones is known to create
	// coordination friction; violations surface as zone-friction risks.
	SingleZone bool `json:"single_zone"`
}

// Registry holds the known profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range builtins() {
		r.profiles[p.Tag] = p
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) error {
	if p.Tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidProfile)
	}
	r.profiles[p.Tag] = p
	return nil
}

// Get returns the profile for a tag.
func (r *Registry) Get(tag string) (Profile, error) {
	p, ok := r.profiles[tag]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, tag)
	}
	return p, nil
}

// Valid reports whether tag names a registered profile.
func (r *Registry) Valid(tag string) bool {
	_, ok := r.profiles[tag]
	return ok
}

// List returns all profiles ordered by tag.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func builtins() []Profile {
	return []Profile{
		{
			Tag:              TagMaintenance,
			Name:             "Maintenance",
			Description:      "Stability and reliability over speed; favors proven expertise and penalizes fragile coverage.",
			ExperienceFactor: 1.5,
			SynergyFactor:    0.5,
			SPOFFactor:       1.3,
			InternalOnly:     true,
			SingleZone:       false,
		},
		{
			Tag:              TagGreenfield,
			Name:             "Greenfield",
			Description:      "Experimentation and learning; breadth over depth, synergy valued for knowledge sharing.",
			ExperienceFactor: 0.8,
			SynergyFactor:    1.2,
			SPOFFactor:       0.6,
			InternalOnly:     false,
			SingleZone:       false,
		},
		{
			Tag:              TagDelivery,
			Name:             "Fast Delivery",
			Description:      "Speed through proven collaboration; past synergy dominates the objective.",
			ExperienceFactor: 1.0,
			SynergyFactor:    2.0,
			SPOFFactor:       1.0,
			InternalOnly:     false,
			SingleZone:       true,
		},
	}
}
