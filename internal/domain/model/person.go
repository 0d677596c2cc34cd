// Package model contains domain models passed between layers.
package model

import "time"

// Access classification tags. A person may hold several.
const (
	AccessInternal = "internal"
	AccessExternal = "external"
)

// Person is a node in the talent graph together with its derived
// competency map. The map is produced by the competency estimator and is
// the only part of a Person this engine ever mutates.
type Person struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Access       []string                    `json:"access,omitempty"`
	Zone         string                      `json:"zone,omitempty"`
	Competencies map[string]CompetencyRecord `json:"-"`
}

// Competency returns the record for a skill, if present.
func (p Person) Competency(skill string) (CompetencyRecord, bool) {
	rec, ok := p.Competencies[skill]
	return rec, ok
}

// HasAccess reports whether the person carries the given access tag.
func (p Person) HasAccess(tag string) bool {
	for _, a := range p.Access {
		if a == tag {
			return true
		}
	}
	return false
}

// CollaborationEdge is an undirected collaboration-history edge between two
// persons. Read-only synergy signal; never mutated by this engine.
type CollaborationEdge struct {
	A              string    `json:"a"`
	B              string    `json:"b"`
	CommonProjects int       `json:"common_projects"`
	Positive       int       `json:"positive"`
	Conflict       int       `json:"conflict"`
	Frequency      float64   `json:"frequency"`
	Recency        time.Time `json:"recency"`
}

// Key returns the canonical pair key, independent of endpoint order.
func (e CollaborationEdge) Key() string {
	return PairKey(e.A, e.B)
}

// Other returns the opposite endpoint of id, or "" if id is not an endpoint.
func (e CollaborationEdge) Other(id string) string {
	switch id {
	case e.A:
		return e.B
	case e.B:
		return e.A
	}
	return ""
}

// ConflictRatio returns conflictive interactions as a fraction of all
// recorded interactions. Zero interactions yield zero.
func (e CollaborationEdge) ConflictRatio() float64 {
	total := e.Positive + e.Conflict
	if total == 0 {
		return 0
	}
	return float64(e.Conflict) / float64(total)
}

// PairKey builds the canonical undirected key for two person identifiers.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
