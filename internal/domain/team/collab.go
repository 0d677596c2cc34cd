package team

import (
	"math"
	"time"

	"github.com/chimera-hq/guardian/internal/domain/model"
)

// Edge freshness constants: edges observed within freshEdgeWindow count at
// full strength, older ones decay linearly down to the floor.
const (
	freshEdgeWindow   = 90 * 24 * time.Hour
	edgeDecaySpanDays = 365.0
	edgeFreshnessMin  = 0.2

	// Empirical upper bound of a single edge strength, used to normalize
	// team cohesion into [0,1].
	maxEdgeStrength = 10.0
)

// Collab is a read-only index over collaboration edges for one search.
type Collab struct {
	edges map[string]model.CollaborationEdge
}

// NewCollab indexes edges by canonical pair key. Duplicate pairs keep the
// last edge seen.
func NewCollab(edges []model.CollaborationEdge) *Collab {
	c := &Collab{edges: make(map[string]model.CollaborationEdge, len(edges))}
	for _, e := range edges {
		c.edges[e.Key()] = e
	}
	return c
}

// Edge returns the edge between two persons, if any.
func (c *Collab) Edge(a, b string) (model.CollaborationEdge, bool) {
	e, ok := c.edges[model.PairKey(a, b)]
	return e, ok
}

// Strength scores one pair's collaboration signal:
// max(0, positive - 2*conflict) * ln(1 + frequency + 1) * freshness.
// Conflictive history is penalized twice as hard as positive history helps,
// and stale edges fade toward the freshness floor.
func (c *Collab) Strength(a, b string, asOf time.Time) float64 {
	e, ok := c.Edge(a, b)
	if !ok {
		return 0
	}

	base := float64(e.Positive - 2*e.Conflict)
	if base < 0 {
		base = 0
	}

	freshness := 1.0
	if !e.Recency.IsZero() {
		age := asOf.Sub(e.Recency)
		if age > freshEdgeWindow {
			days := age.Hours() / 24
			freshness = math.Max(edgeFreshnessMin, 1-days/edgeDecaySpanDays)
		}
	}

	return base * math.Log(1+e.Frequency+1) * freshness
}
