// Package graph provides persistence for the organization graph: persons,
// skills, collaboration edges, evidence, and derived competency records.
package graph

import (
	"context"

	"github.com/chimera-hq/guardian/internal/domain/model"
)

// Snapshot is a consistent read of the organization graph. Search operates
// on snapshots only; live graph state never leaks into a running search.
type Snapshot struct {
	Persons []model.Person
	Edges   []model.CollaborationEdge
}

// Store is the persistence port for the organization graph.
type Store interface {
	// Snapshot reads the full roster with competencies and collaboration
	// edges.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Person reads a single person with competencies.
	Person(ctx context.Context, personID string) (model.Person, error)

	// EvidenceFor reads the raw evidence trail behind one (person, skill)
	// pair, unordered.
	EvidenceFor(ctx context.Context, personID, skill string) ([]model.Evidence, error)

	// UpsertCompetency replaces the derived record for its (person, skill)
	// pair wholesale.
	UpsertCompetency(ctx context.Context, rec model.CompetencyRecord) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close(ctx context.Context) error
}
