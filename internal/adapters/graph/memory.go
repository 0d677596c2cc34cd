package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chimera-hq/guardian/internal/domain/model"
)

// MemoryStore is an in-process Store used for development and tests. All
// reads return deep copies so callers can never mutate shared state.
type MemoryStore struct {
	mu       sync.RWMutex
	persons  map[string]model.Person
	edges    map[string]model.CollaborationEdge
	evidence map[string][]model.Evidence
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		persons:  make(map[string]model.Person),
		edges:    make(map[string]model.CollaborationEdge),
		evidence: make(map[string][]model.Evidence),
	}
}

// PutPerson inserts or replaces a person.
func (s *MemoryStore) PutPerson(p model.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons[p.ID] = copyPerson(p)
}

// PutEdge inserts or replaces a collaboration edge.
func (s *MemoryStore) PutEdge(e model.CollaborationEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[e.Key()] = e
}

// PutEvidence appends evidence to the (person, skill) trail.
func (s *MemoryStore) PutEvidence(personID, skill string, ev ...model.Evidence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := personID + "|" + skill
	s.evidence[key] = append(s.evidence[key], ev...)
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Persons: make([]model.Person, 0, len(s.persons)),
		Edges:   make([]model.CollaborationEdge, 0, len(s.edges)),
	}
	for _, p := range s.persons {
		snap.Persons = append(snap.Persons, copyPerson(p))
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, e)
	}
	sort.Slice(snap.Persons, func(i, j int) bool { return snap.Persons[i].ID < snap.Persons[j].ID })
	sort.Slice(snap.Edges, func(i, j int) bool { return snap.Edges[i].Key() < snap.Edges[j].Key() })
	return snap, nil
}

// Person implements Store.
func (s *MemoryStore) Person(_ context.Context, personID string) (model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[personID]
	if !ok {
		return model.Person{}, fmt.Errorf("%w: person %q", ErrNotFound, personID)
	}
	return copyPerson(p), nil
}

// EvidenceFor implements Store.
func (s *MemoryStore) EvidenceFor(_ context.Context, personID, skill string) ([]model.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.persons[personID]; !ok {
		return nil, fmt.Errorf("%w: person %q", ErrNotFound, personID)
	}
	trail := s.evidence[personID+"|"+skill]
	return append([]model.Evidence(nil), trail...), nil
}

// UpsertCompetency implements Store.
func (s *MemoryStore) UpsertCompetency(_ context.Context, rec model.CompetencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.persons[rec.PersonID]
	if !ok {
		return fmt.Errorf("%w: person %q", ErrNotFound, rec.PersonID)
	}
	if p.Competencies == nil {
		p.Competencies = make(map[string]model.CompetencyRecord)
	}
	p.Competencies[rec.Skill] = copyRecord(rec)
	s.persons[rec.PersonID] = p
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

func copyPerson(p model.Person) model.Person {
	out := p
	out.Access = append([]string(nil), p.Access...)
	if p.Competencies != nil {
		out.Competencies = make(map[string]model.CompetencyRecord, len(p.Competencies))
		for skill, rec := range p.Competencies {
			out.Competencies[skill] = copyRecord(rec)
		}
	}
	return out
}

func copyRecord(rec model.CompetencyRecord) model.CompetencyRecord {
	out := rec
	out.Evidence = append([]model.Evidence(nil), rec.Evidence...)
	return out
}
