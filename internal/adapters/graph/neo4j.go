package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/pkg/logger"
	"github.com/chimera-hq/guardian/pkg/metrics"
)

// Neo4jStore persists the organization graph in Neo4j.
//
// Schema:
//
//	(p:Person {id, name, zone, access})
//	(s:Skill {name})
//	(p)-[:DEMONSTRATES {level, last_observed}]->(s)
//	(a)-[:COLLABORATED_WITH {common_projects, positive, conflict, frequency, recency}]->(b)
//	(p)-[:HAS_EVIDENCE]->(e:Evidence {uid, url, actor, type, source, raw, date})-[:ABOUT]->(s)
//
// Timestamps are stored as Unix epoch seconds; zero means absent.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logger.Logger
}

// NewNeo4jStore connects to the given bolt URI.
func NewNeo4jStore(ctx context.Context, uri, username, password string, opts ...Neo4jOption) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	s := &Neo4jStore{driver: driver, database: "neo4j"}
	for _, opt := range opts {
		opt(s)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s, nil
}

// Snapshot implements Store.
func (s *Neo4jStore) Snapshot(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	defer func() { metrics.RecordGraphQueryLatency(float64(time.Since(start).Milliseconds())) }()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var snap Snapshot

		res, err := tx.Run(ctx, `
			MATCH (p:Person)
			OPTIONAL MATCH (p)-[d:DEMONSTRATES]->(s:Skill)
			RETURN p.id AS id, p.name AS name, p.zone AS zone, p.access AS access,
			       collect({skill: s.name, level: d.level, last_observed: d.last_observed,
			                citations: [(p)-[:HAS_EVIDENCE]->(e:Evidence)-[:ABOUT]->(s)
			                            WHERE e.uid IN coalesce(d.citations, []) |
			                            {uid: e.uid, url: e.url, actor: e.actor, type: e.type,
			                             source: e.source, raw: e.raw, date: e.date}]}) AS comps
			ORDER BY id`, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			p := model.Person{
				ID:           asString(value(rec, "id")),
				Name:         asString(value(rec, "name")),
				Zone:         asString(value(rec, "zone")),
				Access:       asStrings(value(rec, "access")),
				Competencies: make(map[string]model.CompetencyRecord),
			}
			for _, raw := range asList(value(rec, "comps")) {
				if comp, ok := competencyFromMap(p.ID, raw); ok {
					p.Competencies[comp.Skill] = comp
				}
			}
			snap.Persons = append(snap.Persons, p)
		}

		res, err = tx.Run(ctx, `
			MATCH (a:Person)-[c:COLLABORATED_WITH]->(b:Person)
			RETURN a.id AS a, b.id AS b,
			       c.common_projects AS common_projects, c.positive AS positive,
			       c.conflict AS conflict, c.frequency AS frequency, c.recency AS recency`, nil)
		if err != nil {
			return nil, err
		}
		records, err = res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			snap.Edges = append(snap.Edges, model.CollaborationEdge{
				A:              asString(value(rec, "a")),
				B:              asString(value(rec, "b")),
				CommonProjects: int(asInt(value(rec, "common_projects"))),
				Positive:       int(asInt(value(rec, "positive"))),
				Conflict:       int(asInt(value(rec, "conflict"))),
				Frequency:      asFloat(value(rec, "frequency")),
				Recency:        asEpoch(value(rec, "recency")),
			})
		}
		return snap, nil
	})
	if err != nil {
		metrics.RecordGraphError()
		return Snapshot{}, s.mapErr("snapshot", err)
	}
	return out.(Snapshot), nil
}

// Person implements Store.
func (s *Neo4jStore) Person(ctx context.Context, personID string) (model.Person, error) {
	start := time.Now()
	defer func() { metrics.RecordGraphQueryLatency(float64(time.Since(start).Milliseconds())) }()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Person {id: $id})
			OPTIONAL MATCH (p)-[d:DEMONSTRATES]->(s:Skill)
			RETURN p.id AS id, p.name AS name, p.zone AS zone, p.access AS access,
			       collect({skill: s.name, level: d.level, last_observed: d.last_observed,
			                citations: [(p)-[:HAS_EVIDENCE]->(e:Evidence)-[:ABOUT]->(s)
			                            WHERE e.uid IN coalesce(d.citations, []) |
			                            {uid: e.uid, url: e.url, actor: e.actor, type: e.type,
			                             source: e.source, raw: e.raw, date: e.date}]}) AS comps`,
			map[string]any{"id": personID})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: person %q", ErrNotFound, personID)
		}
		p := model.Person{
			ID:           asString(value(rec, "id")),
			Name:         asString(value(rec, "name")),
			Zone:         asString(value(rec, "zone")),
			Access:       asStrings(value(rec, "access")),
			Competencies: make(map[string]model.CompetencyRecord),
		}
		for _, raw := range asList(value(rec, "comps")) {
			if comp, ok := competencyFromMap(p.ID, raw); ok {
				p.Competencies[comp.Skill] = comp
			}
		}
		return p, nil
	})
	if err != nil {
		metrics.RecordGraphError()
		return model.Person{}, s.mapErr("person", err)
	}
	return out.(model.Person), nil
}

// EvidenceFor implements Store.
func (s *Neo4jStore) EvidenceFor(ctx context.Context, personID, skill string) ([]model.Evidence, error) {
	start := time.Now()
	defer func() { metrics.RecordGraphQueryLatency(float64(time.Since(start).Milliseconds())) }()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Person {id: $person})-[:HAS_EVIDENCE]->(e:Evidence)-[:ABOUT]->(:Skill {name: $skill})
			RETURN e.uid AS uid, e.url AS url, e.actor AS actor, e.type AS type,
			       e.source AS source, e.raw AS raw, e.date AS date`,
			map[string]any{"person": personID, "skill": skill})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		trail := make([]model.Evidence, 0, len(records))
		for _, rec := range records {
			trail = append(trail, model.Evidence{
				UID:    asString(value(rec, "uid")),
				URL:    asString(value(rec, "url")),
				Actor:  asString(value(rec, "actor")),
				Type:   asString(value(rec, "type")),
				Source: asString(value(rec, "source")),
				Raw:    asString(value(rec, "raw")),
				Date:   asEpoch(value(rec, "date")),
			})
		}
		return trail, nil
	})
	if err != nil {
		metrics.RecordGraphError()
		return nil, s.mapErr("evidence_for", err)
	}
	return out.([]model.Evidence), nil
}

// UpsertCompetency implements Store.
func (s *Neo4jStore) UpsertCompetency(ctx context.Context, rec model.CompetencyRecord) error {
	start := time.Now()
	defer func() { metrics.RecordGraphWriteLatency(float64(time.Since(start).Milliseconds())) }()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	evidence := make([]map[string]any, 0, len(rec.Evidence))
	citations := make([]string, 0, len(rec.Evidence))
	for _, ev := range rec.Evidence {
		citations = append(citations, ev.UID)
		evidence = append(evidence, map[string]any{
			"uid":    ev.UID,
			"url":    ev.URL,
			"actor":  ev.Actor,
			"type":   ev.Type,
			"source": ev.Source,
			"raw":    ev.Raw,
			"date":   toEpoch(ev.Date),
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MERGE (p:Person {id: $person})
			MERGE (s:Skill {name: $skill})
			MERGE (p)-[d:DEMONSTRATES]->(s)
			SET d.level = $level, d.last_observed = $last_observed, d.citations = $citations
			WITH p, s
			UNWIND $evidence AS ev
			MERGE (e:Evidence {uid: ev.uid})
			SET e.url = ev.url, e.actor = ev.actor, e.type = ev.type,
			    e.source = ev.source, e.raw = ev.raw, e.date = ev.date
			MERGE (p)-[:HAS_EVIDENCE]->(e)
			MERGE (e)-[:ABOUT]->(s)`,
			map[string]any{
				"person":        rec.PersonID,
				"skill":         rec.Skill,
				"level":         rec.Level,
				"last_observed": toEpoch(rec.LastObserved),
				"citations":     citations,
				"evidence":      evidence,
			})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		metrics.RecordGraphError()
		return s.mapErr("upsert_competency", err)
	}
	return nil
}

// Ping implements Store.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close implements Store.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) mapErr(op string, err error) error {
	if neo4j.IsConnectivityError(err) {
		if s.logger != nil {
			s.logger.Warn(context.Background(), "graph backend unreachable",
				logger.String("op", op), logger.Error(err))
		}
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("graph %s: %w", op, err)
}

func value(rec *neo4j.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

// competencyFromMap rebuilds one competency record from the projected map,
// including the cited evidence hydrated from the citations list. A missing
// skill name (the OPTIONAL MATCH miss) yields ok=false.
func competencyFromMap(personID string, raw any) (model.CompetencyRecord, bool) {
	comp, ok := raw.(map[string]any)
	if !ok {
		return model.CompetencyRecord{}, false
	}
	skill := asString(comp["skill"])
	if skill == "" {
		return model.CompetencyRecord{}, false
	}
	rec := model.CompetencyRecord{
		PersonID:     personID,
		Skill:        skill,
		Level:        asFloat(comp["level"]),
		LastObserved: asEpoch(comp["last_observed"]),
	}
	for _, item := range asList(comp["citations"]) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rec.Evidence = append(rec.Evidence, model.Evidence{
			UID:    asString(m["uid"]),
			URL:    asString(m["url"]),
			Actor:  asString(m["actor"]),
			Type:   asString(m["type"]),
			Source: asString(m["source"]),
			Raw:    asString(m["raw"]),
			Date:   asEpoch(m["date"]),
		})
	}
	return rec, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func asEpoch(v any) time.Time {
	secs := asInt(v)
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

func toEpoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
