package team

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func person(id string, zone string, skills map[string]float64) model.Person {
	comps := make(map[string]model.CompetencyRecord, len(skills))
	for skill, level := range skills {
		comps[skill] = model.CompetencyRecord{
			PersonID:     id,
			Skill:        skill,
			Level:        level,
			LastObserved: testNow.AddDate(0, -1, 0),
		}
	}
	return model.Person{
		ID:           id,
		Name:         "Person " + id,
		Access:       []string{model.AccessInternal},
		Zone:         zone,
		Competencies: comps,
	}
}

func testPool() []model.Person {
	return []model.Person{
		person("alice", "eu", map[string]float64{"go": 0.9, "kubernetes": 0.7}),
		person("bob", "eu", map[string]float64{"go": 0.6, "postgres": 0.8}),
		person("carol", "us", map[string]float64{"git": 0.9}),
		person("dave", "us", map[string]float64{"go": 0.4, "postgres": 0.3}),
	}
}

func TestFilterCandidates(t *testing.T) {
	Convey("Given a person pool and skill requirements", t, func() {
		req := model.Requirements{"go": 0.5, "postgres": 0.5}

		Convey("When filtering without preferences", func() {
			pool := FilterCandidates(testPool(), req, model.Preferences{})

			Convey("Then only per-skill qualifiers survive", func() {
				ids := make([]string, 0, len(pool.Candidates))
				for _, p := range pool.Candidates {
					ids = append(ids, p.ID)
				}
				So(ids, ShouldResemble, []string{"alice", "bob"})
				So(pool.QualifiedFor["go"], ShouldResemble, []string{"alice", "bob"})
				So(pool.QualifiedFor["postgres"], ShouldResemble, []string{"bob"})
				So(pool.Unmet, ShouldBeEmpty)
			})
		})

		Convey("When a required skill has no qualifier", func() {
			pool := FilterCandidates(testPool(), model.Requirements{"rust": 0.5}, model.Preferences{})

			Convey("Then the skill is reported unmet", func() {
				So(pool.Candidates, ShouldBeEmpty)
				So(pool.Unmet, ShouldResemble, []string{"rust"})
			})
		})

		Convey("When a qualifier is excluded", func() {
			pool := FilterCandidates(testPool(), req, model.Preferences{Exclude: []string{"bob"}})

			Convey("Then they vanish from candidates and skill indexes", func() {
				for _, p := range pool.Candidates {
					So(p.ID, ShouldNotEqual, "bob")
				}
				So(pool.QualifiedFor["postgres"], ShouldBeEmpty)
				So(pool.Unmet, ShouldResemble, []string{"postgres"})
			})
		})

		Convey("When an unqualified person is force-included", func() {
			pool := FilterCandidates(testPool(), req, model.Preferences{Include: []string{"carol"}})

			Convey("Then they join the pool without coverage credit", func() {
				found := false
				for _, p := range pool.Candidates {
					if p.ID == "carol" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
				So(pool.QualifiedFor["go"], ShouldNotContain, "carol")
				So(pool.QualifiedFor["postgres"], ShouldNotContain, "carol")
			})
		})
	})
}

func TestCollabStrength(t *testing.T) {
	Convey("Given a collaboration index", t, func() {
		edges := []model.CollaborationEdge{
			{A: "alice", B: "bob", Positive: 8, Conflict: 1, Frequency: 5, Recency: testNow.AddDate(0, -1, 0)},
			{A: "alice", B: "carol", Positive: 2, Conflict: 3, Frequency: 9, Recency: testNow.AddDate(0, -1, 0)},
			{A: "bob", B: "dave", Positive: 6, Conflict: 0, Frequency: 4, Recency: testNow.AddDate(-2, 0, 0)},
		}
		collab := NewCollab(edges)

		Convey("A fresh positive pair scores above zero", func() {
			So(collab.Strength("alice", "bob", testNow), ShouldBeGreaterThan, 0)
		})

		Convey("Lookup is order independent", func() {
			So(collab.Strength("bob", "alice", testNow), ShouldEqual, collab.Strength("alice", "bob", testNow))
		})

		Convey("Conflict dominating positive history floors at zero", func() {
			So(collab.Strength("alice", "carol", testNow), ShouldEqual, 0)
		})

		Convey("A stale edge decays to the freshness floor", func() {
			stale := collab.Strength("bob", "dave", testNow)
			fresh := NewCollab([]model.CollaborationEdge{
				{A: "bob", B: "dave", Positive: 6, Conflict: 0, Frequency: 4, Recency: testNow.AddDate(0, 0, -10)},
			}).Strength("bob", "dave", testNow)
			So(stale, ShouldBeLessThan, fresh)
			So(stale, ShouldAlmostEqual, fresh*edgeFreshnessMin, 1e-9)
		})

		Convey("Unknown pairs score zero", func() {
			So(collab.Strength("alice", "dave", testNow), ShouldEqual, 0)
		})
	})
}

func TestEvaluatorMetrics(t *testing.T) {
	Convey("Given an evaluator over a filtered pool", t, func() {
		req := model.Requirements{"go": 0.5, "postgres": 0.5}
		prof, _ := profile.NewRegistry().Get(profile.TagGreenfield)
		pool := FilterCandidates(testPool(), req, model.Preferences{})
		collab := NewCollab(nil)
		ev := newEvaluator(pool, req, prof, model.Preferences{}, collab, Weights{
			Coverage: 0.5, Synergy: 0.35, SPOF: 0.15, Experience: 0.2,
		}, 2, testNow)

		Convey("Full coverage by distinct singles is all-SPOF", func() {
			m := ev.metrics([]string{"alice", "bob"})
			So(m.Coverage, ShouldEqual, 1.0)
			// go has two qualifiers, postgres only one
			So(m.SPOFRisk, ShouldEqual, 0.5)
			So(m.Objective, ShouldBeGreaterThan, 0)
		})

		Convey("A lone member covering one skill scores partial coverage", func() {
			m := ev.metrics([]string{"alice"})
			So(m.Coverage, ShouldEqual, 0.5)
		})

		Convey("Coverage responds to skill weights", func() {
			weighted := newEvaluator(pool, req, prof, model.Preferences{
				SkillWeights: map[string]float64{"postgres": 3.0},
			}, collab, Weights{Coverage: 0.5, Synergy: 0.35, SPOF: 0.15, Experience: 0.2}, 2, testNow)
			m := weighted.metrics([]string{"alice"})
			So(m.Coverage, ShouldBeLessThan, 0.5)
		})

		Convey("Coverage map credits qualifiers only", func() {
			coverage, unmet := ev.coverageMap([]string{"alice"})
			So(coverage["go"], ShouldResemble, []string{"alice"})
			So(unmet, ShouldResemble, []string{"postgres"})
		})
	})
}

func TestEngineSearch(t *testing.T) {
	Convey("Given a search engine", t, func() {
		engine := NewEngine(WithRestarts(4), WithWorkers(2))
		registry := profile.NewRegistry()
		prof, _ := registry.Get(profile.TagDelivery)
		req := Request{
			Requirements: model.Requirements{"go": 0.5, "postgres": 0.5},
			Profile:      prof,
			K:            2,
			AsOf:         testNow,
		}
		edges := []model.CollaborationEdge{
			{A: "alice", B: "bob", Positive: 10, Conflict: 0, Frequency: 6, Recency: testNow.AddDate(0, 0, -20)},
		}

		Convey("When the pool can satisfy everything", func() {
			result, err := engine.Search(context.Background(), testPool(), edges, req)

			Convey("Then the top proposal is complete and covers all skills", func() {
				So(err, ShouldBeNil)
				So(result.TimedOut, ShouldBeFalse)
				So(result.Proposals, ShouldNotBeEmpty)
				top := result.Proposals[0]
				So(top.Partial, ShouldBeFalse)
				So(top.Unmet, ShouldBeEmpty)
				So(len(top.Members), ShouldEqual, 2)
				So(top.Coverage["go"], ShouldNotBeEmpty)
				So(top.Coverage["postgres"], ShouldNotBeEmpty)
			})

			Convey("Then identical inputs rank identically", func() {
				again, err := engine.Search(context.Background(), testPool(), edges, req)
				So(err, ShouldBeNil)
				So(again.Proposals[0].Members, ShouldResemble, result.Proposals[0].Members)
			})

			Convey("Then distinct proposals never repeat a member set", func() {
				seen := make(map[string]struct{})
				for _, p := range result.Proposals {
					key := memberKey(p.Members)
					_, dup := seen[key]
					So(dup, ShouldBeFalse)
					seen[key] = struct{}{}
				}
			})
		})

		Convey("When no candidate qualifies for anything", func() {
			impossible := req
			impossible.Requirements = model.Requirements{"cobol": 0.9}
			result, err := engine.Search(context.Background(), testPool(), nil, impossible)

			Convey("Then a single flagged partial proposal comes back", func() {
				So(err, ShouldBeNil)
				So(result.PoolSize, ShouldEqual, 0)
				So(result.Proposals, ShouldHaveLength, 1)
				So(result.Proposals[0].Partial, ShouldBeTrue)
				So(result.Proposals[0].Unmet, ShouldResemble, []string{"cobol"})
			})
		})

		Convey("When one required skill is uncoverable", func() {
			partial := req
			partial.Requirements = model.Requirements{"go": 0.5, "cobol": 0.9}
			result, err := engine.Search(context.Background(), testPool(), edges, partial)

			Convey("Then the best proposal is flagged with the unmet skill", func() {
				So(err, ShouldBeNil)
				So(result.Proposals, ShouldNotBeEmpty)
				So(result.Proposals[0].Partial, ShouldBeTrue)
				So(result.Proposals[0].Unmet, ShouldResemble, []string{"cobol"})
			})
		})

		Convey("When a member is force-included", func() {
			forced := req
			forced.Preferences = model.Preferences{Include: []string{"carol"}}
			result, err := engine.Search(context.Background(), testPool(), edges, forced)

			Convey("Then every proposal seats them", func() {
				So(err, ShouldBeNil)
				for _, p := range result.Proposals {
					So(p.Members, ShouldContain, "carol")
				}
			})
		})

		Convey("When an include names someone outside the roster", func() {
			ghost := req
			ghost.Preferences = model.Preferences{Include: []string{"ghost"}}
			result, err := engine.Search(context.Background(), testPool(), edges, ghost)

			Convey("Then nobody is fabricated into a proposal", func() {
				So(err, ShouldBeNil)
				So(result.Proposals, ShouldNotBeEmpty)
				for _, p := range result.Proposals {
					So(p.Members, ShouldNotContain, "ghost")
				}
			})
		})

		Convey("When the same member is both included and excluded", func() {
			torn := req
			torn.Preferences = model.Preferences{Include: []string{"bob"}, Exclude: []string{"bob"}}
			result, err := engine.Search(context.Background(), testPool(), edges, torn)

			Convey("Then the exclusion wins and they are never seated", func() {
				So(err, ShouldBeNil)
				for _, p := range result.Proposals {
					So(p.Members, ShouldNotContain, "bob")
				}
			})
		})

		Convey("When a member is excluded", func() {
			narrowed := req
			narrowed.Preferences = model.Preferences{Exclude: []string{"bob"}}
			result, err := engine.Search(context.Background(), testPool(), edges, narrowed)

			Convey("Then no proposal seats them", func() {
				So(err, ShouldBeNil)
				for _, p := range result.Proposals {
					So(p.Members, ShouldNotContain, "bob")
				}
			})
		})

		Convey("When the deadline is already spent", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			result, err := engine.Search(ctx, testPool(), edges, req)

			Convey("Then the result is flagged, not an error", func() {
				So(err, ShouldBeNil)
				So(result.TimedOut, ShouldBeTrue)
			})
		})

		Convey("When the request is malformed", func() {
			bad := req
			bad.K = 0
			_, err := engine.Search(context.Background(), testPool(), edges, bad)

			Convey("Then a typed validation error comes back", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid search request")
			})
		})

		Convey("When requirements are empty", func() {
			bad := req
			bad.Requirements = nil
			_, err := engine.Search(context.Background(), testPool(), edges, bad)

			So(err, ShouldNotBeNil)
		})
	})
}

func TestSearchPrefersCollaborativePairs(t *testing.T) {
	Convey("Given two pairings with equal coverage but different chemistry", t, func() {
		pool := []model.Person{
			person("ana", "eu", map[string]float64{"python": 0.9, "git": 0.6}),
			person("ben", "eu", map[string]float64{"python": 0.7, "react": 0.8}),
			person("cora", "eu", map[string]float64{"git": 0.85}),
		}
		edges := []model.CollaborationEdge{
			{A: "ana", B: "ben", Positive: 9, Conflict: 0, Frequency: 6, Recency: testNow.AddDate(0, 0, -15)},
		}
		engine := NewEngine(WithRestarts(4), WithWorkers(2))
		prof, _ := profile.NewRegistry().Get(profile.TagGreenfield)

		result, err := engine.Search(context.Background(), pool, edges, Request{
			Requirements: model.Requirements{"python": 0.5, "git": 0.5},
			Profile:      prof,
			K:            2,
			AsOf:         testNow,
		})

		Convey("The pair with positive shared history ranks first", func() {
			So(err, ShouldBeNil)
			So(result.Proposals, ShouldNotBeEmpty)
			So(memberKey(result.Proposals[0].Members), ShouldEqual, "ana,ben")
		})
	})
}
