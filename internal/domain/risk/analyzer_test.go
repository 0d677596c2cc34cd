package risk

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func roster() map[string]model.Person {
	fresh := testNow.AddDate(0, -1, 0)
	return map[string]model.Person{
		"alice": {
			ID: "alice", Name: "Alice", Zone: "eu",
			Access: []string{model.AccessInternal},
			Competencies: map[string]model.CompetencyRecord{
				"go":         {PersonID: "alice", Skill: "go", Level: 0.9, LastObserved: fresh},
				"kubernetes": {PersonID: "alice", Skill: "kubernetes", Level: 0.7, LastObserved: fresh},
			},
		},
		"bob": {
			ID: "bob", Name: "Bob", Zone: "eu",
			Access: []string{model.AccessInternal},
			Competencies: map[string]model.CompetencyRecord{
				"postgres": {PersonID: "bob", Skill: "postgres", Level: 0.8, LastObserved: testNow.AddDate(-2, 0, 0)},
			},
		},
		"carol": {
			ID: "carol", Name: "Carol", Zone: "us",
			Access: []string{model.AccessExternal},
			Competencies: map[string]model.CompetencyRecord{
				"git": {PersonID: "carol", Skill: "git", Level: 0.9, LastObserved: fresh},
			},
		},
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given an analyzer and a proposal", t, func() {
		analyzer := NewAnalyzer()
		persons := roster()
		registry := profile.NewRegistry()

		proposal := model.TeamProposal{
			Members: []string{"alice", "bob"},
			Coverage: map[string][]string{
				"go":       {"alice"},
				"postgres": {"bob"},
			},
		}

		Convey("Sole coverage is always a high-severity single point of failure", func() {
			prof, _ := registry.Get(profile.TagGreenfield)
			risks := analyzer.Analyze(context.Background(), proposal, persons, nil, prof, testNow)

			var spof []model.Risk
			for _, r := range risks {
				if r.Type == model.RiskSinglePointOfFailure {
					spof = append(spof, r)
				}
			}
			So(spof, ShouldHaveLength, 2)
			for _, r := range spof {
				So(r.Severity, ShouldEqual, model.SeverityHigh)
			}
		})

		Convey("A member solely covering several skills gets that breadth noted", func() {
			heavy := model.TeamProposal{
				Members: []string{"alice", "bob"},
				Coverage: map[string][]string{
					"go":         {"alice"},
					"kubernetes": {"alice"},
					"postgres":   {"alice", "bob"},
				},
			}
			prof, _ := registry.Get(profile.TagGreenfield)
			risks := analyzer.Analyze(context.Background(), heavy, persons, nil, prof, testNow)

			spof := 0
			for _, r := range risks {
				if r.Type != model.RiskSinglePointOfFailure {
					continue
				}
				spof++
				So(r.Severity, ShouldEqual, model.SeverityHigh)
				So(r.Description, ShouldContainSubstring, "sole cover for 2 required skills")
			}
			So(spof, ShouldEqual, 2)
		})

		Convey("Conflict-heavy pairs are flagged adversarial", func() {
			edges := []model.CollaborationEdge{
				{A: "alice", B: "bob", Positive: 1, Conflict: 4, Frequency: 5},
			}
			prof, _ := registry.Get(profile.TagGreenfield)
			risks := analyzer.Analyze(context.Background(), proposal, persons, edges, prof, testNow)

			found := false
			for _, r := range risks {
				if r.Type == model.RiskAdversarialHistory {
					found = true
					So(r.Severity, ShouldEqual, model.SeverityHigh)
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Mild friction below the threshold stays silent", func() {
			edges := []model.CollaborationEdge{
				{A: "alice", B: "bob", Positive: 9, Conflict: 1, Frequency: 5},
			}
			prof, _ := registry.Get(profile.TagGreenfield)
			risks := analyzer.Analyze(context.Background(), proposal, persons, edges, prof, testNow)

			for _, r := range risks {
				So(r.Type, ShouldNotEqual, model.RiskAdversarialHistory)
			}
		})

		Convey("Internal-only profiles flag members without internal access", func() {
			prof, _ := registry.Get(profile.TagMaintenance)
			external := model.TeamProposal{
				Members:  []string{"alice", "carol"},
				Coverage: map[string][]string{"go": {"alice"}, "git": {"carol"}},
			}
			risks := analyzer.Analyze(context.Background(), external, persons, nil, prof, testNow)

			found := false
			for _, r := range risks {
				if r.Type == model.RiskAccessMismatch {
					found = true
					So(r.Severity, ShouldEqual, model.SeverityMedium)
					So(r.Description, ShouldContainSubstring, "carol")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Single-zone profiles flag geographic spread", func() {
			prof, _ := registry.Get(profile.TagDelivery)
			spread := model.TeamProposal{
				Members:  []string{"alice", "carol"},
				Coverage: map[string][]string{"go": {"alice"}, "git": {"carol"}},
			}
			risks := analyzer.Analyze(context.Background(), spread, persons, nil, prof, testNow)

			found := false
			for _, r := range risks {
				if r.Type == model.RiskZoneFriction {
					found = true
					So(r.Severity, ShouldEqual, model.SeverityMedium)
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Same-zone teams raise no zone friction", func() {
			prof, _ := registry.Get(profile.TagDelivery)
			risks := analyzer.Analyze(context.Background(), proposal, persons, nil, prof, testNow)

			for _, r := range risks {
				So(r.Type, ShouldNotEqual, model.RiskZoneFriction)
			}
		})

		Convey("Coverage resting on quiet evidence is flagged stale", func() {
			prof, _ := registry.Get(profile.TagGreenfield)
			risks := analyzer.Analyze(context.Background(), proposal, persons, nil, prof, testNow)

			found := false
			for _, r := range risks {
				if r.Type == model.RiskStaleCompetency {
					found = true
					So(r.Description, ShouldContainSubstring, "bob")
					So(r.Severity, ShouldEqual, model.SeverityLow)
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Findings come back sorted by type then description", func() {
			prof, _ := registry.Get(profile.TagGreenfield)
			risks := analyzer.Analyze(context.Background(), proposal, persons, nil, prof, testNow)

			for i := 1; i < len(risks); i++ {
				if risks[i-1].Type == risks[i].Type {
					So(risks[i-1].Description, ShouldBeLessThanOrEqualTo, risks[i].Description)
				} else {
					So(risks[i-1].Type, ShouldBeLessThan, risks[i].Type)
				}
			}
		})
	})
}

func TestLinchpins(t *testing.T) {
	Convey("Given the full roster", t, func() {
		analyzer := NewAnalyzer()
		persons := []model.Person{}
		for _, p := range roster() {
			persons = append(persons, p)
		}

		Convey("Sole qualified holders are detected", func() {
			linchpins := analyzer.Linchpins(context.Background(), persons, nil)

			byID := make(map[string]Linchpin, len(linchpins))
			for _, l := range linchpins {
				byID[l.PersonID] = l
			}

			Convey("Alice solely holds two skills at medium severity", func() {
				So(byID["alice"].Skills, ShouldResemble, []string{"go", "kubernetes"})
				So(byID["alice"].Severity, ShouldEqual, model.SeverityMedium)
			})

			Convey("Single-skill holders rank low severity", func() {
				So(byID["bob"].Severity, ShouldEqual, model.SeverityLow)
				So(byID["carol"].Severity, ShouldEqual, model.SeverityLow)
			})

			Convey("Widest exposure ranks first", func() {
				So(linchpins[0].PersonID, ShouldEqual, "alice")
			})
		})

		Convey("Skills with several holders never flag", func() {
			extra := append(persons, model.Person{
				ID: "dan", Name: "Dan", Zone: "eu",
				Competencies: map[string]model.CompetencyRecord{
					"go": {PersonID: "dan", Skill: "go", Level: 0.8, LastObserved: testNow},
				},
			})
			linchpins := analyzer.Linchpins(context.Background(), extra, nil)

			for _, l := range linchpins {
				So(l.Skills, ShouldNotContain, "go")
			}
		})

		Convey("Levels below the qualifying bar do not count as holding", func() {
			weak := []model.Person{{
				ID: "eve", Name: "Eve",
				Competencies: map[string]model.CompetencyRecord{
					"rust": {PersonID: "eve", Skill: "rust", Level: 0.2, LastObserved: testNow},
				},
			}}
			So(analyzer.Linchpins(context.Background(), weak, nil), ShouldBeEmpty)
		})

		Convey("Collaboration hubs escalate one severity rung", func() {
			edges := []model.CollaborationEdge{
				{A: "bob", B: "alice", Positive: 5, Frequency: 3},
				{A: "bob", B: "carol", Positive: 4, Frequency: 2},
			}
			linchpins := analyzer.Linchpins(context.Background(), persons, edges)

			byID := make(map[string]Linchpin, len(linchpins))
			for _, l := range linchpins {
				byID[l.PersonID] = l
			}

			Convey("Bob touches everyone and bumps from low to medium", func() {
				So(byID["bob"].Degree, ShouldEqual, 2)
				So(byID["bob"].Centrality, ShouldEqual, 1.0)
				So(byID["bob"].Severity, ShouldEqual, model.SeverityMedium)
			})

			Convey("Carol stays low on a single edge", func() {
				So(byID["carol"].Degree, ShouldEqual, 1)
				So(byID["carol"].Severity, ShouldEqual, model.SeverityLow)
			})
		})
	})
}
