package dossier

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chimera-hq/guardian/internal/domain/model"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func evidenceAt(uid string, daysAgo int) model.Evidence {
	return model.Evidence{
		UID:    uid,
		URL:    "https://git.example.com/" + uid,
		Actor:  "alice",
		Type:   model.EvidenceMerge,
		Source: "gitlab",
		Date:   testNow.AddDate(0, 0, -daysAgo),
	}
}

func testRoster() map[string]model.Person {
	return map[string]model.Person{
		"alice": {
			ID: "alice", Name: "Alice", Zone: "eu",
			Competencies: map[string]model.CompetencyRecord{
				"go": {
					PersonID: "alice", Skill: "go", Level: 0.9,
					LastObserved: testNow.AddDate(0, 0, -3),
					Evidence: []model.Evidence{
						evidenceAt("ev-1", 40),
						evidenceAt("ev-2", 3),
						evidenceAt("ev-3", 12),
						evidenceAt("ev-4", 90),
					},
				},
			},
		},
		"bob": {
			ID: "bob", Name: "Bob", Zone: "eu",
			Competencies: map[string]model.CompetencyRecord{
				"postgres": {
					PersonID: "bob", Skill: "postgres", Level: 0.8,
					LastObserved: testNow.AddDate(0, 0, -10),
					Evidence:     []model.Evidence{evidenceAt("ev-5", 10)},
				},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	Convey("Given a builder and a consistent proposal", t, func() {
		builder := NewBuilder(WithClock(func() time.Time { return testNow }))
		proposal := model.TeamProposal{
			Members: []string{"alice", "bob"},
			Metrics: model.Metrics{Coverage: 1, Objective: 0.8},
			Coverage: map[string][]string{
				"go":       {"alice"},
				"postgres": {"bob"},
			},
			Risks: []model.Risk{{Type: model.RiskSinglePointOfFailure, Severity: model.SeverityMedium, Description: "x"}},
		}

		Convey("When building the dossier", func() {
			d, err := builder.Build(context.Background(), proposal, testRoster())

			Convey("Then members, metrics and risks carry over", func() {
				So(err, ShouldBeNil)
				So(d.ProposalID, ShouldNotBeEmpty)
				So(d.GeneratedAt, ShouldEqual, testNow)
				So(d.Members, ShouldHaveLength, 2)
				So(d.Metrics.Objective, ShouldEqual, 0.8)
				So(d.Risks, ShouldHaveLength, 1)
			})

			Convey("Then every coverage claim is justified", func() {
				So(err, ShouldBeNil)
				So(d.Justifications, ShouldHaveLength, 2)
				So(d.Justifications[0].PersonID, ShouldEqual, "alice")
				So(d.Justifications[0].Skill, ShouldEqual, "go")
				So(d.Justifications[0].Level, ShouldEqual, 0.9)
			})

			Convey("Then citations are freshest-first and capped", func() {
				So(err, ShouldBeNil)
				ev := d.Justifications[0].Evidence
				So(ev, ShouldHaveLength, 3)
				So(ev[0].UID, ShouldEqual, "ev-2")
				So(ev[1].UID, ShouldEqual, "ev-3")
				So(ev[2].UID, ShouldEqual, "ev-1")
			})

			Convey("Then member summaries aggregate covered levels", func() {
				So(err, ShouldBeNil)
				So(d.Members[0].ID, ShouldEqual, "alice")
				So(d.Members[0].Covers, ShouldResemble, []string{"go"})
				So(d.Members[0].AggregateLevel, ShouldEqual, 0.9)
			})
		})

		Convey("When the citation cap is tightened", func() {
			tight := NewBuilder(WithCitationsPerSkill(1), WithClock(func() time.Time { return testNow }))
			d, err := tight.Build(context.Background(), proposal, testRoster())

			So(err, ShouldBeNil)
			So(d.Justifications[0].Evidence, ShouldHaveLength, 1)
			So(d.Justifications[0].Evidence[0].UID, ShouldEqual, "ev-2")
		})

		Convey("When partial state travels with the proposal", func() {
			flagged := proposal
			flagged.Partial = true
			flagged.Unmet = []string{"rust"}
			d, err := builder.Build(context.Background(), flagged, testRoster())

			So(err, ShouldBeNil)
			So(d.Partial, ShouldBeTrue)
			So(d.Unmet, ShouldResemble, []string{"rust"})
		})

		Convey("When a member is missing from the roster", func() {
			ghost := proposal
			ghost.Members = []string{"alice", "ghost"}
			_, err := builder.Build(context.Background(), ghost, testRoster())

			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("When coverage credits a skill without a record", func() {
			bad := proposal
			bad.Coverage = map[string][]string{"rust": {"alice"}}
			_, err := builder.Build(context.Background(), bad, testRoster())

			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("When a forced member covers nothing", func() {
			passenger := proposal
			passenger.Members = []string{"alice", "bob", "carol"}
			roster := testRoster()
			roster["carol"] = model.Person{ID: "carol", Name: "Carol", Zone: "us"}
			d, err := builder.Build(context.Background(), passenger, roster)

			Convey("Then they appear with no coverage and no justification", func() {
				So(err, ShouldBeNil)
				So(d.Members, ShouldHaveLength, 3)
				So(d.Members[2].Covers, ShouldBeEmpty)
				So(d.Members[2].AggregateLevel, ShouldEqual, 0)
				So(d.Justifications, ShouldHaveLength, 2)
			})
		})
	})
}
