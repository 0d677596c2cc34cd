package graph

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompetencyFromMap(t *testing.T) {
	Convey("Given projected competency maps", t, func() {
		observed := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

		Convey("A full projection rebuilds the record with its citations", func() {
			rec, ok := competencyFromMap("alice", map[string]any{
				"skill":         "go",
				"level":         0.9,
				"last_observed": observed.Unix(),
				"citations": []any{
					map[string]any{
						"uid":    "evidence-a1",
						"url":    "https://git.example.com/mr/1",
						"actor":  "alice",
						"type":   "merge",
						"source": "gitlab",
						"raw":    "merged MR 1",
						"date":   observed.Unix(),
					},
				},
			})

			So(ok, ShouldBeTrue)
			So(rec.PersonID, ShouldEqual, "alice")
			So(rec.Skill, ShouldEqual, "go")
			So(rec.Level, ShouldEqual, 0.9)
			So(rec.LastObserved, ShouldEqual, observed)
			So(rec.Evidence, ShouldHaveLength, 1)
			So(rec.Evidence[0].UID, ShouldEqual, "evidence-a1")
			So(rec.Evidence[0].URL, ShouldEqual, "https://git.example.com/mr/1")
			So(rec.Evidence[0].Date, ShouldEqual, observed)
		})

		Convey("An optional-match miss yields no record", func() {
			_, ok := competencyFromMap("alice", map[string]any{
				"skill": nil, "level": nil, "last_observed": nil, "citations": []any{},
			})
			So(ok, ShouldBeFalse)
		})

		Convey("A record without citations still carries level and recency", func() {
			rec, ok := competencyFromMap("bob", map[string]any{
				"skill":         "postgres",
				"level":         0.7,
				"last_observed": observed.Unix(),
				"citations":     []any{},
			})

			So(ok, ShouldBeTrue)
			So(rec.Level, ShouldEqual, 0.7)
			So(rec.Evidence, ShouldBeEmpty)
		})

		Convey("Malformed citation entries are skipped, not fatal", func() {
			rec, ok := competencyFromMap("bob", map[string]any{
				"skill":         "postgres",
				"level":         0.7,
				"last_observed": observed.Unix(),
				"citations":     []any{"not-a-map", map[string]any{"uid": "evidence-b1"}},
			})

			So(ok, ShouldBeTrue)
			So(rec.Evidence, ShouldHaveLength, 1)
			So(rec.Evidence[0].UID, ShouldEqual, "evidence-b1")
		})
	})
}

func TestEpochConversion(t *testing.T) {
	Convey("Given epoch helpers", t, func() {
		Convey("Round trips preserve the instant", func() {
			now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			So(asEpoch(toEpoch(now)), ShouldEqual, now)
		})

		Convey("Zero times stay zero both ways", func() {
			So(toEpoch(time.Time{}), ShouldEqual, 0)
			So(asEpoch(int64(0)).IsZero(), ShouldBeTrue)
		})
	})
}
