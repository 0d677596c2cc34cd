package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := New()

		Convey("Serving defaults are sane", func() {
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.QueueSize, ShouldBeGreaterThan, 0)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
		})

		Convey("The graph store defaults to in-memory", func() {
			So(cfg.GraphURI, ShouldBeEmpty)
			So(cfg.GraphDatabase, ShouldEqual, "neo4j")
		})

		Convey("Estimator defaults follow the ninety-day half-life", func() {
			So(cfg.DecayRatePerDay, ShouldAlmostEqual, 0.0077, 1e-9)
			So(cfg.SaturationK, ShouldAlmostEqual, 0.35, 1e-9)
			So(cfg.EvidenceWeights["merge"], ShouldEqual, 1.0)
			So(cfg.EvidenceWeights["comment"], ShouldEqual, 0.25)
		})

		Convey("Search budgets are bounded", func() {
			So(cfg.RestartCount, ShouldBeGreaterThan, 0)
			So(cfg.SearchTimeoutMS, ShouldBeGreaterThan, 0)
			So(cfg.RedundancyTarget, ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("Risk thresholds carry their documented defaults", func() {
			So(cfg.ConflictRatioThreshold, ShouldAlmostEqual, 0.5, 1e-9)
			So(cfg.SevereConflictRatio, ShouldAlmostEqual, 0.75, 1e-9)
			So(cfg.LinchpinLevel, ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("Objective weights match the documented split", func() {
			So(cfg.CoverageWeight, ShouldAlmostEqual, 0.5, 1e-9)
			So(cfg.SynergyWeight, ShouldAlmostEqual, 0.35, 1e-9)
			So(cfg.SPOFPenaltyWeight, ShouldAlmostEqual, 0.15, 1e-9)
			So(cfg.ExperienceWeight, ShouldAlmostEqual, 0.2, 1e-9)
		})

		Convey("Defaults validate cleanly", func() {
			So(cfg.validate(), ShouldBeNil)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given broken configurations", t, func() {
		cases := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty addr", func(c *Config) { c.Addr = "" }},
			{"zero queue", func(c *Config) { c.QueueSize = 0 }},
			{"zero workers", func(c *Config) { c.WorkerCount = 0 }},
			{"zero restarts", func(c *Config) { c.RestartCount = 0 }},
			{"negative decay", func(c *Config) { c.DecayRatePerDay = -1 }},
			{"zero saturation", func(c *Config) { c.SaturationK = 0 }},
			{"zero redundancy", func(c *Config) { c.RedundancyTarget = 0 }},
			{"severe ratio above one", func(c *Config) { c.SevereConflictRatio = 1.5 }},
			{"zero linchpin level", func(c *Config) { c.LinchpinLevel = 0 }},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is rejected", func() {
				cfg := New()
				tc.mutate(cfg)
				So(cfg.validate(), ShouldNotBeNil)
			})
		}
	})
}
