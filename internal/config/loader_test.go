package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// Each scenario lives in its own test function because t.Setenv holds for
// the whole *testing.T; sharing one function would leak overrides across
// Convey blocks.

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "")

	Convey("Given no file and no environment", t, func() {
		Convey("Load returns the defaults", func() {
			cfg, err := Load(context.Background())

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.LogLevel, ShouldEqual, "info")
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "")
	t.Setenv("GUARDIAN_ADDR", ":7070")
	t.Setenv("GUARDIAN_LOG_LEVEL", "debug")
	t.Setenv("GUARDIAN_QUEUE_SIZE", "128")

	Convey("Given environment overrides", t, func() {
		Convey("Load applies them over the defaults", func() {
			cfg, err := Load(context.Background())

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.QueueSize, ShouldEqual, 128)
			// Untouched values keep their defaults.
			So(cfg.GraphDatabase, ShouldEqual, "neo4j")
		})
	})
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guardian.yaml")
	yaml := []byte("addr: \":6060\"\nworker_count: 3\ndecay_rate_per_day: 0.01\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("GUARDIAN_CONFIG", path)

	Convey("Given a YAML file", t, func() {
		Convey("Load layers the file over the defaults", func() {
			cfg, err := Load(context.Background())

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.WorkerCount, ShouldEqual, 3)
			So(cfg.DecayRatePerDay, ShouldAlmostEqual, 0.01, 1e-9)
		})
	})
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guardian.yaml")
	yaml := []byte("addr: \":6060\"\nworker_count: 3\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("GUARDIAN_CONFIG", path)
	t.Setenv("GUARDIAN_ADDR", ":5050")

	Convey("Given both a YAML file and an environment override", t, func() {
		Convey("The environment wins, the rest of the file still applies", func() {
			cfg, err := Load(context.Background())

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
			So(cfg.WorkerCount, ShouldEqual, 3)
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "/nonexistent/guardian.yaml")

	Convey("Given a missing config file", t, func() {
		Convey("Load fails with the load sentinel", func() {
			_, err := Load(context.Background())
			So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestLoadInvalidOverride(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "")
	t.Setenv("GUARDIAN_QUEUE_SIZE", "0")

	Convey("Given an invalid override", t, func() {
		Convey("Load fails validation", func() {
			_, err := Load(context.Background())
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
