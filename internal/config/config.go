// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and GUARDIAN_ env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Every tunable the engine exposes
// (decay rate, evidence weights, saturation, search budgets) lives here so
// that no policy constant is hard-coded.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Graph store connection. An empty URI selects the in-memory store,
	// which is what tests and local development use.
	GraphURI      string `koanf:"graph_uri"`
	GraphUser     string `koanf:"graph_user"`
	GraphPassword string `koanf:"graph_password"`
	GraphDatabase string `koanf:"graph_database"`

	// Bounded retry policy for graph store operations.
	GraphMaxRetries       int `koanf:"graph_max_retries"`
	GraphRetryInitialMS   int `koanf:"graph_retry_initial_ms"`
	GraphRetryMaxDelayMS  int `koanf:"graph_retry_max_delay_ms"`

	// Recompute pipeline sizing.
	QueueSize   int `koanf:"queue_size"`
	WorkerCount int `koanf:"worker_count"`

	// Competency estimator tunables.
	//
	// DecayRatePerDay is the exponential decay applied to evidence weight
	// per elapsed day. SaturationK shapes the 1-exp(-k*sum) curve that
	// bounds levels to [0,1]. CitationThreshold drops evidence whose
	// decayed contribution is immaterial from the justification set.
	DecayRatePerDay       float64            `koanf:"decay_rate_per_day"`
	SaturationK           float64            `koanf:"saturation_k"`
	CitationThreshold     float64            `koanf:"citation_threshold"`
	CitationsPerSkill     int                `koanf:"citations_per_skill"`
	EvidenceWeights       map[string]float64 `koanf:"evidence_weights"`
	DefaultEvidenceWeight float64            `koanf:"default_evidence_weight"`

	// Team search budgets and objective weights.
	RestartCount     int `koanf:"restart_count"`
	SearchWorkers    int `koanf:"search_workers"`
	SearchTimeoutMS  int `koanf:"search_timeout_ms"`
	SwapIterations   int `koanf:"swap_iterations"`
	RedundancyTarget int `koanf:"redundancy_target"`

	CoverageWeight    float64 `koanf:"coverage_weight"`
	SynergyWeight     float64 `koanf:"synergy_weight"`
	SPOFPenaltyWeight float64 `koanf:"spof_penalty_weight"`
	ExperienceWeight  float64 `koanf:"experience_weight"`

	// Risk analyzer thresholds.
	FreshnessWindowDays    int     `koanf:"freshness_window_days"`
	ConflictRatioThreshold float64 `koanf:"conflict_ratio_threshold"`
	SevereConflictRatio    float64 `koanf:"severe_conflict_ratio"`
	LinchpinLevel          float64 `koanf:"linchpin_level"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":9090",

		GraphURI:      "",
		GraphUser:     "neo4j",
		GraphPassword: "",
		GraphDatabase: "neo4j",

		GraphMaxRetries:      4,
		GraphRetryInitialMS:  100,
		GraphRetryMaxDelayMS: 2_000,

		QueueSize:   50_000,
		WorkerCount: runtime.NumCPU() * 2,

		// Half-life of roughly 90 days: ln(2)/90.
		DecayRatePerDay:   0.0077,
		SaturationK:       0.35,
		CitationThreshold: 0.05,
		CitationsPerSkill: 3,
		EvidenceWeights: map[string]float64{
			"merge":   1.0,
			"commit":  1.0,
			"review":  0.6,
			"issue":   0.5,
			"comment": 0.25,
		},
		DefaultEvidenceWeight: 0.25,

		RestartCount:     6,
		SearchWorkers:    runtime.NumCPU(),
		SearchTimeoutMS:  5_000,
		SwapIterations:   10,
		RedundancyTarget: 2,

		CoverageWeight:    0.5,
		SynergyWeight:     0.35,
		SPOFPenaltyWeight: 0.15,
		ExperienceWeight:  0.2,

		FreshnessWindowDays:    180,
		ConflictRatioThreshold: 0.5,
		SevereConflictRatio:    0.75,
		LinchpinLevel:          0.5,
	}
}
