package model

import "time"

// Well-known evidence event types as ingested from external trackers.
// Unknown types are accepted and weighted with the configured default.
const (
	EvidenceMerge   = "merge"
	EvidenceCommit  = "commit"
	EvidenceReview  = "review"
	EvidenceIssue   = "issue"
	EvidenceComment = "comment"
)

// Evidence is an immutable record of an external event supporting a claimed
// skill. The UID follows the ingestion convention
// evidence-<hash(url, date, actor)> so re-ingestion is a no-op upstream.
// A zero Date marks a missing or malformed timestamp; the estimator excludes
// such items from aggregation.
type Evidence struct {
	UID    string    `json:"uid"`
	URL    string    `json:"url,omitempty"`
	Actor  string    `json:"actor,omitempty"`
	Type   string    `json:"type"`
	Source string    `json:"source,omitempty"`
	Raw    string    `json:"raw,omitempty"`
	Date   time.Time `json:"date"`
}

// Citation returns the preferred human-readable reference for this evidence:
// the URL when present, otherwise the raw payload.
func (e Evidence) Citation() string {
	if e.URL != "" {
		return e.URL
	}
	return e.Raw
}

// CompetencyRecord is the derived claim for one (person, skill) pair: a
// bounded level, the most recent observation, and the evidence justifying
// the level, ordered most recent first. Records are recomputed wholesale;
// partial in-place updates do not exist.
type CompetencyRecord struct {
	PersonID     string     `json:"person_id"`
	Skill        string     `json:"skill"`
	Level        float64    `json:"level"`
	LastObserved time.Time  `json:"last_observed"`
	Evidence     []Evidence `json:"evidence,omitempty"`
}
