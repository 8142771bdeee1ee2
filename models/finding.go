package models

import "time"

// RawFinding is the canonical shape every scanner adapter normalizes its
// output into. FindingID is empty until enrichment assigns one; Line is
// nil for findings without a line anchor (dependency vulnerabilities).
type RawFinding struct {
	FindingID string `json:"finding_id,omitempty"`
	Severity  string `json:"severity"`
	Path      string `json:"path"`
	Line      *int   `json:"line"`
	RuleID    string `json:"rule_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Finding is a persisted issue the planner chose to act on. Rows are
// created once, at the end of a successful scan, and never mutated.
type Finding struct {
	ID          string    `json:"id"          db:"id"`
	ScanID      string    `json:"scan_id"     db:"scan_id"`
	Severity    string    `json:"severity"    db:"severity"`
	Path        string    `json:"path"        db:"path"`
	Line        *int      `json:"line"        db:"line"`
	RuleID      string    `json:"rule_id"     db:"rule_id"`
	Description string    `json:"description" db:"description"`
	PlanJSON    string    `json:"plan_json"   db:"plan_json"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}
