package models

// RankedFinding is one entry of the model's prioritisation response
// (the "ordered_findings" array).
type RankedFinding struct {
	FindingID     string `json:"finding_id"`
	FixStrategy   string `json:"fix_strategy"`
	Summary       string `json:"summary"`
	Justification string `json:"justification"`
}

// PatchEdit is a single textual edit inside a patch plan. Exactly one of
// Match (literal substring) or Regex (multi-line pattern) governs the edit.
type PatchEdit struct {
	Path    string `json:"path"`
	Match   string `json:"match,omitempty"`
	Regex   string `json:"regex,omitempty"`
	Replace string `json:"replace"`
	Note    string `json:"note,omitempty"`
}

// TestRecipe describes how to verify an applied plan.
type TestRecipe struct {
	Cmd    string `json:"cmd"`
	Expect string `json:"expect"`
}

// PatchPlan is a structured, machine-actionable remediation for one
// finding. It is the wire contract between the planner's model output and
// the patch applier.
type PatchPlan struct {
	FindingID string      `json:"finding_id"`
	Summary   string      `json:"summary"`
	FixKind   string      `json:"fix_kind"`
	Edits     []PatchEdit `json:"edits"`
	Test      *TestRecipe `json:"test,omitempty"`
}

// PlanBundle pairs a ranked finding with the plan generated for it.
type PlanBundle struct {
	Finding       RawFinding `json:"finding"`
	Summary       string     `json:"summary"`
	Justification string     `json:"justification"`
	Plan          *PatchPlan `json:"plan"`
}
