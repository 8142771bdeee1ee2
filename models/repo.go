package models

import "time"

// Repo is a registered source-code repository.
type Repo struct {
	ID            string    `json:"id"             db:"id"`
	Name          string    `json:"name"           db:"name"`
	URL           string    `json:"url"            db:"url"`
	DefaultBranch string    `json:"default_branch" db:"default_branch"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}

// PullRequest records the outcome of one automated remediation publish.
// Status is "open" when a PR was opened, "draft" when the branch was
// committed (and possibly pushed) but no PR exists.
type PullRequest struct {
	ID        string    `json:"id"         db:"id"`
	RepoID    string    `json:"repo_id"    db:"repo_id"`
	Branch    string    `json:"branch"     db:"branch"`
	PRURL     string    `json:"pr_url"     db:"pr_url"`
	Status    string    `json:"status"     db:"status"`
	Summary   string    `json:"summary"    db:"summary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	PRStatusDraft = "draft"
	PRStatusOpen  = "open"
)
