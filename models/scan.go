package models

import "time"

// Scan kinds. A "sast" scan runs static analysis; a "sca" scan runs
// dependency vulnerability tooling (osv-scanner plus syft/grype).
const (
	ScanKindSAST = "sast"
	ScanKindSCA  = "sca"
)

// Scan statuses. A scan is terminal once completed or failed; a failed
// scan is resolved by issuing a new one, never by retrying in place.
const (
	ScanStatusQueued    = "queued"
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
)

// Scan identifies one execution of one analysis kind against one repository.
// FindingsJSON holds the raw enriched finding list on success, or an error
// payload on failure, and is never mutated after the terminal transition.
type Scan struct {
	ID           string    `json:"id"            db:"id"`
	RepoID       string    `json:"repo_id"       db:"repo_id"`
	Kind         string    `json:"kind"          db:"kind"`
	Status       string    `json:"status"        db:"status"`
	FindingsJSON string    `json:"findings_json" db:"findings_json"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// ValidScanKind reports whether kind is a supported scan kind.
func ValidScanKind(kind string) bool {
	return kind == ScanKindSAST || kind == ScanKindSCA
}
