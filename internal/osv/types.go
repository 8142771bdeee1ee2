package osv

// Vuln is the subset of an OSV advisory used for enrichment.
type Vuln struct {
	ID               string         `json:"id"`
	Summary          string         `json:"summary"`
	Details          string         `json:"details"`
	Aliases          []string       `json:"aliases"`
	Severity         []Severity     `json:"severity"`
	DatabaseSpecific map[string]any `json:"database_specific"`
}

// Severity is one severity entry of an advisory, usually a CVSS vector.
type Severity struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

// EcosystemSeverity returns the advisory's qualitative severity rating
// ("CRITICAL", "HIGH", ...) when the database provides one, or "".
func (v *Vuln) EcosystemSeverity() string {
	if v.DatabaseSpecific == nil {
		return ""
	}
	if sev, ok := v.DatabaseSpecific["severity"].(string); ok {
		return sev
	}
	return ""
}
