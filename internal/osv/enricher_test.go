package osv

import (
	"testing"

	"github.com/remedyhq/remedy-agent/models"
)

func TestNeedsLookup(t *testing.T) {
	cases := []struct {
		finding models.RawFinding
		want    bool
	}{
		{models.RawFinding{RuleID: "GHSA-aaaa-bbbb-cccc", Severity: "UNSPECIFIED"}, true},
		{models.RawFinding{RuleID: "CVE-2024-12345", Severity: ""}, true},
		{models.RawFinding{RuleID: "PYSEC-2023-0001", Severity: "unknown"}, true},
		{models.RawFinding{RuleID: "GHSA-aaaa-bbbb-cccc", Severity: "HIGH"}, false},
		{models.RawFinding{RuleID: "", Severity: "UNSPECIFIED"}, false},
		{models.RawFinding{RuleID: "go.lang.security.md5", Severity: "UNKNOWN"}, false},
	}
	for _, c := range cases {
		if got := needsLookup(c.finding); got != c.want {
			t.Errorf("needsLookup(%+v) = %v, want %v", c.finding, got, c.want)
		}
	}
}

func TestEcosystemSeverity(t *testing.T) {
	v := &Vuln{DatabaseSpecific: map[string]any{"severity": "CRITICAL"}}
	if got := v.EcosystemSeverity(); got != "CRITICAL" {
		t.Fatalf("expected CRITICAL, got %q", got)
	}
	if got := (&Vuln{}).EcosystemSeverity(); got != "" {
		t.Fatalf("expected empty severity, got %q", got)
	}
	v = &Vuln{DatabaseSpecific: map[string]any{"severity": 3}}
	if got := v.EcosystemSeverity(); got != "" {
		t.Fatalf("non-string severity must be ignored, got %q", got)
	}
}
