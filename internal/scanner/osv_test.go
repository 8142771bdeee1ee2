package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/remedyhq/remedy-agent/internal/config"
)

// writeOutputExec writes payload to the path given via --output before
// reporting the exit code, mimicking osv-scanner's report file behavior.
func writeOutputExec(t *testing.T, exitCode int, payload string) CommandRunner {
	t.Helper()
	return func(ctx context.Context, dir, name string, args ...string) (ExecResult, error) {
		for i, a := range args {
			if a == "--output" && i+1 < len(args) {
				if err := os.WriteFile(args[i+1], []byte(payload), 0o644); err != nil {
					t.Fatalf("writing fake report: %v", err)
				}
			}
		}
		return ExecResult{ExitCode: exitCode}, nil
	}
}

func TestOSVNormalizesReport(t *testing.T) {
	ws := t.TempDir()
	report := `{"results":[{
		"source":{"path":"` + filepath.ToSlash(filepath.Join(ws, "go.mod")) + `"},
		"vulnerabilities":[
			{"id":"GHSA-xxxx-yyyy-zzzz","summary":"yaml bomb","severity":[{"type":"CVSS_V3","score":"7.5"}]},
			{"id":"GO-2024-1234","summary":"","details":"path traversal in archive handling"}
		]}]}`
	a := NewOSV(config.ScannerConfig{}, writeOutputExec(t, 1, report))

	findings := a.Run(context.Background(), ws)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Path != "go.mod" {
		t.Fatalf("expected workspace-relative path, got %q", findings[0].Path)
	}
	if findings[0].RuleID != "GHSA-xxxx-yyyy-zzzz" || findings[0].Severity != "7.5" {
		t.Fatalf("unexpected first finding: %+v", findings[0])
	}
	if findings[1].Severity != "UNSPECIFIED" {
		t.Fatalf("expected UNSPECIFIED severity, got %s", findings[1].Severity)
	}
	if findings[1].Message != "path traversal in archive handling" {
		t.Fatalf("expected details fallback, got %q", findings[1].Message)
	}
	if findings[0].Line != nil {
		t.Fatalf("dependency findings must have nil line, got %v", findings[0].Line)
	}
}

func TestOSVDegradesOnFailureExit(t *testing.T) {
	a := NewOSV(config.ScannerConfig{}, writeOutputExec(t, 127, `{"results":[]}`))
	if findings := a.Run(context.Background(), t.TempDir()); findings != nil {
		t.Fatalf("expected nil findings on failure exit, got %v", findings)
	}
}

func TestGrypeNormalizesMatches(t *testing.T) {
	sbom := filepath.Join(t.TempDir(), "sbom.json")
	if err := os.WriteFile(sbom, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := `{"matches":[
		{"vulnerability":{"id":"CVE-2021-23337","severity":"High","description":"lodash command injection"},
		 "artifact":{"name":"lodash","version":"4.17.20","locations":[{"path":"package-lock.json"}]}},
		{"vulnerability":{"id":"","severity":"Low"},
		 "artifact":{"name":"ignored","version":"1.0.0"}},
		{"vulnerability":{"id":"GHSA-aaaa-bbbb-cccc","severity":""},
		 "artifact":{"name":"minimist","version":"0.0.8"}}
	]}`
	a := NewGrype(fakeExec(ExecResult{ExitCode: 1, Stdout: []byte(out)}, nil))

	findings := a.RunSBOM(context.Background(), sbom)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings (entry without id skipped), got %d", len(findings))
	}
	if findings[0].Path != "package-lock.json" || findings[0].Severity != "HIGH" {
		t.Fatalf("unexpected first finding: %+v", findings[0])
	}
	if findings[1].Path != "minimist" {
		t.Fatalf("expected artifact name fallback path, got %q", findings[1].Path)
	}
	if findings[1].Severity != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN severity, got %s", findings[1].Severity)
	}
	if findings[1].Message != "minimist 0.0.8 vulnerable (GHSA-aaaa-bbbb-cccc)" {
		t.Fatalf("unexpected synthesized message: %q", findings[1].Message)
	}
}

func TestGrypeMissingSBOM(t *testing.T) {
	a := NewGrype(fakeExec(ExecResult{}, nil))
	if findings := a.RunSBOM(context.Background(), filepath.Join(t.TempDir(), "nope.json")); findings != nil {
		t.Fatalf("expected nil findings for missing SBOM, got %v", findings)
	}
}
