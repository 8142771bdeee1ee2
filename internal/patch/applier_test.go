package patch

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/remedyhq/remedy-agent/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func bundleWithEdits(edits ...models.PatchEdit) []models.PlanBundle {
	return []models.PlanBundle{{
		Finding: models.RawFinding{FindingID: "f-1"},
		Plan:    &models.PatchPlan{FindingID: "f-1", Edits: edits},
	}}
}

func TestApplyLiteralEdit(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "hash.go", "h := md5.New()\n")

	res := Apply(ws, bundleWithEdits(models.PatchEdit{
		Path: "hash.go", Match: "md5.New()", Replace: "sha256.New()",
	}))

	if len(res.Touched) != 1 || res.Touched[0] != "hash.go" {
		t.Fatalf("unexpected touched set: %v", res.Touched)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("unexpected skips: %v", res.Skipped)
	}
	data, _ := os.ReadFile(filepath.Join(ws, "hash.go"))
	if string(data) != "h := sha256.New()\n" {
		t.Fatalf("file not rewritten: %q", data)
	}
}

func TestApplyRegexEdit(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "Dockerfile", "FROM node:14\nFROM node:14-slim\n")

	res := Apply(ws, bundleWithEdits(models.PatchEdit{
		Path: "Dockerfile", Regex: `^FROM node:14`, Replace: "FROM node:20",
	}))

	if len(res.Touched) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	data, _ := os.ReadFile(filepath.Join(ws, "Dockerfile"))
	// (?m) multi-line mode: both lines start with the pattern.
	if string(data) != "FROM node:20\nFROM node:20-slim\n" {
		t.Fatalf("regex replace wrong: %q", data)
	}
}

func TestApplySkipReasons(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "a.txt", "hello\n")

	res := Apply(ws, bundleWithEdits(
		models.PatchEdit{Path: "../escape.txt", Match: "x", Replace: "y"},
		models.PatchEdit{Path: "missing.txt", Match: "x", Replace: "y"},
		models.PatchEdit{Path: "a.txt", Match: "absent", Replace: "y"},
		models.PatchEdit{Path: "a.txt", Regex: "absent", Replace: "y"},
		models.PatchEdit{Path: "a.txt", Regex: "([", Replace: "y"},
		models.PatchEdit{Path: "a.txt", Replace: "y"},
		models.PatchEdit{Path: "a.txt", Match: "hello", Replace: "hello"},
	))

	if len(res.Touched) != 0 {
		t.Fatalf("nothing should be touched, got %v", res.Touched)
	}
	wantReasons := []string{
		"outside_repo",
		"missing_file",
		"match_not_found",
		"regex_no_match",
		"invalid regex",
		"no_operation",
		"no_change",
	}
	if len(res.Skipped) != len(wantReasons) {
		t.Fatalf("expected %d skips, got %+v", len(wantReasons), res.Skipped)
	}
	for i, want := range wantReasons {
		if !strings.HasPrefix(res.Skipped[i].Reason, want) {
			t.Errorf("skip %d: want reason prefix %q, got %q", i, want, res.Skipped[i].Reason)
		}
	}

	// The escaped path never materialised outside the workspace.
	if _, err := os.Stat(filepath.Join(filepath.Dir(ws), "escape.txt")); !os.IsNotExist(err) {
		t.Fatal("path traversal edit must not write outside the workspace")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "cfg.yml", "debug: true\n")
	plans := bundleWithEdits(models.PatchEdit{
		Path: "cfg.yml", Match: "debug: true", Replace: "debug: false",
	})

	first := Apply(ws, plans)
	if len(first.Touched) != 1 {
		t.Fatalf("first apply should touch the file: %+v", first)
	}

	second := Apply(ws, plans)
	if len(second.Touched) != 0 {
		t.Fatalf("second apply must be a no-op: %+v", second)
	}
	if len(second.Skipped) != 1 || second.Skipped[0].Reason != "match_not_found" {
		t.Fatalf("expected match_not_found on re-apply, got %+v", second.Skipped)
	}
}

func TestApplyLiteralEditReplacesEveryOccurrence(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "hash.go", "md5.New() // a\nmd5.New() // b\n")
	plans := bundleWithEdits(models.PatchEdit{
		Path: "hash.go", Match: "md5.New()", Replace: "sha256.New()",
	})

	first := Apply(ws, plans)
	if len(first.Touched) != 1 {
		t.Fatalf("first apply should touch the file: %+v", first)
	}
	data, _ := os.ReadFile(filepath.Join(ws, "hash.go"))
	if string(data) != "sha256.New() // a\nsha256.New() // b\n" {
		t.Fatalf("both occurrences must be replaced: %q", data)
	}

	second := Apply(ws, plans)
	if len(second.Touched) != 0 {
		t.Fatalf("second apply must be a no-op: %+v", second)
	}
}

func TestApplyDeduplicatesTouchedFiles(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "z.txt", "one two\n")
	writeFile(t, ws, "a.txt", "three\n")

	res := Apply(ws, bundleWithEdits(
		models.PatchEdit{Path: "z.txt", Match: "one", Replace: "1"},
		models.PatchEdit{Path: "z.txt", Match: "two", Replace: "2"},
		models.PatchEdit{Path: "a.txt", Match: "three", Replace: "3"},
	))

	if len(res.Touched) != 2 || res.Touched[0] != "a.txt" || res.Touched[1] != "z.txt" {
		t.Fatalf("expected sorted deduplicated touched set, got %v", res.Touched)
	}
}

func TestApplyCapturesDiffWithoutTouchedFiles(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ws := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = ws
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	writeFile(t, ws, "cfg.yml", "debug: true\n")
	git("init")
	git("add", "-A")
	git("-c", "user.name=t", "-c", "user.email=t@example.com", "commit", "-m", "base")

	// The workspace already carries a modification; the plan's edit is a
	// no-op but the diff must still be reported.
	writeFile(t, ws, "cfg.yml", "debug: false\n")
	res := Apply(ws, bundleWithEdits(models.PatchEdit{
		Path: "cfg.yml", Match: "debug: true", Replace: "debug: false",
	}))

	if len(res.Touched) != 0 {
		t.Fatalf("edit should be a no-op, got touched %v", res.Touched)
	}
	if !strings.Contains(res.Diff, "debug: false") {
		t.Fatalf("expected workspace diff despite empty touched set, got %q", res.Diff)
	}
}

func TestApplyBundlesWithoutPlans(t *testing.T) {
	ws := t.TempDir()
	res := Apply(ws, []models.PlanBundle{{Finding: models.RawFinding{FindingID: "f-1"}}})
	if len(res.Touched) != 0 || len(res.Skipped) != 0 {
		t.Fatalf("planless bundle must be a no-op: %+v", res)
	}
}
