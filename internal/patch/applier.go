// Package patch applies model-produced patch plans to a cloned workspace.
// Every edit is a literal or regex substitution against one file, confined
// to the workspace; anything that cannot be applied cleanly is skipped and
// recorded rather than treated as an error.
package patch

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/remedyhq/remedy-agent/models"
)

// Skip records one edit that was not applied and why.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result summarises one Apply pass over a workspace.
type Result struct {
	Touched []string `json:"touched"`
	Skipped []Skip   `json:"skipped"`
	Diff    string   `json:"diff,omitempty"`
}

// Apply runs every edit of every plan against the workspace. Files are
// rewritten in place; the returned result lists the touched files (sorted,
// deduplicated) and the skipped edits with their reasons.
func Apply(workspace string, plans []models.PlanBundle) Result {
	var res Result
	touched := map[string]bool{}

	for _, bundle := range plans {
		if bundle.Plan == nil {
			continue
		}
		for _, edit := range bundle.Plan.Edits {
			path, reason := applyEdit(workspace, edit)
			if reason != "" {
				res.Skipped = append(res.Skipped, Skip{Path: edit.Path, Reason: reason})
				continue
			}
			touched[path] = true
		}
	}

	for p := range touched {
		res.Touched = append(res.Touched, p)
	}
	sort.Strings(res.Touched)

	res.Diff = workspaceDiff(workspace)
	return res
}

// applyEdit rewrites one file. It returns the workspace-relative path on
// success, or an empty path and a skip reason.
func applyEdit(workspace string, edit models.PatchEdit) (string, string) {
	full, err := safeRepoJoin(workspace, edit.Path)
	if err != nil {
		return "", "outside_repo"
	}

	data, err := os.ReadFile(full) // #nosec G304 -- path validated by safeRepoJoin
	if err != nil {
		return "", "missing_file"
	}
	content := string(data)

	var updated string
	switch {
	case edit.Match != "":
		if !strings.Contains(content, edit.Match) {
			return "", "match_not_found"
		}
		updated = strings.ReplaceAll(content, edit.Match, edit.Replace)
	case edit.Regex != "":
		re, err := regexp.Compile("(?m)" + edit.Regex)
		if err != nil {
			return "", fmt.Sprintf("invalid regex: %v", err)
		}
		if !re.MatchString(content) {
			return "", "regex_no_match"
		}
		updated = re.ReplaceAllString(content, edit.Replace)
	default:
		return "", "no_operation"
	}

	if updated == content {
		return "", "no_change"
	}

	info, err := os.Stat(full)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(full, []byte(updated), mode); err != nil {
		return "", fmt.Sprintf("write failed: %v", err)
	}
	return edit.Path, ""
}

// workspaceDiff captures `git diff` output for reporting. A missing git
// binary or a non-repo workspace just yields an empty diff.
func workspaceDiff(workspace string) string {
	cmd := exec.Command("git", "diff")
	cmd.Dir = workspace
	out, err := cmd.Output()
	if err != nil {
		slog.Debug("could not capture workspace diff", "error", err)
		return ""
	}
	return string(out)
}

// safeRepoJoin joins base and rel, returning an error if the result would
// escape the base directory. This prevents path traversal when rel comes
// from model-generated patch plans.
func safeRepoJoin(base, rel string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving repo root: %w", err)
	}
	joined := filepath.Join(absBase, filepath.Clean(rel))
	if joined != absBase && !strings.HasPrefix(joined, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes repo root", rel)
	}
	return joined, nil
}
