package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// SyftRunner generates an SBOM artifact for a workspace. It is a pure
// side-effect producer: on success it returns the path of a temporary
// JSON file the caller must delete.
type SyftRunner struct {
	exec CommandRunner
}

// NewSyft creates a SyftRunner. exec may be nil to use RunCommand.
func NewSyft(exec CommandRunner) *SyftRunner {
	if exec == nil {
		exec = RunCommand
	}
	return &SyftRunner{exec: exec}
}

// Generate runs syft over the workspace and writes the SBOM to a temp
// file, returning its path. Any failure returns an empty path; SBOM
// generation is never fatal to a scan.
func (s *SyftRunner) Generate(ctx context.Context, workspace string) string {
	res, err := s.exec(ctx, workspace, "syft", fmt.Sprintf("dir:%s", workspace), "-o", "json")
	if err != nil {
		if IsNotFound(err) {
			slog.Warn("syft binary not found; skipping SBOM generation")
		} else {
			slog.Warn("syft invocation failed", "error", err)
		}
		return ""
	}

	if Classify("syft", res.ExitCode) != OutcomeSuccess {
		slog.Warn("syft failed", "exit_code", res.ExitCode, "stderr", string(res.Stderr))
		return ""
	}

	tmp, err := os.CreateTemp("", "remedy-sbom-*.json")
	if err != nil {
		slog.Warn("Failed to create SBOM file", "error", err)
		return ""
	}
	path := tmp.Name()
	if _, err := tmp.Write(res.Stdout); err != nil {
		tmp.Close()
		os.Remove(path)
		slog.Warn("Failed to write SBOM file", "error", err)
		return ""
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return ""
	}
	return path
}
