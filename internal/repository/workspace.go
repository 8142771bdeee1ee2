// Package repository materialises registered repositories as throwaway
// local workspaces for scanning and patching.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/remedyhq/remedy-agent/models"
)

// Workspace is a shallow clone of one repository in a temp directory.
// Remove it with Cleanup once the pipeline run is done.
type Workspace struct {
	Path   string
	Branch string
	Commit string
}

// CloneManager produces workspaces via go-git shallow clones.
type CloneManager struct{}

func NewCloneManager() *CloneManager {
	return &CloneManager{}
}

// Clone checks out the repository's default branch (or HEAD when none is
// recorded) into a fresh temp directory. Clone failure is fatal to a scan,
// so unlike the analysis steps this one returns an error.
func (cm *CloneManager) Clone(ctx context.Context, repo models.Repo) (*Workspace, error) {
	tmpDir, err := os.MkdirTemp("", "remedy-clone-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:   repo.URL,
		Depth: 1, // shallow clone for speed
	}
	if repo.DefaultBranch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.DefaultBranch)
		opts.SingleBranch = true
	}

	start := time.Now()
	slog.Debug("cloning repository", "url", repo.URL, "branch", repo.DefaultBranch, "dest", tmpDir)

	cloned, err := gogit.PlainCloneContext(ctx, tmpDir, false, opts)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("cloning %s: %w", repo.URL, err)
	}

	head, err := cloned.Head()
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	slog.Info("workspace ready",
		"repo", repo.Name,
		"branch", head.Name().Short(),
		"commit", head.Hash().String()[:8],
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return &Workspace{
		Path:   tmpDir,
		Branch: head.Name().Short(),
		Commit: head.Hash().String(),
	}, nil
}

// Cleanup removes the workspace directory.
func (cm *CloneManager) Cleanup(ws *Workspace) {
	if ws == nil {
		return
	}
	if err := os.RemoveAll(ws.Path); err != nil {
		slog.Warn("failed to clean up workspace", "path", ws.Path, "error", err)
	}
}
