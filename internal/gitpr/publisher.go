// Package gitpr commits applied remediation edits on a dedicated branch and,
// when GitHub App credentials are configured, pushes the branch and opens a
// pull request. Publishing degrades rather than fails: each step that cannot
// complete returns the metadata gathered so far.
package gitpr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/google/uuid"

	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/models"
)

// tokenRemote is the throwaway remote used for the authenticated push, so
// the workspace's origin never carries credentials.
const tokenRemote = "remedy-origin"

// Metadata describes what the publish step managed to produce. PRURL is
// empty when the branch was committed but no pull request was opened.
type Metadata struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	PRURL  string `json:"pr_url,omitempty"`
	Title  string `json:"title"`
}

type Publisher struct {
	github config.GitHubConfig
	git    config.GitConfig
}

func New(github config.GitHubConfig, git config.GitConfig) *Publisher {
	return &Publisher{github: github, git: git}
}

// Publish commits the workspace's uncommitted changes on a fix branch and
// tries to open a PR against originURL. It returns nil when there is nothing
// to commit or the local commit itself fails; past that point every failure
// returns the best metadata gathered so far.
func (p *Publisher) Publish(ctx context.Context, workspace, originURL string, plans []models.PlanBundle) *Metadata {
	status, err := gitOutput(ctx, workspace, nil, "status", "--porcelain")
	if err != nil {
		slog.Warn("git status failed, skipping publish", "error", err)
		return nil
	}
	if strings.TrimSpace(status) == "" {
		slog.Info("workspace has no changes to publish")
		return nil
	}

	branch := "remedy/fix-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	title := commitTitle(plans)

	steps := [][]string{
		{"config", "user.name", p.git.AuthorName},
		{"config", "user.email", p.git.AuthorEmail},
		{"checkout", "-b", branch},
		{"add", "-A"},
		{"commit", "-m", title},
	}
	for _, args := range steps {
		if err := runGit(ctx, workspace, nil, args...); err != nil {
			slog.Warn("local commit failed, skipping publish", "error", err)
			return nil
		}
	}

	meta := &Metadata{Branch: branch, Title: title}
	if sha, err := gitOutput(ctx, workspace, nil, "rev-parse", "HEAD"); err == nil {
		meta.Commit = strings.TrimSpace(sha)
	}

	if !p.github.HasAppCredentials() {
		slog.Info("no GitHub App credentials configured, stopping after local commit",
			"branch", branch)
		return meta
	}

	app := appClient{cfg: p.github}
	token, err := app.installationToken(ctx)
	if err != nil {
		slog.Warn("could not obtain installation token", "error", err)
		return meta
	}

	owner, repo, err := repoFullName(originURL)
	if err != nil {
		slog.Warn("could not derive repository from origin URL", "error", err)
		return meta
	}

	pushURL := fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", token, owner, repo)
	pushEnv := append(os.Environ(), "GIT_ASKPASS=", "GIT_TERMINAL_PROMPT=0")
	if err := setPushRemote(ctx, workspace, pushURL); err != nil {
		slog.Warn("could not add push remote", "error", err)
		return meta
	}
	if err := runGit(ctx, workspace, pushEnv, "push", "-u", tokenRemote, branch); err != nil {
		slog.Warn("branch push failed", "branch", branch, "error", err)
		return meta
	}

	client, err := app.apiClient(ctx, token)
	if err != nil {
		slog.Warn("could not build GitHub client", "error", err)
		return meta
	}

	base := p.github.DefaultBranch
	if r, _, err := client.Repositories.Get(ctx, owner, repo); err == nil && r.GetDefaultBranch() != "" {
		base = r.GetDefaultBranch()
	}
	if base == "" {
		base = "main"
	}

	pr, _, err := client.PullRequests.Create(ctx, owner, repo, &gogithub.NewPullRequest{
		Title:               gogithub.Ptr(title),
		Body:                gogithub.Ptr(prBody(plans)),
		Head:                gogithub.Ptr(branch),
		Base:                gogithub.Ptr(base),
		MaintainerCanModify: gogithub.Ptr(true),
	})
	if err != nil {
		slog.Warn("pull request creation failed", "owner", owner, "repo", repo, "error", err)
		return meta
	}
	meta.PRURL = pr.GetHTMLURL()
	slog.Info("opened pull request", "url", meta.PRURL, "branch", branch)
	return meta
}

// setPushRemote installs the token-carrying remote, replacing any leftover
// from an earlier publish attempt in the same workspace.
func setPushRemote(ctx context.Context, workspace, pushURL string) error {
	_ = runGit(ctx, workspace, nil, "remote", "remove", tokenRemote)
	return runGit(ctx, workspace, nil, "remote", "add", tokenRemote, pushURL)
}

func commitTitle(plans []models.PlanBundle) string {
	for _, b := range plans {
		if b.Plan != nil && b.Plan.Summary != "" {
			return b.Plan.Summary
		}
		if b.Summary != "" {
			return b.Summary
		}
	}
	return "Remedy automated fix"
}

// prBody renders the applied plans as a reviewable JSON block.
func prBody(plans []models.PlanBundle) string {
	var sb strings.Builder
	sb.WriteString("Automated remediation produced by remedy.\n\n")
	sb.WriteString("## Applied plans\n\n```json\n")
	enc, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		enc = []byte("[]")
	}
	sb.Write(enc)
	sb.WriteString("\n```\n")
	return sb.String()
}

// repoFullName extracts owner and repo from an https or ssh clone URL.
func repoFullName(originURL string) (owner, repo string, err error) {
	s := strings.TrimSuffix(strings.TrimSpace(originURL), ".git")
	switch {
	case strings.HasPrefix(s, "git@"):
		// git@github.com:owner/repo
		_, after, ok := strings.Cut(s, ":")
		if !ok {
			return "", "", fmt.Errorf("unrecognised ssh URL %q", originURL)
		}
		s = after
	case strings.Contains(s, "://"):
		// https://github.com/owner/repo
		_, after, _ := strings.Cut(s, "://")
		if _, rest, ok := strings.Cut(after, "/"); ok {
			s = rest
		} else {
			return "", "", fmt.Errorf("unrecognised clone URL %q", originURL)
		}
	}
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot derive owner/repo from %q", originURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

func runGit(ctx context.Context, dir string, env []string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return nil
}

func gitOutput(ctx context.Context, dir string, env []string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
