package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/models"
)

// Client talks to the hosting service through the gh CLI. All PR operations
// target the upstream repository with the fork's branch as the cross-repo
// head.
type Client struct {
	cfg    *config.Config
	runner command.Runner
}

func NewClient(cfg *config.Config, runner command.Runner) *Client {
	return &Client{cfg: cfg, runner: runner}
}

func (c *Client) gh(ctx context.Context, args ...string) (command.Result, error) {
	return c.runner.Run(ctx, c.cfg.Paths.RepoDir, "gh", args...)
}

// CheckAuth verifies gh CLI is authenticated
func (c *Client) CheckAuth(ctx context.Context) error {
	if _, err := c.gh(ctx, "auth", "status"); err != nil {
		return fmt.Errorf("not authenticated with GitHub CLI, run 'gh auth login' first: %w", err)
	}
	return nil
}

// OpenRollingPR returns the open PR whose head is the fork's PR branch, or
// nil when none exists.
func (c *Client) OpenRollingPR(ctx context.Context) (*models.PullRequest, error) {
	res, err := c.gh(ctx, "pr", "list",
		"--repo", c.cfg.GitHub.UpstreamRepo,
		"--head", c.cfg.PRHead(),
		"--state", "open",
		"--json", "number,url",
		"--limit", "1",
	)
	if err != nil {
		return nil, fmt.Errorf("gh pr list: %w", err)
	}

	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return nil, nil
	}

	var prs []models.PullRequest
	if err := json.Unmarshal([]byte(out), &prs); err != nil {
		return nil, fmt.Errorf("parse gh pr list output: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return &prs[0], nil
}

// ClosePR closes the given PR on the upstream repository.
func (c *Client) ClosePR(ctx context.Context, number uint64) error {
	_, err := c.gh(ctx, "pr", "close",
		strconv.FormatUint(number, 10),
		"--repo", c.cfg.GitHub.UpstreamRepo,
	)
	if err != nil {
		return fmt.Errorf("gh pr close #%d: %w", number, err)
	}
	return nil
}

// CreatePR opens a pull request from the fork's PR branch to upstream main.
// A hosting-side "already exists" rejection counts as success and returns a
// nil PullRequest.
func (c *Client) CreatePR(ctx context.Context, title, body string) (*models.PullRequest, error) {
	res, err := c.gh(ctx, "pr", "create",
		"--repo", c.cfg.GitHub.UpstreamRepo,
		"--head", c.cfg.PRHead(),
		"--base", c.cfg.GitHub.MainBranch,
		"--title", title,
		"--body", body,
	)
	if err != nil {
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) && strings.Contains(strings.ToLower(exitErr.Stderr), "already exists") {
			return nil, nil
		}
		return nil, fmt.Errorf("gh pr create: %w", err)
	}

	// gh pr create outputs the URL
	url := strings.TrimSpace(res.Stdout)

	// Extract PR number from URL (e.g., https://github.com/org/repo/pull/123)
	parts := strings.Split(url, "/")
	var number uint64
	if len(parts) > 0 {
		number, _ = strconv.ParseUint(parts[len(parts)-1], 10, 64)
	}

	return &models.PullRequest{
		Number: number,
		URL:    url,
		State:  "open",
	}, nil
}

// SyncForkBranch force-syncs a local branch to the fork through gh, which
// carries its own authentication. Callers fall back to a plain forced git
// push when this fails.
func (c *Client) SyncForkBranch(ctx context.Context, branch string) error {
	_, err := c.gh(ctx, "repo", "sync",
		"--source", ".:"+branch,
		"--force",
	)
	if err != nil {
		return fmt.Errorf("gh repo sync %s: %w", branch, err)
	}
	return nil
}
