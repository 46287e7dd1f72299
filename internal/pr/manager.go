// Package pr maintains the rolling pull request: the single PR that always
// mirrors the fork's main branch. Each cycle closes whatever PR is open,
// rebuilds the PR branch as a fresh snapshot of main, force-pushes it, and
// opens a new PR. Nothing is ever updated in place.
package pr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/git"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/github"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/models"
)

// Manager drives one PR cycle end to end.
type Manager struct {
	cfg    *config.Config
	runner command.Runner
	github *github.Client
	now    func() time.Time
}

func NewManager(cfg *config.Config, runner command.Runner, gh *github.Client) *Manager {
	return &Manager{cfg: cfg, runner: runner, github: gh, now: time.Now}
}

// Outcome records what one PR cycle did. Non-fatal stumbles (lookup or close
// failures) are carried here for the scheduler to log; only a failed push or
// create aborts the cycle and surfaces as the ManagePR error.
type Outcome struct {
	// Closed is the previously open PR this cycle closed, if any
	Closed *models.PullRequest
	// QueryErr is a failed open-PR lookup, treated as "none open"
	QueryErr error
	// CloseErr is a failed close; the cycle still proceeds to push
	CloseErr error
	// Pushed reports whether the PR branch reached the fork
	Pushed bool
	// Created is the fresh PR; nil when the host said it already exists
	Created *models.PullRequest
}

// ManagePR closes the existing rolling PR, replaces the PR branch with a
// snapshot of main, and opens a new PR. Whatever happens, the working tree is
// back on the main branch when it returns.
func (m *Manager) ManagePR(ctx context.Context) (Outcome, error) {
	var out Outcome

	existing, err := m.github.OpenRollingPR(ctx)
	if err != nil {
		out.QueryErr = err
	} else if existing != nil {
		if err := m.github.ClosePR(ctx, existing.Number); err != nil {
			out.CloseErr = err
		} else {
			out.Closed = existing
		}
	}

	if err := m.PushToPRBranch(ctx); err != nil {
		return out, fmt.Errorf("push to %s: %w", m.cfg.GitHub.PRBranch, err)
	}
	out.Pushed = true

	created, err := m.createPR(ctx)
	if err != nil {
		return out, err
	}
	out.Created = created
	return out, nil
}

func (m *Manager) git(ctx context.Context, args ...string) (command.Result, error) {
	return m.runner.Run(ctx, m.cfg.Paths.RepoDir, "git", args...)
}

// PushToPRBranch rebuilds the PR branch from main and force-pushes it to the
// fork. Uncommitted work (including untracked files, like a freshly written
// log) is stashed for the duration; the deferred release checks main back out
// and pops the stash on success and failure alike.
func (m *Manager) PushToPRBranch(ctx context.Context) error {
	branch := m.cfg.GitHub.PRBranch
	main := m.cfg.GitHub.MainBranch

	scope := git.BeginStash(ctx, m.runner, m.cfg.Paths.RepoDir)
	defer scope.Release(ctx, main)

	res, err := m.git(ctx, "branch", "--list", branch)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	if strings.Contains(res.Stdout, branch) {
		if _, err := m.git(ctx, "checkout", branch); err != nil {
			return fmt.Errorf("checkout %s: %w", branch, err)
		}
		if _, err := m.git(ctx, "reset", "--hard", main); err != nil {
			return fmt.Errorf("reset %s to %s: %w", branch, main, err)
		}
	} else {
		if _, err := m.git(ctx, "checkout", "-b", branch, main); err != nil {
			return fmt.Errorf("create %s from %s: %w", branch, main, err)
		}
	}

	// gh carries its own auth; plain forced push is the fallback.
	if err := m.github.SyncForkBranch(ctx, branch); err != nil {
		if _, err := m.git(ctx, "push", "origin", branch, "--force"); err != nil {
			return fmt.Errorf("force push: %w", err)
		}
	}
	return nil
}

func (m *Manager) createPR(ctx context.Context) (*models.PullRequest, error) {
	count := CountArchives(m.cfg.ContentPath())
	ts := m.now().Format("2006-01-02 15:04")

	title := fmt.Sprintf("[Auto-Scraper] News archives update - %s", ts)
	body := fmt.Sprintf(`## Automated News Archive Update

This PR was automatically generated by the news scraper daemon.

### Summary
- **Timestamp**: %s
- **Total archived articles**: %d

### What's included
- Scraped HTML archives of news articles
- Updated URL registry to prevent duplicates
- Scraper activity logs

---
*This PR will be automatically replaced if not merged before the next hourly update.*
`, ts, count)

	return m.github.CreatePR(ctx, title, body)
}
