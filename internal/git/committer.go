package git

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
)

// Committer records scraper output in the working tree. Content and log
// commits are kept separate so the log churn never hides real changes.
type Committer struct {
	cfg    *config.Config
	runner command.Runner
	now    func() time.Time
}

func NewCommitter(cfg *config.Config, runner command.Runner) *Committer {
	return &Committer{cfg: cfg, runner: runner, now: time.Now}
}

func (c *Committer) git(ctx context.Context, args ...string) (command.Result, error) {
	return c.runner.Run(ctx, c.cfg.Paths.RepoDir, "git", args...)
}

// HasLocalChanges reports whether the working tree has uncommitted
// modifications, staged or not.
func (c *Committer) HasLocalChanges(ctx context.Context) (bool, error) {
	res, err := c.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// CommitChanges stages and commits everything in the tree. It returns false
// without issuing any command when the tree is already clean, so calling it
// twice in a row is a no-op.
func (c *Committer) CommitChanges(ctx context.Context) (bool, error) {
	dirty, err := c.HasLocalChanges(ctx)
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}

	if _, err := c.git(ctx, "add", "-A"); err != nil {
		return false, fmt.Errorf("stage changes: %w", err)
	}

	msg := fmt.Sprintf("chore(scraper): auto-scrape %s", c.now().Format("2006-01-02 15:04"))
	if _, err := c.git(ctx, "commit", "-m", msg); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// CommitLogs commits the scraper log file alone. The commit only happens when
// staging actually changed the log's blob; otherwise git would reject an
// empty commit.
func (c *Committer) CommitLogs(ctx context.Context) error {
	if _, err := os.Stat(c.cfg.LogPath()); err != nil {
		return nil
	}

	if _, err := c.git(ctx, "add", c.cfg.Paths.LogFile); err != nil {
		return fmt.Errorf("stage log file: %w", err)
	}

	res, err := c.git(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return fmt.Errorf("inspect staged paths: %w", err)
	}
	if !stagedContains(res.Stdout, c.cfg.Paths.LogFile) {
		return nil
	}

	if _, err := c.git(ctx, "commit", "-m", "chore(logs): update scraper logs"); err != nil {
		return fmt.Errorf("commit logs: %w", err)
	}
	return nil
}

func stagedContains(diffOutput, path string) bool {
	for _, line := range strings.Split(diffOutput, "\n") {
		if strings.TrimSpace(line) == path {
			return true
		}
	}
	return false
}
