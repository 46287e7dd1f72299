package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
)

// Syncer keeps the local working tree in step with the upstream repository.
type Syncer struct {
	cfg    *config.Config
	runner command.Runner
}

func NewSyncer(cfg *config.Config, runner command.Runner) *Syncer {
	return &Syncer{cfg: cfg, runner: runner}
}

func (s *Syncer) git(ctx context.Context, args ...string) (command.Result, error) {
	return s.runner.Run(ctx, s.cfg.Paths.RepoDir, "git", args...)
}

// SetupRemotes ensures the upstream remote exists and origin points at the
// fork. Run once at startup before the first cycle.
func (s *Syncer) SetupRemotes(ctx context.Context) error {
	res, err := s.git(ctx, "remote", "-v")
	if err != nil {
		return fmt.Errorf("list remotes: %w", err)
	}

	if !strings.Contains(res.Stdout, "upstream") {
		if _, err := s.git(ctx, "remote", "add", "upstream", s.cfg.UpstreamURL()); err != nil {
			return fmt.Errorf("add upstream remote: %w", err)
		}
	}

	if _, err := s.git(ctx, "remote", "set-url", "origin", s.cfg.ForkURL()); err != nil {
		return fmt.Errorf("point origin at fork: %w", err)
	}
	return nil
}

// SyncWithUpstream fetches the upstream main branch and merges it when the
// local HEAD is behind. It returns true when a merge happened. Local
// modifications are stashed around the merge best-effort; a stash with
// nothing to save is not an error.
func (s *Syncer) SyncWithUpstream(ctx context.Context) (bool, error) {
	main := s.cfg.GitHub.MainBranch

	if _, err := s.git(ctx, "fetch", "upstream", main); err != nil {
		return false, fmt.Errorf("fetch upstream: %w", err)
	}

	behind, err := s.BehindCount(ctx)
	if err != nil {
		return false, err
	}
	if behind == 0 {
		return false, nil
	}

	_, _ = s.git(ctx, "stash")

	if _, err := s.git(ctx, "checkout", main); err != nil {
		return false, fmt.Errorf("checkout %s: %w", main, err)
	}
	if _, err := s.git(ctx, "merge", "upstream/"+main, "--no-edit"); err != nil {
		return false, fmt.Errorf("merge upstream/%s: %w", main, err)
	}

	_, _ = s.git(ctx, "stash", "pop")

	return true, nil
}

// BehindCount counts commits reachable from upstream main but not from HEAD.
func (s *Syncer) BehindCount(ctx context.Context) (int, error) {
	res, err := s.git(ctx, "rev-list", "--count",
		fmt.Sprintf("HEAD..upstream/%s", s.cfg.GitHub.MainBranch))
	if err != nil {
		return 0, fmt.Errorf("count commits behind: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0, fmt.Errorf("parse rev-list output %q: %w", res.Stdout, err)
	}
	return n, nil
}

// PushMain pushes the main branch to the fork remote.
func (s *Syncer) PushMain(ctx context.Context) error {
	if _, err := s.git(ctx, "push", "origin", s.cfg.GitHub.MainBranch); err != nil {
		return fmt.Errorf("push %s: %w", s.cfg.GitHub.MainBranch, err)
	}
	return nil
}
