package git

import (
	"context"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
)

// StashScope protects uncommitted work across a branch switch. Begin stashes
// everything including untracked files; Release checks the given branch back
// out and pops the stash. Both halves are best-effort: an empty stash or a
// pop with nothing to apply is normal, and a failed checkout must not stop
// the pop attempt.
//
// Release is safe to defer on every exit path, which is what gives the PR
// cycle its "always end on main" guarantee.
type StashScope struct {
	runner command.Runner
	dir    string
}

// BeginStash stashes the working tree and returns the scope.
func BeginStash(ctx context.Context, runner command.Runner, dir string) *StashScope {
	s := &StashScope{runner: runner, dir: dir}
	_, _ = runner.Run(ctx, dir, "git", "stash", "--include-untracked")
	return s
}

// Release returns the tree to branch and restores the stashed work.
func (s *StashScope) Release(ctx context.Context, branch string) {
	_, _ = s.runner.Run(ctx, s.dir, "git", "checkout", branch)
	_, _ = s.runner.Run(ctx, s.dir, "git", "stash", "pop")
}
