// Package daemon holds the scheduling loop. The scheduler owns the two
// interval checkpoints and is the only place that logs stage failures and
// decides whether a tick continues; the workflow packages just return
// outcomes.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/git"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/pr"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/scraper"
)

// Stage identifies where in a tick a failure happened.
type Stage string

const (
	StageSync       Stage = "sync"
	StageScrape     Stage = "scrape"
	StageCommit     Stage = "commit"
	StageCommitLogs Stage = "commit_logs"
	StagePushMain   Stage = "push_main"
	StagePR         Stage = "pr"
)

// Scheduler runs sync and PR cycles on independent intervals from a single
// goroutine. Checkpoints start at the zero time, so the first tick always
// fires both cycles no matter how long the intervals are.
type Scheduler struct {
	cfg       *config.Config
	log       *slog.Logger
	syncer    *git.Syncer
	committer *git.Committer
	invoker   *scraper.Invoker
	prman     *pr.Manager

	now func() time.Time

	lastSync time.Time
	lastPR   time.Time
}

func NewScheduler(
	cfg *config.Config,
	log *slog.Logger,
	syncer *git.Syncer,
	committer *git.Committer,
	invoker *scraper.Invoker,
	prman *pr.Manager,
) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		log:       log,
		syncer:    syncer,
		committer: committer,
		invoker:   invoker,
		prman:     prman,
		now:       time.Now,
	}
}

// Run ticks until ctx is cancelled. In once mode exactly one tick executes.
// A panic escaping a stage is logged and re-raised; everything else is
// contained within its stage.
func (s *Scheduler) Run(ctx context.Context, once bool) error {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("daemon error, exiting", "panic", r)
			panic(r)
		}
	}()

	for {
		s.Tick(ctx)

		if once {
			s.log.Info("run once mode, exiting")
			return nil
		}

		select {
		case <-ctx.Done():
			s.log.Info("daemon stopped")
			return nil
		case <-time.After(s.cfg.PollPeriod()):
		}
	}
}

// Tick runs whichever cycles are due and advances their checkpoints. Cycle
// failures never abort the tick.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()

	if now.Sub(s.lastSync) >= s.cfg.SyncInterval() {
		s.runSyncCycle(ctx)
		s.lastSync = now
	}

	if now.Sub(s.lastPR) >= s.cfg.PRInterval() {
		s.runPRCycle(ctx)
		s.lastPR = now
	}
}

func (s *Scheduler) runSyncCycle(ctx context.Context) {
	s.log.Info("starting sync cycle")

	merged, err := s.syncer.SyncWithUpstream(ctx)
	switch {
	case err != nil:
		s.log.Error("failed to sync with upstream", "stage", StageSync, "error", err)
	case merged:
		s.log.Info("synced with upstream")
	default:
		s.log.Info("already up to date with upstream")
	}

	result, err := s.invoker.ScrapeNew(ctx)
	if err != nil {
		// Treated as zero successes and zero failures.
		s.log.Error("scraper error", "stage", StageScrape, "error", err)
	} else if !result.Empty() {
		s.log.Info("scraper results", "scraped", result.Scraped, "failed", result.Failed)
	}

	committed, err := s.committer.CommitChanges(ctx)
	if err != nil {
		s.log.Error("failed to commit changes", "stage", StageCommit, "error", err)
	} else if committed {
		s.log.Info("committed scraped changes")
	}

	if err := s.committer.CommitLogs(ctx); err != nil {
		s.log.Error("failed to commit logs", "stage", StageCommitLogs, "error", err)
	}

	s.log.Info("sync cycle complete")
}

func (s *Scheduler) runPRCycle(ctx context.Context) {
	s.log.Info("starting pr cycle")

	if err := s.syncer.PushMain(ctx); err != nil {
		// Best effort; the PR branch push below is what matters.
		s.log.Warn("failed to push main to fork", "stage", StagePushMain, "error", err)
	}

	out, err := s.prman.ManagePR(ctx)
	if out.QueryErr != nil {
		s.log.Warn("could not check for open pr", "stage", StagePR, "error", out.QueryErr)
	}
	if out.Closed != nil {
		s.log.Info("closed previous pr", "number", out.Closed.Number)
	}
	if out.CloseErr != nil {
		s.log.Warn("failed to close previous pr", "stage", StagePR, "error", out.CloseErr)
	}
	if out.Pushed {
		s.log.Info("pushed snapshot to pr branch", "branch", s.cfg.GitHub.PRBranch)
	}

	switch {
	case err != nil:
		s.log.Error("pr cycle failed", "stage", StagePR, "error", err)
	case out.Created != nil:
		s.log.Info("created pr", "number", out.Created.Number, "url", out.Created.URL)
	default:
		s.log.Info("pr already exists")
	}

	s.verifyOnMain()
	s.log.Info("pr cycle complete")
}

// verifyOnMain checks the end-of-cycle invariant: whatever the PR cycle did,
// the working tree must be back on the main branch.
func (s *Scheduler) verifyOnMain() {
	branch, err := git.CurrentBranch(s.cfg.Paths.RepoDir)
	if err != nil {
		return
	}
	if branch != s.cfg.GitHub.MainBranch {
		s.log.Error("working tree left off main after pr cycle",
			"branch", branch, "want", s.cfg.GitHub.MainBranch)
	}
}
