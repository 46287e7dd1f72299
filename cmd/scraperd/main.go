package main

// Must be first import - fixes Warp terminal delay before lipgloss loads
import _ "github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/termfix"

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/daemon"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/git"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/github"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/logging"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/pr"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/scraper"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/ui"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/update"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var runOnce bool

func main() {
	rootCmd := &cobra.Command{
		Use:          "scraperd",
		Short:        "News scraper daemon: syncs the fork with upstream, scrapes new URLs, maintains the rolling PR",
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().BoolVar(&runOnce, "once", false, "Run one sync+scrape+PR cycle and exit")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.GitHub.MainBranch == "" {
		cfg.GitHub.MainBranch = git.DetectMainBranch(cfg.Paths.RepoDir)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{FilePath: cfg.LogPath()})
	if err != nil {
		return err
	}
	defer closeLog()

	if termenv.NewOutput(os.Stdout).Profile != termenv.Ascii {
		fmt.Println(ui.RenderBanner(runOnce))
		fmt.Println(ui.RenderSetting("fork", cfg.GitHub.ForkRepo))
		fmt.Println(ui.RenderSetting("upstream", cfg.GitHub.UpstreamRepo))
		fmt.Println()
	}

	logger.Info("news scraper daemon starting",
		"fork", cfg.GitHub.ForkRepo,
		"upstream", cfg.GitHub.UpstreamRepo,
		"sync_interval", cfg.SyncInterval().String(),
		"pr_interval", cfg.PRInterval().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := command.NewExecRunner()
	gh := github.NewClient(cfg, runner)

	if err := gh.CheckAuth(ctx); err != nil {
		logger.Error("gh cli is not authenticated", "error", err)
		return err
	}
	logger.Info("gh cli authenticated")

	if !git.IsRepo(cfg.Paths.RepoDir) {
		return fmt.Errorf("%s is not a git repository", cfg.Paths.RepoDir)
	}

	syncer := git.NewSyncer(cfg, runner)
	if err := syncer.SetupRemotes(ctx); err != nil {
		return fmt.Errorf("setup git remotes: %w", err)
	}
	logger.Info("configured git remotes")

	if cfg.ShouldCheckForUpdate() {
		if rel, err := update.CheckForUpdate(ctx, runner, cfg.Paths.RepoDir, Version, cfg.Update.Repo); err == nil && rel != nil {
			logger.Info("newer scraperd release available", "tag", rel.TagName)
		}
		cfg.RecordUpdateCheck()
		_ = cfg.Save()
	}

	committer := git.NewCommitter(cfg, runner)
	invoker := scraper.NewInvoker(scraper.NewExecScraper(cfg, runner))
	prman := pr.NewManager(cfg, runner, gh)

	sched := daemon.NewScheduler(cfg, logger, syncer, committer, invoker, prman)
	return sched.Run(ctx, runOnce)
}
