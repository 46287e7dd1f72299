package pr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/github"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/testsupport"
)

func testManager(t *testing.T) (*Manager, *testsupport.ScriptedRunner) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.GitHub.ForkRepo = "someone/fork"
	cfg.GitHub.UpstreamRepo = "org/upstream"
	cfg.Paths.RepoDir = t.TempDir()

	runner := testsupport.NewScriptedRunner()
	m := NewManager(cfg, runner, github.NewClient(cfg, runner))
	m.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	}
	return m, runner
}

func TestManagePRReplacesExistingPR(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("gh pr list", testsupport.Response{
		Stdout: `[{"number":42,"url":"https://github.com/org/upstream/pull/42"}]`,
	})
	runner.Stub("git branch --list", testsupport.Response{Stdout: "  scraper-updates\n"})
	runner.Stub("gh pr create", testsupport.Response{
		Stdout: "https://github.com/org/upstream/pull/43\n",
	})

	out, err := m.ManagePR(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Closed == nil || out.Closed.Number != 42 {
		t.Errorf("closed = %+v", out.Closed)
	}
	if !out.Pushed {
		t.Error("push should have succeeded")
	}
	if out.Created == nil || out.Created.Number != 43 {
		t.Errorf("created = %+v", out.Created)
	}

	// The old PR closes before any branch surgery starts.
	closeIdx := runner.CallIndex("gh pr close 42")
	branchIdx := runner.CallIndex("git branch --list")
	if closeIdx == -1 || branchIdx == -1 || closeIdx > branchIdx {
		t.Errorf("close must precede the branch push: %v", runner.Calls())
	}

	// Existing branch is reset to main, not recreated.
	if runner.CallIndex("git checkout scraper-updates") == -1 ||
		runner.CallIndex("git reset --hard main") == -1 {
		t.Errorf("branch reset missing: %v", runner.Calls())
	}

	// Cycle ends back on main with the stash restored.
	calls := runner.Calls()
	last := calls[len(calls)-3:]
	if last[0] != "git checkout main" || last[1] != "git stash pop" {
		t.Errorf("trailing calls = %v", last)
	}
}

func TestManagePRNoExistingPR(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("gh pr list", testsupport.Response{Stdout: "[]"})
	runner.Stub("gh pr create", testsupport.Response{
		Stdout: "https://github.com/org/upstream/pull/1\n",
	})

	out, err := m.ManagePR(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Closed != nil {
		t.Errorf("closed = %+v, want nil", out.Closed)
	}
	if runner.CallIndex("gh pr close") != -1 {
		t.Errorf("nothing should be closed: %v", runner.Calls())
	}
	// No local branch yet: created fresh from main.
	if runner.CallIndex("git checkout -b scraper-updates main") == -1 {
		t.Errorf("fresh branch creation missing: %v", runner.Calls())
	}
}

func TestPushToPRBranchFallsBackToForcedPush(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("gh repo sync", testsupport.Response{
		Err: &command.ExitError{Name: "gh", ExitCode: 1, Stderr: "sync unsupported"},
	})

	if err := m.PushToPRBranch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.CallIndex("git push origin scraper-updates --force") == -1 {
		t.Errorf("forced push fallback missing: %v", runner.Calls())
	}
}

func TestPushToPRBranchSkipsFallbackWhenSyncWorks(t *testing.T) {
	m, runner := testManager(t)

	if err := m.PushToPRBranch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.CallIndex("git push origin scraper-updates --force") != -1 {
		t.Errorf("fallback push should not run after a clean sync: %v", runner.Calls())
	}
}

func TestPushToPRBranchRecoversOnFailure(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("git branch --list", testsupport.Response{Stdout: "  scraper-updates\n"})
	runner.Stub("git checkout scraper-updates", testsupport.Response{
		Err: errors.New("dirty tree"),
	})

	err := m.PushToPRBranch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	// Error path still returns to main and restores the stash.
	calls := runner.Calls()
	if len(calls) < 2 {
		t.Fatalf("calls = %v", calls)
	}
	if calls[len(calls)-2] != "git checkout main" || calls[len(calls)-1] != "git stash pop" {
		t.Errorf("recovery calls missing: %v", calls)
	}
}

func TestManagePRSurfacesPushFailure(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("gh pr list", testsupport.Response{Stdout: "[]"})
	runner.Stub("git branch --list", testsupport.Response{
		Err: errors.New("git broke"),
	})

	out, err := m.ManagePR(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if out.Pushed {
		t.Error("pushed should be false")
	}
	if runner.CallIndex("gh pr create") != -1 {
		t.Errorf("create must not run after a failed push: %v", runner.Calls())
	}
}

func TestManagePRQueryFailureStillPushes(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("gh pr list", testsupport.Response{
		Err: &command.ExitError{Name: "gh", ExitCode: 1, Stderr: "api down"},
	})
	runner.Stub("gh pr create", testsupport.Response{
		Stdout: "https://github.com/org/upstream/pull/7\n",
	})

	out, err := m.ManagePR(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.QueryErr == nil {
		t.Error("query error should be recorded")
	}
	if !out.Pushed || out.Created == nil {
		t.Errorf("outcome = %+v", out)
	}
}

func TestCreatePRTitleAndBody(t *testing.T) {
	m, runner := testManager(t)
	runner.Stub("gh pr create", testsupport.Response{
		Stdout: "https://github.com/org/upstream/pull/9\n",
	})

	if _, err := m.createPR(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createCall string
	for _, call := range runner.Calls() {
		if strings.HasPrefix(call, "gh pr create") {
			createCall = call
		}
	}
	if !strings.Contains(createCall, "[Auto-Scraper] News archives update - 2026-08-31 12:00") {
		t.Errorf("title missing from %q", createCall)
	}
	if !strings.Contains(createCall, "Total archived articles**: 0") {
		t.Errorf("archive count missing from %q", createCall)
	}
	if !strings.Contains(createCall, "--head someone:scraper-updates --base main") {
		t.Errorf("head/base missing from %q", createCall)
	}
}
