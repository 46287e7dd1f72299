package github

import (
	"context"
	"errors"
	"testing"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/testsupport"
)

func testClient() (*Client, *testsupport.ScriptedRunner) {
	cfg := config.DefaultConfig()
	cfg.GitHub.ForkRepo = "someone/fork"
	cfg.GitHub.UpstreamRepo = "org/upstream"
	runner := testsupport.NewScriptedRunner()
	return NewClient(cfg, runner), runner
}

func TestOpenRollingPRFound(t *testing.T) {
	c, runner := testClient()
	runner.Stub("gh pr list", testsupport.Response{
		Stdout: `[{"number":42,"url":"https://github.com/org/upstream/pull/42"}]`,
	})

	pr, err := c.OpenRollingPR(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr == nil || pr.Number != 42 {
		t.Fatalf("pr = %+v", pr)
	}

	if runner.CallIndex("gh pr list --repo org/upstream --head someone:scraper-updates --state open") == -1 {
		t.Errorf("list args wrong: %v", runner.Calls())
	}
}

func TestOpenRollingPRNone(t *testing.T) {
	c, runner := testClient()
	runner.Stub("gh pr list", testsupport.Response{Stdout: "[]\n"})

	pr, err := c.OpenRollingPR(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr != nil {
		t.Errorf("pr = %+v, want nil", pr)
	}
}

func TestOpenRollingPREmptyOutput(t *testing.T) {
	c, runner := testClient()
	runner.Stub("gh pr list", testsupport.Response{Stdout: ""})

	pr, err := c.OpenRollingPR(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr != nil {
		t.Errorf("pr = %+v, want nil", pr)
	}
}

func TestClosePR(t *testing.T) {
	c, runner := testClient()

	if err := c.ClosePR(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.CallIndex("gh pr close 42 --repo org/upstream") == -1 {
		t.Errorf("close args wrong: %v", runner.Calls())
	}
}

func TestCreatePRParsesURL(t *testing.T) {
	c, runner := testClient()
	runner.Stub("gh pr create", testsupport.Response{
		Stdout: "https://github.com/org/upstream/pull/123\n",
	})

	pr, err := c.CreatePR(context.Background(), "title", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr == nil || pr.Number != 123 {
		t.Fatalf("pr = %+v", pr)
	}
	if pr.State != "open" {
		t.Errorf("state = %q", pr.State)
	}
}

func TestCreatePRAlreadyExistsIsSuccess(t *testing.T) {
	c, runner := testClient()
	runner.Stub("gh pr create", testsupport.Response{
		Err: &command.ExitError{
			Name:     "gh",
			ExitCode: 1,
			Stderr:   "GraphQL: A pull request Already Exists for someone:scraper-updates",
		},
	})

	pr, err := c.CreatePR(context.Background(), "title", "body")
	if err != nil {
		t.Fatalf("already-exists must be treated as success, got %v", err)
	}
	if pr != nil {
		t.Errorf("pr = %+v, want nil for idempotent create", pr)
	}
}

func TestCreatePROtherFailure(t *testing.T) {
	c, runner := testClient()
	runner.Stub("gh pr create", testsupport.Response{
		Err: &command.ExitError{Name: "gh", ExitCode: 1, Stderr: "validation failed"},
	})

	if _, err := c.CreatePR(context.Background(), "title", "body"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckAuth(t *testing.T) {
	c, runner := testClient()

	if err := c.CheckAuth(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner.Stub("gh auth status", testsupport.Response{Err: errors.New("not logged in")})
	if err := c.CheckAuth(context.Background()); err == nil {
		t.Fatal("expected auth error")
	}
}

func TestSyncForkBranch(t *testing.T) {
	c, runner := testClient()

	if err := c.SyncForkBranch(context.Background(), "scraper-updates"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.CallIndex("gh repo sync --source .:scraper-updates --force") == -1 {
		t.Errorf("sync args wrong: %v", runner.Calls())
	}
}
