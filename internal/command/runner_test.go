package command

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestScrubEnvRemovesGitHubToken(t *testing.T) {
	env := []string{"PATH=/usr/bin", "GITHUB_TOKEN=abc123", "HOME=/home/x"}

	got := scrubEnv(env)

	for _, kv := range got {
		if strings.HasPrefix(kv, "GITHUB_TOKEN=") {
			t.Fatalf("GITHUB_TOKEN survived the scrub: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %v", got)
	}
}

func TestRunCapturesStdout(t *testing.T) {
	r := NewExecRunner()

	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "hello" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
}

func TestRunClassifiesNonZeroExit(t *testing.T) {
	r := NewExecRunner()

	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo oops >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", err)
	}
	if exitErr.ExitCode != 3 {
		t.Errorf("exit code = %d", exitErr.ExitCode)
	}
	if !strings.Contains(exitErr.Stderr, "oops") {
		t.Errorf("stderr = %q", exitErr.Stderr)
	}
	if res.ExitCode != 3 {
		t.Errorf("result exit code = %d", res.ExitCode)
	}
}

func TestRunReportsStartFailure(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), t.TempDir(), "definitely-not-a-binary-xyz")
	if err == nil {
		t.Fatal("expected error")
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("start failure should not be an ExitError: %v", err)
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Name: "git", Args: []string{"push"}, ExitCode: 128, Stderr: "denied\n"}

	msg := err.Error()
	if !strings.Contains(msg, "git push") || !strings.Contains(msg, "128") || !strings.Contains(msg, "denied") {
		t.Errorf("message = %q", msg)
	}
}
