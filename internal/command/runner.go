// Package command executes the external git and gh tools the daemon is built
// around. Commands run synchronously with captured output; GITHUB_TOKEN is
// stripped from the child environment so gh always uses its own stored
// authentication.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result captures the output of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs an external command in a working directory.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (Result, error)
}

// ExitError reports a command that started but exited non-zero.
type ExitError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Name, strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args in dir and waits for it to finish. There is no
// timeout beyond ctx: a hung tool blocks the caller.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = scrubEnv(os.Environ())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{
			Name:     name,
			Args:     args,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	// Start failure: binary missing, permission denied, ctx cancelled.
	res.ExitCode = -1
	return res, fmt.Errorf("start %s: %w", name, err)
}

// scrubEnv drops GITHUB_TOKEN so gh relies on its keyring-managed login
// instead of an ambient token with different scopes.
func scrubEnv(env []string) []string {
	out := env[:0:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "GITHUB_TOKEN=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
