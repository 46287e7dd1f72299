// Package testsupport provides shared test doubles for packages that drive
// external commands.
package testsupport

import (
	"context"
	"strings"
	"sync"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
)

// ScriptedRunner implements command.Runner for tests. Every call is recorded
// as a single command line; replies come from scripted responses matched by
// the longest command-line prefix. Unscripted commands succeed with empty
// output.
type ScriptedRunner struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]Response
}

// Response is what a scripted command returns.
type Response struct {
	Stdout string
	Stderr string
	Err    error
}

func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{responses: map[string]Response{}}
}

// Stub registers a response for every command line starting with prefix.
func (r *ScriptedRunner) Stub(prefix string, resp Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = resp
}

// Run records the call and replies from the longest matching stub.
func (r *ScriptedRunner) Run(_ context.Context, _ string, name string, args ...string) (command.Result, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, line)

	var best string
	found := false
	for prefix := range r.responses {
		if strings.HasPrefix(line, prefix) && (!found || len(prefix) > len(best)) {
			best = prefix
			found = true
		}
	}
	if !found {
		return command.Result{}, nil
	}

	resp := r.responses[best]
	res := command.Result{Stdout: resp.Stdout, Stderr: resp.Stderr}
	if resp.Err != nil {
		res.ExitCode = 1
	}
	return res, resp.Err
}

// Calls returns every recorded command line in execution order.
func (r *ScriptedRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CallIndex returns the position of the first call starting with prefix, or
// -1 when it never ran.
func (r *ScriptedRunner) CallIndex(prefix string) int {
	for i, line := range r.Calls() {
		if strings.HasPrefix(line, prefix) {
			return i
		}
	}
	return -1
}

// Reset clears the recorded calls but keeps the stubs.
func (r *ScriptedRunner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
