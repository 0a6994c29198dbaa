// Package run executes the external build tools (cmake, make, tar,
// OpenSSL's Configure) and converts non-zero exits into ToolFailure
// errors carrying the failing step's context.
package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Cmd describes one external invocation.
type Cmd struct {
	// Step names the orchestration step for error reporting
	// (e.g. "openssl configure", "cmake build").
	Step string

	Path string
	Args []string

	// Dir is the working directory; empty means inherit.
	Dir string

	// Env is overlaid on the parent environment.
	Env map[string]string
}

// ToolFailure reports a build tool exiting non-zero. Per the fail-fast
// policy it aborts the whole run; it is never retried.
type ToolFailure struct {
	Step     string
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolFailure) Error() string {
	msg := fmt.Sprintf("%s: %s exited with status %d", e.Step, e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *ToolFailure) Unwrap() error { return e.Err }

// Runner runs external commands. The zero value is quiet: child output
// is captured and surfaced only on failure.
type Runner struct {
	// Verbose streams child stdout/stderr to the parent's.
	Verbose bool

	// Stdout/Stderr override the verbose destinations. Nil means
	// os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes c and blocks until it exits. A non-zero exit (or failure
// to start) returns a *ToolFailure.
func (r *Runner) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}

	var captured bytes.Buffer
	if r.Verbose {
		cmd.Stdout = r.stdout()
		cmd.Stderr = r.stderr()
	} else {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return &ToolFailure{
			Step:     c.Step,
			Command:  strings.Join(append([]string{c.Path}, c.Args...), " "),
			ExitCode: exitCode,
			Stderr:   tail(captured.String(), 20),
			Err:      err,
		}
	}
	return nil
}

// Output executes c and returns its trimmed stdout.
func (r *Runner) Output(ctx context.Context, c Cmd) (string, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return "", &ToolFailure{
			Step:     c.Step,
			Command:  strings.Join(append([]string{c.Path}, c.Args...), " "),
			ExitCode: exitCode,
			Stderr:   tail(stderr.String(), 20),
			Err:      err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// tail keeps the last n lines of captured output for error context.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func mergeEnv(base []string, overlay map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(overlay))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overlay {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
