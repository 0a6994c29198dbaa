package run

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

func TestRunSuccess(t *testing.T) {
	requireShell(t)

	r := &Runner{}
	err := r.Run(context.Background(), Cmd{
		Step: "noop",
		Path: "sh",
		Args: []string{"-c", "exit 0"},
	})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
}

func TestRunFailure(t *testing.T) {
	requireShell(t)

	r := &Runner{}
	err := r.Run(context.Background(), Cmd{
		Step: "compile",
		Path: "sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})
	if err == nil {
		t.Fatal("Run = nil, want ToolFailure")
	}

	var tf *ToolFailure
	if !errors.As(err, &tf) {
		t.Fatalf("error is %T, want *ToolFailure", err)
	}
	if tf.Step != "compile" {
		t.Errorf("Step = %q, want compile", tf.Step)
	}
	if tf.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", tf.ExitCode)
	}
	if !strings.Contains(tf.Stderr, "broken") {
		t.Errorf("Stderr = %q, want captured output", tf.Stderr)
	}
	if !strings.Contains(tf.Error(), "compile") {
		t.Errorf("Error() = %q, want step context", tf.Error())
	}
}

func TestRunEnvOverlay(t *testing.T) {
	requireShell(t)

	r := &Runner{}
	out, err := r.Output(context.Background(), Cmd{
		Step: "env",
		Path: "sh",
		Args: []string{"-c", "printf '%s' \"$VAULTBUILD_TEST\""},
		Env:  map[string]string{"VAULTBUILD_TEST": "overlay"},
	})
	if err != nil {
		t.Fatalf("Output = %v, want nil", err)
	}
	if out != "overlay" {
		t.Errorf("output = %q, want overlay", out)
	}
}

func TestRunDir(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	r := &Runner{}
	out, err := r.Output(context.Background(), Cmd{
		Step: "pwd",
		Path: "sh",
		Args: []string{"-c", "pwd -P"},
		Dir:  dir,
	})
	if err != nil {
		t.Fatalf("Output = %v, want nil", err)
	}
	if out == "" {
		t.Fatal("Output returned empty working directory")
	}
}

func TestVerboseStreams(t *testing.T) {
	requireShell(t)

	var stdout, stderr bytes.Buffer
	r := &Runner{Verbose: true, Stdout: &stdout, Stderr: &stderr}
	err := r.Run(context.Background(), Cmd{
		Step: "echo",
		Path: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if !strings.Contains(stdout.String(), "out") {
		t.Errorf("stdout = %q, want streamed output", stdout.String())
	}
	if !strings.Contains(stderr.String(), "err") {
		t.Errorf("stderr = %q, want streamed output", stderr.String())
	}
}

func TestTail(t *testing.T) {
	if got := tail("", 5); got != "" {
		t.Errorf("tail(empty) = %q", got)
	}
	long := strings.Repeat("line\n", 30) + "last"
	got := tail(long, 5)
	if lines := strings.Split(got, "\n"); len(lines) != 5 {
		t.Errorf("tail kept %d lines, want 5", len(lines))
	}
	if !strings.HasSuffix(got, "last") {
		t.Errorf("tail = %q, want to keep the end", got)
	}
}

func TestMergeEnvOverride(t *testing.T) {
	merged := mergeEnv([]string{"A=1", "B=2"}, map[string]string{"B": "override", "C": "3"})
	want := []string{"A=1", "B=override", "C=3"}
	if len(merged) != len(want) {
		t.Fatalf("mergeEnv = %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("mergeEnv[%d] = %q, want %q", i, merged[i], want[i])
		}
	}
}
