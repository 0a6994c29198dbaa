package sdk

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fuzzyvault/vaultbuild/internal/ndk"
	"github.com/fuzzyvault/vaultbuild/internal/run"
)

// fakeCMake records commands and mimics cmake's observable effect:
// "cmake --build" drops libraries into the build directory. failWhen,
// if set, makes a matching command exit non-zero.
type fakeCMake struct {
	cmds     []run.Cmd
	failWhen func(run.Cmd) bool
}

func (f *fakeCMake) Run(ctx context.Context, c run.Cmd) error {
	f.cmds = append(f.cmds, c)
	if f.failWhen != nil && f.failWhen(c) {
		return &run.ToolFailure{Step: c.Step, Command: c.Path, ExitCode: 2}
	}
	if c.Step == "cmake build" && len(c.Args) >= 2 {
		buildDir := c.Args[1]
		for _, name := range []string{"libfuzzyvault.so", "libfuzzyvault.a"} {
			if err := os.WriteFile(filepath.Join(buildDir, name), []byte(name), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeCMake) count(step string) int {
	n := 0
	for _, c := range f.cmds {
		if c.Step == step {
			n++
		}
	}
	return n
}

// fakeStager counts Stage calls and optionally fails.
type fakeStager struct {
	calls int
	err   error
	last  ndk.Target
}

func (f *fakeStager) Stage(ctx context.Context, target ndk.Target, api int) error {
	f.calls++
	f.last = target
	return f.err
}
