package stage

import (
	"context"

	"github.com/fuzzyvault/vaultbuild/internal/run"
)

// recordingExecer records commands instead of executing them. When
// failAt matches a step name the step fails, like a broken tool.
type recordingExecer struct {
	cmds   []run.Cmd
	failAt string
}

func (r *recordingExecer) Run(ctx context.Context, c run.Cmd) error {
	r.cmds = append(r.cmds, c)
	if r.failAt != "" && c.Step == r.failAt {
		return &run.ToolFailure{Step: c.Step, Command: c.Path, ExitCode: 2}
	}
	return nil
}

func (r *recordingExecer) steps() []string {
	out := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = c.Step
	}
	return out
}
