package cmake

import (
	"context"

	"github.com/fuzzyvault/vaultbuild/internal/run"
)

// recordingExecer records every command instead of executing it.
type recordingExecer struct {
	cmds []run.Cmd
	err  error
}

func (r *recordingExecer) Run(ctx context.Context, c run.Cmd) error {
	r.cmds = append(r.cmds, c)
	return r.err
}
