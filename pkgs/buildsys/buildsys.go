// Package buildsys defines the shared surface of the native build
// helpers (CMake, configure-script) driven by the orchestrator.
package buildsys

import (
	"context"

	"github.com/fuzzyvault/vaultbuild/internal/run"
)

// Execer runs one external command. *run.Runner is the production
// implementation; tests substitute recorders.
type Execer interface {
	Run(ctx context.Context, c run.Cmd) error
}

// BuildSystem captures the common lifecycle of the build helpers.
// Implementations add their own extras (generators, defines, targets).
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helpers.
	Env(key, val string)

	// Use injects an installed dependency prefix into the build
	// environment so headers and libraries under it are found.
	Use(prefix string)

	// Lifecycle. Every step blocks on an external subprocess and
	// returns its failure unretried.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Install(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}
