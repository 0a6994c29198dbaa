package sdk

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fuzzyvault/vaultbuild/internal/ndk"
	"github.com/fuzzyvault/vaultbuild/pkgs/buildsys"
	"github.com/fuzzyvault/vaultbuild/pkgs/buildsys/cmake"
)

// Job is one isolated (ABI, build-type) build attempt. It owns its
// build directory and its SDK output subdirectory; it never touches
// another ABI's.
type Job struct {
	Target    ndk.Target
	API       int
	BuildType string

	// SourceDir is the fuzzyvault native source tree.
	SourceDir string

	// BuildDir is removed and recreated at the start of the job.
	BuildDir string

	// OutDir is <sdkRoot>/<abiSubdir>.
	OutDir string

	// NDKRoot locates the CMake toolchain file.
	NDKRoot string

	// DepPrefix is the staged OpenSSL install root (read-only here).
	DepPrefix string

	// Defines are extra -D values from the manifest.
	Defines map[string]string

	state JobState

	// cm is created by configure and reused by the later steps.
	cm *cmake.CMake
}

// State returns the job's current lifecycle state.
func (j *Job) State() JobState { return j.state }

// Run drives the job to a terminal state. Any step's failure marks the
// job Failed and is returned to the caller, which aborts the whole
// matrix (fail-fast).
func (j *Job) Run(ctx context.Context, execer buildsys.Execer) error {
	if err := j.configure(ctx, execer); err != nil {
		return j.fail(err)
	}
	if err := j.compile(ctx); err != nil {
		return j.fail(err)
	}
	if err := j.copyOut(); err != nil {
		return j.fail(err)
	}
	return nil
}

var errNoBuilder = fmt.Errorf("job not configured")

func (j *Job) configure(ctx context.Context, execer buildsys.Execer) error {
	// A stale build directory from a previous run must not leak
	// cached configure results into this one.
	if err := os.RemoveAll(j.BuildDir); err != nil {
		return err
	}
	if err := os.MkdirAll(j.BuildDir, 0755); err != nil {
		return err
	}

	c := cmake.New(execer, j.SourceDir, j.BuildDir, "")
	c.BuildType(j.BuildType)
	c.Toolchain(ndk.ToolchainFile(j.NDKRoot))
	c.Define("ANDROID_ABI", j.Target.ABI)
	c.Define("ANDROID_PLATFORM", j.Target.Platform(j.API))
	c.Define("ANDROID_NATIVE_API_LEVEL", strconv.Itoa(j.Target.ClampAPI(j.API)))
	c.Define("OPENSSL_ROOT_DIR", j.DepPrefix)
	c.Use(j.DepPrefix)
	for k, v := range j.Defines {
		c.Define(k, v)
	}
	j.cm = c

	if err := c.Configure(ctx); err != nil {
		return err
	}
	return j.transition(StateConfigured)
}

func (j *Job) compile(ctx context.Context) error {
	if j.cm == nil {
		return errNoBuilder
	}
	if err := j.cm.Build(ctx); err != nil {
		return err
	}
	return j.transition(StateBuilt)
}

func (j *Job) copyOut() error {
	set, err := collectArtifacts(j.BuildDir, j.SourceDir)
	if err != nil {
		return err
	}
	if err := set.CopyTo(j.OutDir); err != nil {
		return err
	}
	return j.transition(StateArtifactsCopied)
}

func (j *Job) fail(err error) error {
	// transition cannot reject Failed from a non-terminal state.
	_ = j.transition(StateFailed)
	return fmt.Errorf("abi %s: %w", j.Target.ABI, err)
}
