// Package sdk drives the (ABI × build-type) matrix: stage the OpenSSL
// dependency once, then build the fuzzyvault library per ABI and
// aggregate the artifacts into the SDK output tree.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qiniu/x/log"

	"github.com/fuzzyvault/vaultbuild/internal/env"
	"github.com/fuzzyvault/vaultbuild/internal/manifest"
	"github.com/fuzzyvault/vaultbuild/internal/ndk"
	"github.com/fuzzyvault/vaultbuild/pkgs/buildsys"
)

// Stager is the dependency-staging seam; *stage.Stager implements it.
type Stager interface {
	Stage(ctx context.Context, target ndk.Target, api int) error
}

// Options configure one orchestrator run.
type Options struct {
	// API is the minimum platform API level (required).
	API int

	// BuildType is passed to CMAKE_BUILD_TYPE. Empty means Release.
	BuildType string

	// ABIs restricts the matrix. Empty means the manifest's list.
	ABIs []string
}

// Driver runs the whole build matrix sequentially in a fixed order.
type Driver struct {
	cfg    *env.Config
	man    *manifest.Manifest
	execer buildsys.Execer
	stager Stager
	opts   Options
}

// NewDriver wires a Driver from its collaborators.
func NewDriver(cfg *env.Config, man *manifest.Manifest, execer buildsys.Execer, stager Stager, opts Options) *Driver {
	if opts.BuildType == "" {
		opts.BuildType = "Release"
	}
	if len(opts.ABIs) == 0 {
		opts.ABIs = man.ABIs
	}
	return &Driver{cfg: cfg, man: man, execer: execer, stager: stager, opts: opts}
}

// BuildAll stages the dependency and then processes every requested
// ABI. Unknown ABIs are warned about and skipped; any tool failure
// aborts immediately, leaving earlier ABIs' output in place.
func (d *Driver) BuildAll(ctx context.Context) error {
	targets := d.resolveTargets()
	if len(targets) == 0 {
		return fmt.Errorf("no buildable ABIs in %v", d.opts.ABIs)
	}

	if err := ndk.Validate(d.cfg.NDKRoot); err != nil {
		return err
	}

	// Staged once, read by every ABI build afterwards.
	if err := d.stager.Stage(ctx, targets[0], d.opts.API); err != nil {
		return fmt.Errorf("stage openssl: %w", err)
	}

	for _, target := range targets {
		job := d.newJob(target)
		log.Infof("building %s (%s, API %d)", target.ABI, d.opts.BuildType, target.ClampAPI(d.opts.API))
		if err := job.Run(ctx, d.execer); err != nil {
			return err
		}
		log.Infof("populated %s", job.OutDir)
	}
	return nil
}

// resolveTargets maps the requested ABI list through the resolver,
// dropping unknown names with a warning. Order is preserved so the
// output tree is populated deterministically.
func (d *Driver) resolveTargets() []ndk.Target {
	targets := make([]ndk.Target, 0, len(d.opts.ABIs))
	for _, abi := range d.opts.ABIs {
		target, err := ndk.Resolve(abi)
		if errors.Is(err, ndk.ErrUnknownABI) {
			log.Warnf("skipping unknown ABI %q", abi)
			continue
		}
		targets = append(targets, target)
	}
	return targets
}

func (d *Driver) newJob(target ndk.Target) *Job {
	return &Job{
		Target:    target,
		API:       d.opts.API,
		BuildType: d.opts.BuildType,
		SourceDir: d.cfg.SourceRoot,
		BuildDir:  filepath.Join(d.cfg.SourceRoot, "build", target.Subdir+"-"+d.opts.BuildType),
		OutDir:    filepath.Join(d.cfg.SDKOut, target.Subdir),
		NDKRoot:   d.cfg.NDKRoot,
		DepPrefix: d.cfg.OpenSSLPrefix,
		Defines:   d.man.Defines,
	}
}
