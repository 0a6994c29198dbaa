// Package autoconf wraps configure-script builds (./configure or
// OpenSSL's perl Configure) followed by make.
package autoconf

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/fuzzyvault/vaultbuild/internal/run"
	"github.com/fuzzyvault/vaultbuild/pkgs/buildsys"
)

// Script drives an in-tree configure-script build. Unlike CMake there
// is no separate build directory; configure and make both run in the
// source tree.
type Script struct {
	execer     buildsys.Execer
	sourceDir  string
	installDir string
	script     string
	target     string
	jobs       int
	env        map[string]string
}

var _ buildsys.BuildSystem = (*Script)(nil)

// New returns a Script running "./configure" in sourceDir. Use
// ConfigureScript and Target for OpenSSL-style scripts.
func New(execer buildsys.Execer, sourceDir, installDir string) *Script {
	return &Script{
		execer:     execer,
		sourceDir:  sourceDir,
		installDir: installDir,
		script:     "./configure",
		jobs:       runtime.NumCPU(),
		env:        make(map[string]string),
	}
}

// Source overrides the source directory.
func (s *Script) Source(dir string) { s.sourceDir = dir }

// InstallDir overrides the install prefix.
func (s *Script) InstallDir(dir string) { s.installDir = dir }

// ConfigureScript overrides the script name (e.g. "./Configure").
func (s *Script) ConfigureScript(name string) { s.script = name }

// Target sets a positional target passed first to the configure script,
// as OpenSSL expects (e.g. "android-arm64").
func (s *Script) Target(name string) { s.target = name }

// Jobs caps make parallelism.
func (s *Script) Jobs(n int) {
	if n > 0 {
		s.jobs = n
	}
}

// Env sets an environment variable for all configure/make invocations.
func (s *Script) Env(key, value string) {
	s.env[key] = value
}

// Use points the compilers at a dependency prefix via CPPFLAGS/LDFLAGS.
func (s *Script) Use(prefix string) {
	s.appendFlag("CPPFLAGS", "-I"+filepath.Join(prefix, "include"))
	s.appendFlag("LDFLAGS", "-L"+filepath.Join(prefix, "lib"))
}

// PrependPath puts dir in front of PATH for the child processes.
// OpenSSL's Configure requires the cross-compiler on PATH.
func (s *Script) PrependPath(dir string) {
	path := dir
	if cur := os.Getenv("PATH"); cur != "" {
		path += string(os.PathListSeparator) + cur
	}
	s.env["PATH"] = path
}

// Configure runs the configure script with the target, prefix and any
// extra args.
func (s *Script) Configure(ctx context.Context, args ...string) error {
	argv := []string{}
	if s.target != "" {
		argv = append(argv, s.target)
	}
	if s.installDir != "" {
		argv = append(argv, "--prefix="+s.installDir)
	}
	argv = append(argv, args...)
	return s.run(ctx, "configure", s.script, argv)
}

// Clean runs "make clean". A stale in-tree build would otherwise leak
// objects from a previous target into this one.
func (s *Script) Clean(ctx context.Context) error {
	return s.run(ctx, "make clean", "make", []string{"clean"})
}

// Build runs make with -j parallelism.
func (s *Script) Build(ctx context.Context, args ...string) error {
	argv := append([]string{"-j", strconv.Itoa(s.jobs)}, args...)
	return s.run(ctx, "make", "make", argv)
}

// Install runs "make install" unless args name other install targets
// (OpenSSL uses install_sw install_ssldirs).
func (s *Script) Install(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		args = []string{"install"}
	}
	return s.run(ctx, "make install", "make", args)
}

// OutputDir returns the install prefix.
func (s *Script) OutputDir() string { return s.installDir }

func (s *Script) run(ctx context.Context, step, path string, args []string) error {
	return s.execer.Run(ctx, run.Cmd{
		Step: step,
		Path: path,
		Args: args,
		Dir:  s.sourceDir,
		Env:  s.env,
	})
}

func (s *Script) appendFlag(key, flag string) {
	if cur := s.env[key]; cur != "" {
		flag = cur + " " + flag
	}
	s.env[key] = flag
}
