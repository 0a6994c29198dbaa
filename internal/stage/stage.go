// Package stage fetches, builds and installs the OpenSSL dependency
// into a fixed prefix before any ABI build starts. Every step is a
// blocking subprocess; any failure aborts the whole run, because a
// partially installed prefix would silently corrupt every subsequent
// ABI build.
package stage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/qiniu/x/log"

	"github.com/fuzzyvault/vaultbuild/internal/build/lockedfile"
	"github.com/fuzzyvault/vaultbuild/internal/manifest"
	"github.com/fuzzyvault/vaultbuild/internal/ndk"
	"github.com/fuzzyvault/vaultbuild/internal/run"
	"github.com/fuzzyvault/vaultbuild/pkgs/buildsys"
	"github.com/fuzzyvault/vaultbuild/pkgs/buildsys/autoconf"
)

// Stager installs one pinned OpenSSL release into Prefix.
type Stager struct {
	execer  buildsys.Execer
	client  *http.Client
	openssl manifest.OpenSSL

	// Prefix is the install root shared by all ABI builds.
	Prefix string

	// ScratchDir holds the downloaded tarball and extracted tree.
	ScratchDir string

	// NDKRoot locates the cross toolchain for OpenSSL's Configure.
	NDKRoot string
}

// New returns a Stager for the manifest's pinned OpenSSL.
func New(execer buildsys.Execer, openssl manifest.OpenSSL, prefix, scratchDir, ndkRoot string) *Stager {
	return &Stager{
		execer:     execer,
		client:     &http.Client{Timeout: 5 * time.Minute},
		openssl:    openssl,
		Prefix:     prefix,
		ScratchDir: scratchDir,
		NDKRoot:    ndkRoot,
	}
}

// Stage ensures the pinned OpenSSL is installed under Prefix for the
// given Configure target and API level. It is idempotent across runs:
// a prefix already holding a satisfying version is left untouched.
func (s *Stager) Stage(ctx context.Context, target ndk.Target, api int) error {
	if s.Staged(target) {
		log.Infof("openssl %s already staged at %s", s.openssl.Version, s.Prefix)
		return nil
	}

	if err := os.MkdirAll(s.Prefix, 0755); err != nil {
		return fmt.Errorf("create prefix: %w", err)
	}

	// Serialize against concurrent vaultbuild invocations sharing
	// the prefix.
	unlock, err := lockedfile.MutexAt(filepath.Join(s.Prefix, ".lock")).Lock()
	if err != nil {
		return err
	}
	defer unlock()

	// Another process may have finished while we waited.
	if s.Staged(target) {
		return nil
	}

	if err := os.MkdirAll(s.ScratchDir, 0755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	archive := filepath.Join(s.ScratchDir, s.openssl.Archive())
	log.Infof("fetching %s", s.openssl.SourceURL())
	if err := s.fetch(ctx, archive); err != nil {
		return err
	}

	if s.openssl.SHA256 != "" {
		if err := verifySHA256(archive, s.openssl.SHA256); err != nil {
			return err
		}
	} else {
		log.Warnf("no sha256 pinned for openssl %s, skipping verification", s.openssl.Version)
	}

	if err := s.extract(ctx, archive); err != nil {
		return err
	}

	if err := s.build(ctx, target, api); err != nil {
		return err
	}

	return saveStageCache(s.cachePath(), &stageCache{
		Version:   s.openssl.Version,
		Target:    target.OpenSSLTarget,
		StageTime: time.Now(),
	})
}

// Staged reports whether the prefix already satisfies the request.
func (s *Stager) Staged(target ndk.Target) bool {
	cache, err := loadStageCache(s.cachePath())
	if err != nil {
		return false
	}
	if cache.Target != target.OpenSSLTarget {
		return false
	}
	if !cache.Satisfies(s.openssl.Version) {
		return false
	}
	for _, dir := range []string{"lib", "include"} {
		if _, err := os.Stat(filepath.Join(s.Prefix, dir)); err != nil {
			return false
		}
	}
	return true
}

// fetch downloads the source tarball to dest.
func (s *Stager) fetch(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.openssl.SourceURL(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch openssl: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch openssl: unexpected status %d for %s", resp.StatusCode, s.openssl.SourceURL())
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func (s *Stager) extract(ctx context.Context, archive string) error {
	// A leftover tree from an aborted run must not survive.
	srcDir := filepath.Join(s.ScratchDir, s.openssl.SourceDirName())
	if err := os.RemoveAll(srcDir); err != nil {
		return err
	}
	return s.execer.Run(ctx, run.Cmd{
		Step: "extract openssl",
		Path: "tar",
		Args: []string{"-xf", archive, "-C", s.ScratchDir},
	})
}

// build runs Configure, make clean, make and make install into Prefix.
func (s *Stager) build(ctx context.Context, target ndk.Target, api int) error {
	srcDir := filepath.Join(s.ScratchDir, s.openssl.SourceDirName())

	script := autoconf.New(s.execer, srcDir, s.Prefix)
	script.ConfigureScript("./Configure")
	script.Target(target.OpenSSLTarget)
	script.Env("ANDROID_NDK_ROOT", s.NDKRoot)
	// Some OpenSSL releases look for ANDROID_NDK_HOME instead.
	script.Env("ANDROID_NDK_HOME", s.NDKRoot)
	script.PrependPath(ndk.ToolchainBin(s.NDKRoot))

	args := []string{"-D__ANDROID_API__=" + strconv.Itoa(target.ClampAPI(api))}
	args = append(args, s.openssl.ConfigureFlags...)
	args = append(args, "--libdir=lib")

	log.Infof("staging openssl %s for %s", s.openssl.Version, target.OpenSSLTarget)
	if err := script.Configure(ctx, args...); err != nil {
		return err
	}
	if err := script.Clean(ctx); err != nil {
		return err
	}
	if err := script.Build(ctx); err != nil {
		return err
	}
	return script.Install(ctx, "install_sw", "install_ssldirs")
}

func (s *Stager) cachePath() string {
	return filepath.Join(s.Prefix, stageCacheFile)
}

// verifySHA256 compares the file's digest against want.
func verifySHA256(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return fmt.Errorf("sha256 mismatch for %s: got %s, want %s", filepath.Base(path), got, want)
	}
	return nil
}
