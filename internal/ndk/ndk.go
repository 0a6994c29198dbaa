// Package ndk maps Android ABI identifiers to the toolchain facts a
// cross-compilation needs: the compiler triple, the SDK output
// subdirectory, the OpenSSL Configure target and the minimum platform
// API level the ABI supports.
package ndk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrUnknownABI reports an ABI identifier outside the supported set.
// Callers treat it as recoverable: warn and skip, do not abort the run.
var ErrUnknownABI = errors.New("unknown ABI")

// Target describes one supported ABI.
type Target struct {
	// ABI is the identifier as passed to ANDROID_ABI (e.g. "arm64-v8a").
	ABI string

	// Triple is the clang target prefix for this ABI.
	Triple string

	// Subdir is the ABI's directory name under the SDK output root.
	Subdir string

	// Arch is the architecture family ("arm", "x86").
	Arch string

	// OpenSSLTarget is the name OpenSSL's Configure script expects.
	OpenSSLTarget string

	// MinAPI is the lowest platform API level the ABI exists on.
	MinAPI int
}

// targets is the supported ABI set. The matrix driver iterates it in
// this order, so output-tree population is deterministic.
var targets = []Target{
	{"armeabi-v7a", "armv7a-linux-androideabi", "armeabi-v7a", "arm", "android-arm", 16},
	{"arm64-v8a", "aarch64-linux-android", "arm64-v8a", "arm", "android-arm64", 21},
	{"x86", "i686-linux-android", "x86", "x86", "android-x86", 16},
	{"x86_64", "x86_64-linux-android", "x86_64", "x86", "android-x86_64", 21},
}

// All returns the supported targets in build order.
func All() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// Resolve looks up abi in the supported set.
func Resolve(abi string) (Target, error) {
	for _, t := range targets {
		if t.ABI == abi {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnknownABI, abi)
}

// ClampAPI raises api to the target's floor. 64-bit ABIs first shipped
// with API 21; the NDK toolchain file does the same silent promotion.
func (t Target) ClampAPI(api int) int {
	if api < t.MinAPI {
		return t.MinAPI
	}
	return api
}

// Platform returns the ANDROID_PLATFORM value for api after clamping.
func (t Target) Platform(api int) string {
	return fmt.Sprintf("android-%d", t.ClampAPI(api))
}

// ToolchainFile returns the CMake toolchain file shipped with the NDK.
// Compiler selection is left to this file; vaultbuild never exports
// CC/CXX itself.
func ToolchainFile(ndkRoot string) string {
	return filepath.Join(ndkRoot, "build", "cmake", "android.toolchain.cmake")
}

// HostTag returns the NDK prebuilt host directory name for the current
// platform (e.g. "linux-x86_64").
func HostTag() string {
	switch runtime.GOOS {
	case "darwin":
		return "darwin-x86_64"
	case "windows":
		return "windows-x86_64"
	default:
		return "linux-x86_64"
	}
}

// ToolchainBin returns the directory holding the NDK's clang binaries.
// OpenSSL's Configure wants it on PATH.
func ToolchainBin(ndkRoot string) string {
	return filepath.Join(ndkRoot, "toolchains", "llvm", "prebuilt", HostTag(), "bin")
}

// Validate checks that ndkRoot looks like an NDK installation.
func Validate(ndkRoot string) error {
	if ndkRoot == "" {
		return errors.New("NDK root is not set (export ANDROID_NDK_ROOT)")
	}
	toolchain := ToolchainFile(ndkRoot)
	if _, err := os.Stat(toolchain); err != nil {
		return fmt.Errorf("NDK toolchain file not found at %s: %w", toolchain, err)
	}
	return nil
}
