// Package env resolves the orchestrator's directories and
// environment-variable configuration.
package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables consumed by vaultbuild. Each has a documented
// default except the NDK root, which must point at an installed NDK.
const (
	EnvSourceRoot    = "SOURCE_ROOT"
	EnvNDKRoot       = "ANDROID_NDK_ROOT"
	EnvNDKHome       = "ANDROID_NDK_HOME"
	EnvOpenSSLPrefix = "OPENSSL_PREFIX"
	EnvSDKOut        = "SDK_OUT"
)

// Config is the resolved invocation environment. It is filled once by
// Load and read-only afterwards.
type Config struct {
	// SourceRoot is the fuzzyvault native source tree (contains
	// CMakeLists.txt). Defaults to the current directory.
	SourceRoot string

	// NDKRoot is the Android NDK installation root.
	NDKRoot string

	// OpenSSLPrefix is where the staged OpenSSL is installed.
	// Defaults to <workdir>/openssl.
	OpenSSLPrefix string

	// SDKOut is the root of the per-ABI output tree.
	// Defaults to <SourceRoot>/sdk.
	SDKOut string
}

// Load reads an optional .env file from the current directory, then
// resolves the configuration from the process environment.
func Load() (*Config, error) {
	// Missing .env is not an error; real env vars win over file values.
	_ = godotenv.Load()

	sourceRoot, err := filepath.Abs(getenv(EnvSourceRoot, "."))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", EnvSourceRoot, err)
	}

	prefix := os.Getenv(EnvOpenSSLPrefix)
	if prefix == "" {
		workDir, err := WorkDir()
		if err != nil {
			return nil, err
		}
		prefix = filepath.Join(workDir, "openssl")
	}

	return &Config{
		SourceRoot:    sourceRoot,
		NDKRoot:       ndkRoot(),
		OpenSSLPrefix: prefix,
		SDKOut:        getenv(EnvSDKOut, filepath.Join(sourceRoot, "sdk")),
	}, nil
}

// WorkDir returns the per-user scratch directory for staged dependencies
// and build caches, creating it if needed.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(userCacheDir, ".vaultbuild")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// ndkRoot prefers ANDROID_NDK_ROOT and falls back to ANDROID_NDK_HOME,
// which older NDK tooling still sets.
func ndkRoot() string {
	if root := os.Getenv(EnvNDKRoot); root != "" {
		return root
	}
	return os.Getenv(EnvNDKHome)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
