package env

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes the working directory for the test and restores it on
// cleanup, like t.Chdir (which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestWorkDir(t *testing.T) {
	workDir, err := WorkDir()
	if err != nil {
		t.Fatalf("WorkDir() returned error: %v", err)
	}
	if workDir == "" {
		t.Fatal("WorkDir() returned empty path")
	}

	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		t.Fatalf("os.UserCacheDir() returned error: %v", err)
	}
	expectedDir := filepath.Join(userCacheDir, ".vaultbuild")
	if workDir != expectedDir {
		t.Errorf("WorkDir() = %q, want %q", workDir, expectedDir)
	}

	info, err := os.Stat(workDir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("WorkDir() created a file instead of a directory")
	}
}

func TestWorkDirIdempotent(t *testing.T) {
	dir1, err := WorkDir()
	if err != nil {
		t.Fatalf("First WorkDir() call failed: %v", err)
	}
	dir2, err := WorkDir()
	if err != nil {
		t.Fatalf("Second WorkDir() call failed: %v", err)
	}
	if dir1 != dir2 {
		t.Errorf("WorkDir() not idempotent: first call = %q, second call = %q", dir1, dir2)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	for _, key := range []string{
		EnvSourceRoot, EnvNDKRoot, EnvNDKHome, EnvOpenSSLPrefix, EnvSDKOut,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	wantRoot, _ := filepath.EvalSymlinks(tmp)
	gotRoot, _ := filepath.EvalSymlinks(cfg.SourceRoot)
	if gotRoot != wantRoot {
		t.Errorf("SourceRoot = %q, want %q", cfg.SourceRoot, tmp)
	}
	if cfg.SDKOut != filepath.Join(cfg.SourceRoot, "sdk") {
		t.Errorf("SDKOut = %q, want under source root", cfg.SDKOut)
	}
	if cfg.OpenSSLPrefix == "" {
		t.Error("OpenSSLPrefix is empty, want workdir default")
	}
	if cfg.NDKRoot != "" {
		t.Errorf("NDKRoot = %q, want empty without env vars", cfg.NDKRoot)
	}
}

func TestLoadOverrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(EnvSourceRoot, tmp)
	t.Setenv(EnvNDKRoot, "/opt/ndk")
	t.Setenv(EnvOpenSSLPrefix, "/opt/openssl")
	t.Setenv(EnvSDKOut, "/tmp/out")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.NDKRoot != "/opt/ndk" {
		t.Errorf("NDKRoot = %q, want /opt/ndk", cfg.NDKRoot)
	}
	if cfg.OpenSSLPrefix != "/opt/openssl" {
		t.Errorf("OpenSSLPrefix = %q, want /opt/openssl", cfg.OpenSSLPrefix)
	}
	if cfg.SDKOut != "/tmp/out" {
		t.Errorf("SDKOut = %q, want /tmp/out", cfg.SDKOut)
	}
}

func TestNDKHomeFallback(t *testing.T) {
	t.Setenv(EnvNDKRoot, "")
	os.Unsetenv(EnvNDKRoot)
	t.Setenv(EnvNDKHome, "/opt/ndk-home")

	if got := ndkRoot(); got != "/opt/ndk-home" {
		t.Errorf("ndkRoot() = %q, want /opt/ndk-home", got)
	}

	t.Setenv(EnvNDKRoot, "/opt/ndk-root")
	if got := ndkRoot(); got != "/opt/ndk-root" {
		t.Errorf("ndkRoot() = %q, want /opt/ndk-root", got)
	}
}

func TestDotEnvFile(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("SDK_OUT=/from/dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSDKOut, "")
	os.Unsetenv(EnvSDKOut)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.SDKOut != "/from/dotenv" {
		t.Errorf("SDKOut = %q, want /from/dotenv", cfg.SDKOut)
	}
}
