// Package manifest loads the optional vaultbuild.yaml describing the
// pinned OpenSSL release, the ABI list and extra CMake defines. A
// missing file yields the built-in defaults.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is looked up under the source root.
const FileName = "vaultbuild.yaml"

// OpenSSL pins the staged dependency.
type OpenSSL struct {
	Version string `yaml:"version"`
	SHA256  string `yaml:"sha256"`

	// URL overrides the download location. %s is replaced with Version.
	URL string `yaml:"url,omitempty"`

	// ConfigureFlags replace the default feature-trimming flag set.
	ConfigureFlags []string `yaml:"configure_flags,omitempty"`
}

// Manifest is the parsed vaultbuild.yaml.
type Manifest struct {
	OpenSSL OpenSSL           `yaml:"openssl"`
	ABIs    []string          `yaml:"abis,omitempty"`
	Defines map[string]string `yaml:"defines,omitempty"`
}

// Default returns the built-in manifest used when no file is present.
// The flag set disables legacy protocols and ciphers the vault library
// never touches, keeping the static library small.
func Default() *Manifest {
	return &Manifest{
		OpenSSL: OpenSSL{
			Version: "3.1.2",
			SHA256:  "a0ce69b8b97ea6a35b96875235aa453b966ba3cba8af2de23657d8b6767d6539",
			URL:     "https://www.openssl.org/source/openssl-%s.tar.gz",
			ConfigureFlags: []string{
				"no-comp", "no-dtls", "no-ec2m", "no-psk", "no-srp",
				"no-ssl3", "no-camellia", "no-idea", "no-md2", "no-md4",
				"no-mdc2", "no-rc2", "no-rc4", "no-rc5", "no-rmd160",
				"no-whirlpool", "no-ui-console", "no-shared", "no-unit-test",
			},
		},
		ABIs: []string{"armeabi-v7a", "arm64-v8a", "x86", "x86_64"},
	}
}

// Load reads vaultbuild.yaml from sourceRoot, filling unset fields from
// the defaults. A missing file is not an error.
func Load(sourceRoot string) (*Manifest, error) {
	path := filepath.Join(sourceRoot, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m.fillDefaults()
	return m, nil
}

func (m *Manifest) fillDefaults() {
	def := Default()
	if m.OpenSSL.Version == "" {
		m.OpenSSL.Version = def.OpenSSL.Version
		if m.OpenSSL.SHA256 == "" {
			m.OpenSSL.SHA256 = def.OpenSSL.SHA256
		}
	}
	if m.OpenSSL.URL == "" {
		m.OpenSSL.URL = def.OpenSSL.URL
	}
	if m.OpenSSL.ConfigureFlags == nil {
		m.OpenSSL.ConfigureFlags = def.OpenSSL.ConfigureFlags
	}
	if len(m.ABIs) == 0 {
		m.ABIs = def.ABIs
	}
}

// SourceURL returns the download URL for the pinned version.
func (o OpenSSL) SourceURL() string {
	return fmt.Sprintf(o.URL, o.Version)
}

// Archive returns the tarball file name.
func (o OpenSSL) Archive() string {
	return filepath.Base(o.SourceURL())
}

// SourceDirName returns the directory the tarball extracts into.
func (o OpenSSL) SourceDirName() string {
	return "openssl-" + o.Version
}
