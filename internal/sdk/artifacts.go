package sdk

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ArtifactSet is what one build job produced: shared and static
// libraries from the build tree plus the public headers from the
// source tree. Paths are sorted so copy order is deterministic.
type ArtifactSet struct {
	Libs    []string
	Headers []string
}

// collectArtifacts walks buildDir for produced libraries and sourceDir
// for public headers. A build that produced no library is an error;
// succeeding silently here would populate the SDK tree with an empty
// ABI directory.
func collectArtifacts(buildDir, sourceDir string) (*ArtifactSet, error) {
	set := &ArtifactSet{}

	err := filepath.WalkDir(buildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// CMake's internal trees hold no deliverables.
			if d.Name() == "CMakeFiles" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".so") || strings.HasSuffix(path, ".a") {
			set.Libs = append(set.Libs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(set.Libs) == 0 {
		return nil, fmt.Errorf("no libraries produced under %s", buildDir)
	}

	set.Headers, err = publicHeaders(sourceDir)
	if err != nil {
		return nil, err
	}

	sort.Strings(set.Libs)
	sort.Strings(set.Headers)
	return set, nil
}

// publicHeaders returns the headers under <sourceDir>/include, falling
// back to headers at the source root for flat project layouts.
func publicHeaders(sourceDir string) ([]string, error) {
	for _, dir := range []string{filepath.Join(sourceDir, "include"), sourceDir} {
		headers, err := filepath.Glob(filepath.Join(dir, "*.h"))
		if err != nil {
			return nil, err
		}
		if len(headers) > 0 {
			return headers, nil
		}
	}
	return nil, fmt.Errorf("no public headers found under %s", sourceDir)
}

// CopyTo populates <outDir>/lib and <outDir>/include. Existing files
// are overwritten; reruns converge on the same tree.
func (s *ArtifactSet) CopyTo(outDir string) error {
	libDir := filepath.Join(outDir, "lib")
	includeDir := filepath.Join(outDir, "include")
	for _, dir := range []string{libDir, includeDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	for _, lib := range s.Libs {
		if err := copyFile(lib, filepath.Join(libDir, filepath.Base(lib))); err != nil {
			return err
		}
	}
	for _, h := range s.Headers {
		if err := copyFile(h, filepath.Join(includeDir, filepath.Base(h))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
