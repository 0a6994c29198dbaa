package stage

import (
	"encoding/json"
	"os"
	"time"

	"golang.org/x/mod/semver"
)

const stageCacheFile = ".stage.json"

// stageCache records what a prefix holds, so later runs can skip
// re-staging a satisfying install.
type stageCache struct {
	Version   string    `json:"version"`
	Target    string    `json:"target"`
	StageTime time.Time `json:"stage_time"`
}

// Satisfies reports whether the cached version is the requested one or
// newer. OpenSSL 3.x keeps ABI compatibility within the major series,
// so a newer staged patch release serves an older request.
func (c *stageCache) Satisfies(version string) bool {
	staged := "v" + c.Version
	want := "v" + version
	if !semver.IsValid(staged) || !semver.IsValid(want) {
		return c.Version == version
	}
	if semver.Major(staged) != semver.Major(want) {
		return false
	}
	return semver.Compare(staged, want) >= 0
}

func loadStageCache(path string) (*stageCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache stageCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

func saveStageCache(path string, cache *stageCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
