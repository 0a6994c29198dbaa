package internal

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fuzzyvault/vaultbuild/internal/env"
	"github.com/fuzzyvault/vaultbuild/internal/manifest"
	"github.com/fuzzyvault/vaultbuild/internal/run"
	"github.com/fuzzyvault/vaultbuild/internal/sdk"
	"github.com/fuzzyvault/vaultbuild/internal/stage"
)

var (
	sdkVerbose bool
	sdkABIs    []string
)

var sdkCmd = &cobra.Command{
	Use:   "sdk <min-api> [build-type]",
	Short: "Build the SDK for every supported ABI",
	Long: `Sdk stages OpenSSL once, then cross-compiles the fuzzyvault library
for each ABI and populates <SDK_OUT>/<abi>/{lib,include}.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSDK,
}

func init() {
	sdkCmd.Flags().BoolVarP(&sdkVerbose, "verbose", "v", false, "Enable verbose build output")
	sdkCmd.Flags().StringArrayVar(&sdkABIs, "abi", nil, "Restrict the build to the given ABIs (repeatable)")
	rootCmd.AddCommand(sdkCmd)
}

func runSDK(cmd *cobra.Command, args []string) error {
	api, buildType, err := parseBuildArgs(args)
	if err != nil {
		return err
	}

	cfg, err := env.Load()
	if err != nil {
		return err
	}
	man, err := manifest.Load(cfg.SourceRoot)
	if err != nil {
		return err
	}

	runner := &run.Runner{Verbose: sdkVerbose}
	stager, err := newStager(runner, man, cfg)
	if err != nil {
		return err
	}

	driver := sdk.NewDriver(cfg, man, runner, stager, sdk.Options{
		API:       api,
		BuildType: buildType,
		ABIs:      sdkABIs,
	})
	return driver.BuildAll(cmd.Context())
}

// parseBuildArgs validates the positional arguments shared by the sdk
// and stage commands: a required API level and an optional build type.
func parseBuildArgs(args []string) (api int, buildType string, err error) {
	api, err = strconv.Atoi(args[0])
	if err != nil || api <= 0 {
		return 0, "", fmt.Errorf("invalid minimum API level %q", args[0])
	}
	if len(args) > 1 {
		buildType = args[1]
	}
	return api, buildType, nil
}

func newStager(runner *run.Runner, man *manifest.Manifest, cfg *env.Config) (*stage.Stager, error) {
	workDir, err := env.WorkDir()
	if err != nil {
		return nil, err
	}
	scratch := filepath.Join(workDir, "openssl-src")
	return stage.New(runner, man.OpenSSL, cfg.OpenSSLPrefix, scratch, cfg.NDKRoot), nil
}
