package internal

import (
	"github.com/spf13/cobra"

	"github.com/fuzzyvault/vaultbuild/internal/env"
	"github.com/fuzzyvault/vaultbuild/internal/manifest"
	"github.com/fuzzyvault/vaultbuild/internal/ndk"
	"github.com/fuzzyvault/vaultbuild/internal/run"
)

var (
	stageVerbose bool
	stageABI     string
)

var stageCmd = &cobra.Command{
	Use:   "stage <min-api>",
	Short: "Stage the OpenSSL dependency without building the SDK",
	Long: `Stage fetches, verifies, cross-compiles and installs the pinned
OpenSSL release into the staging prefix used by later sdk builds.`,
	Args: cobra.ExactArgs(1),
	RunE: runStage,
}

func init() {
	stageCmd.Flags().BoolVarP(&stageVerbose, "verbose", "v", false, "Enable verbose build output")
	stageCmd.Flags().StringVar(&stageABI, "abi", "", "ABI to stage for (default: first in the manifest)")
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	api, _, err := parseBuildArgs(args)
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
	if err := ndk.Validate(cfg.NDKRoot); err != nil {
		return err
	}

	abi := stageABI
	if abi == "" {
		abi = man.ABIs[0]
	}
	target, err := ndk.Resolve(abi)
	if err != nil {
		return err
	}

	runner := &run.Runner{Verbose: stageVerbose}
	stager, err := newStager(runner, man, cfg)
	if err != nil {
		return err
	}
	return stager.Stage(cmd.Context(), target, api)
}
