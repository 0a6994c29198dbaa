package internal

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vaultbuild",
	Short: "vaultbuild cross-compiles the fuzzyvault SDK for Android",
	Long: `vaultbuild stages OpenSSL for the Android NDK and drives CMake
cross-compilations of the fuzzyvault native library for every supported
ABI, collecting the libraries and headers into a per-ABI SDK tree.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
