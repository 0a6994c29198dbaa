package internal

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fuzzyvault/vaultbuild/internal/ndk"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported ABI targets",
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ABI\tTRIPLE\tOPENSSL TARGET\tMIN API")
	for _, t := range ndk.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.ABI, t.Triple, t.OpenSSLTarget, t.MinAPI)
	}
	return w.Flush()
}
