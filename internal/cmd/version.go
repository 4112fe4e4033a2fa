package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bucketree %s\n", versionInfo.Version)
		if versionInfo.Commit != "" {
			fmt.Printf("  commit:     %s\n", versionInfo.Commit)
		}
		if versionInfo.BuildDate != "" {
			fmt.Printf("  build date: %s\n", versionInfo.BuildDate)
		}
		fmt.Printf("  go version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
