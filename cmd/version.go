package cmd

import (
	"fmt"

	"github.com/brk3/habitstate/pkg/versioninfo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", versioninfo.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", versioninfo.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
