package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vanthabot/vantha/vantha"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("vantha %s\n", vantha.Version)
		if vantha.CommitSHA != "" {
			fmt.Printf("  commit: %s\n", vantha.CommitSHA)
		}
		if vantha.BuildTime != "" {
			fmt.Printf("  built:  %s\n", vantha.BuildTime)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
