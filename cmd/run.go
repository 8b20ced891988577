package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vanthabot/vantha/vantha"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve until interrupted",
	Long: `Loads the record store from the data directory, connects to the
Discord gateway, registers slash commands and serves until the process
is interrupted. The status API listens when an API address is
configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		bot, err := vantha.New(cfg)
		if err != nil {
			return fmt.Errorf("initializing bot: %w", err)
		}
		return bot.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
