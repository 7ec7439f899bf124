package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcboard/internal/app"
)

// onceCmd runs one poll cycle, useful from cron or for debugging.
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single poll cycle and exit",
	Long: `Fetch every server once, track players, publish every board and exit.

Exits non-zero when the roster store failed for any server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), appOptions(cmd))
		if err != nil {
			return err
		}
		return a.RunOnce(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
