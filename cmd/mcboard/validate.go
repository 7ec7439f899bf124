package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcboard/internal/config"
	"github.com/MrSnakeDoc/mcboard/internal/sources/servers"
)

// validateCmd validates the servers file without polling anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the servers file",
	Long: `Parse the servers file, expand {{MCBOARD_VAR_*}} placeholders and check
every server and board. With --env the MCBOARD_* environment is checked too.

Exit codes:
  0 - file is valid
  1 - file is invalid (details printed to stderr)`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	def := os.Getenv("MCBOARD_SERVERS_FILE")
	if def == "" {
		def = "servers.yaml"
	}
	validateCmd.Flags().StringP("file", "f", def, "path to the servers file")
	validateCmd.Flags().Bool("env", false, "also validate MCBOARD_* environment variables")
}

// checkEnv runs config.Load, turning its panics into an error.
func checkEnv() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid environment: %v", r)
		}
	}()
	return config.Load(), nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	withEnv, _ := cmd.Flags().GetBool("env")

	var cfg *config.Config
	if withEnv {
		var err error
		if cfg, err = checkEnv(); err != nil {
			return err
		}
	}

	srvs, boards, err := servers.LoadFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg != nil {
		fmt.Fprintf(out, "Environment is valid (store %s, poll every %s)\n", cfg.Store, cfg.PollInterval)
	}
	fmt.Fprintf(out, "Servers file is valid!\n")
	fmt.Fprintf(out, "  Servers: %d\n", len(srvs))
	for _, s := range srvs {
		query := "on"
		if !s.QueryEnabled {
			query = "off"
		}
		fmt.Fprintf(out, "    - %s (%s, query %s)\n", s.Name, s.Address, query)
	}
	fmt.Fprintf(out, "  Boards:  %d\n", len(boards))
	for _, b := range boards {
		fmt.Fprintf(out, "    - %s %s: %v (track=%v, records=%d)\n",
			b.ChatType, b.ChatID, b.Servers, b.TrackPlayerChanges, b.MaxPlayerRecords)
	}
	return nil
}
