// Package main is the entry point for the mcboard CLI.
//
// Usage:
//
//	mcboard                     # poll servers and publish boards until stopped
//	mcboard once                # run a single poll cycle
//	mcboard validate -f servers.yaml
//	mcboard version
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcboard/internal/app"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
)

// logFlags are the mutually exclusive output modes.
type logFlags struct {
	withBoard  bool
	noFileLog  bool
	noInfo     bool
	fileNoInfo bool
}

var flags logFlags

var rootCmd = &cobra.Command{
	Use:   "mcboard",
	Short: "Publish Minecraft server status to Yunhu chat boards",
	Long: `mcboard polls Minecraft Java servers (status ping and query), tracks
players joining and leaving, and pushes an HTML status board to Yunhu chats.

Configuration comes from MCBOARD_* environment variables and the servers
file (MCBOARD_SERVERS_FILE, default servers.yaml).`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flags.withBoard, "log-with-board", false, "log rendered board HTML (enables DEBUG)")
	pf.BoolVar(&flags.noFileLog, "no-file-log", false, "do not write records to the log file")
	pf.BoolVar(&flags.noInfo, "log-no-info", false, "hide INFO records on the console")
	pf.BoolVar(&flags.fileNoInfo, "log-file-no-info", false, "keep only WARN and above in the log file")
}

// mode resolves the flags to a logger mode. More than one flag resets to
// the default and returns false.
func (f logFlags) mode() (logger.Mode, bool) {
	set := []struct {
		on   bool
		mode logger.Mode
	}{
		{f.withBoard, logger.ModeWithBoard},
		{f.noFileLog, logger.ModeNoFileLog},
		{f.noInfo, logger.ModeConsoleNoInfo},
		{f.fileNoInfo, logger.ModeFileNoInfo},
	}

	mode, count := logger.ModeDefault, 0
	for _, s := range set {
		if s.on {
			mode = s.mode
			count++
		}
	}
	if count > 1 {
		return logger.ModeDefault, false
	}
	return mode, true
}

func appOptions(cmd *cobra.Command) app.Options {
	mode, ok := flags.mode()
	if !ok {
		cmd.PrintErrln("warning: log mode flags are mutually exclusive, using default logging")
	}
	return app.Options{LogMode: mode}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(cmd.Context(), appOptions(cmd))
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}
