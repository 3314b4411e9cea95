package cmd

import (
	"fmt"
	"os"
	"syncd/internal/config"
	"syncd/internal/db"
	"syncd/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "syncd",
	Short: "Mirror a directory to a local or remote destination as it changes",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		clientCmds := map[string]bool{
			"status": true, "history": true, "resync": true,
			"install": true, "uninstall": true,
		}
		if !clientCmds[cmd.Name()] && cfg.DBPath != "" {
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.DaemonPort, path)
}

func keyArg(args []string) string {
	if len(args) > 2 {
		return args[2]
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}
