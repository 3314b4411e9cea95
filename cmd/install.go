package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"syncd/internal/autostart"
	"syncd/internal/syncer"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <source> <destination> [key]",
	Short: "Register the mirror to start on login",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		syncCfg, err := syncer.NewConfig(args[0], args[1], keyArg(args))
		if err != nil {
			return err
		}

		dst := syncCfg.Destination.String()
		if !syncCfg.Destination.Remote {
			if dst, err = filepath.Abs(dst); err != nil {
				return fmt.Errorf("invalid dst path: %w", err)
			}
		}

		watchArgs := []string{syncCfg.Source, dst}
		if syncCfg.KeyPath != "" {
			watchArgs = append(watchArgs, syncCfg.KeyPath)
		}

		if err := autostart.New().Install(execPath, watchArgs); err != nil {
			return err
		}

		fmt.Println("syncd registered for autostart")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
