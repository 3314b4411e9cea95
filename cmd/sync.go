package cmd

import (
	"fmt"
	"syncd/internal/db"
	"syncd/internal/ignore"
	"syncd/internal/logger"
	"syncd/internal/model"
	"syncd/internal/repository"
	"syncd/internal/syncer"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync <source> <destination> [key]",
	Short: "Sync all files once",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		syncCfg, err := syncer.NewConfig(args[0], args[1], keyArg(args))
		if err != nil {
			return err
		}

		rules, err := ignore.Load(syncCfg.Source)
		if err != nil {
			return err
		}

		executor := syncer.NewExecutor(syncCfg, rules, syncer.ExecRunner{}, syncer.Options{
			RsyncPath: cfg.RsyncPath,
			SSHPath:   cfg.SSHPath,
		})

		if dryRun {
			if mkdir, ok := executor.MkdirCommand(); ok {
				fmt.Println(mkdir)
			}
			fmt.Println(executor.MirrorCommand())
			return nil
		}

		logger.Log.Info("starting full sync",
			zap.String("src", syncCfg.Source),
			zap.String("dst", syncCfg.Destination.String()))

		run := model.SyncRun{
			ID:        uuid.NewString(),
			Reason:    model.ReasonManual,
			StartedAt: time.Now(),
		}
		run.Err = executor.Sync()
		run.Duration = time.Since(run.StartedAt)

		if db.DB != nil {
			repository.NewHistoryRepository().RecordSync(run)
		}

		if run.Err != nil {
			return run.Err
		}

		fmt.Printf("done in %s\n", run.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the commands instead of running them")
	rootCmd.AddCommand(syncCmd)
}
