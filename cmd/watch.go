package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syncd/internal/daemon"
	"syncd/internal/db"
	"syncd/internal/engine"
	"syncd/internal/ignore"
	"syncd/internal/logger"
	"syncd/internal/repository"
	"syncd/internal/syncer"
	"syncd/internal/watcher"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch <source> <destination> [key]",
	Short: "Sync once, then keep the destination mirrored on every change",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	src, err := watcher.NewSource(syncCfg.Source, cfg.BufferSize, cfg.QuietPeriod, rules.Match)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Options{
		Source:       src,
		Syncer:       executor,
		Rules:        rules,
		PollInterval: cfg.PollInterval,
	})

	state := daemon.NewState(syncCfg.Source, syncCfg.Destination.String(), eng.Signal())
	eng.AddRecorder(state)

	var history daemon.HistoryReader
	if db.DB != nil {
		repo := repository.NewHistoryRepository()
		eng.AddRecorder(repo)
		history = repo
	}

	if cfg.DaemonPort > 0 {
		srv := daemon.NewServer(state, eng.Signal(), history, cfg.DaemonPort)
		srv.Start()

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("syncd started",
		zap.String("src", syncCfg.Source),
		zap.String("dst", syncCfg.Destination.String()),
		zap.Bool("remote", syncCfg.Destination.Remote),
		zap.Bool("ignore_rules", rules != nil))

	if err := eng.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Log.Info("shutting down")
			return nil
		}
		return err
	}

	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
