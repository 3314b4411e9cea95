package syncer

import (
	"errors"
	"fmt"
	"strings"
	"syncd/internal/ignore"
	"syncd/internal/logger"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
)

const vcsDir = ".git"

type Options struct {
	RsyncPath string
	SSHPath   string
}

type Executor struct {
	cfg    Config
	rules  *ignore.RuleSet
	runner Runner
	rsync  string
	ssh    string
}

// NewExecutor builds an executor for cfg. When rules is non-nil the mirror
// command carries them as rsync filters, so the transfer skips exactly what
// the event filter ignores.
func NewExecutor(cfg Config, rules *ignore.RuleSet, runner Runner, opts Options) *Executor {
	if runner == nil {
		runner = ExecRunner{}
	}
	if opts.RsyncPath == "" {
		opts.RsyncPath = "rsync"
	}
	if opts.SSHPath == "" {
		opts.SSHPath = "ssh"
	}

	return &Executor{
		cfg:    cfg,
		rules:  rules,
		runner: runner,
		rsync:  opts.RsyncPath,
		ssh:    opts.SSHPath,
	}
}

func (e *Executor) sshOptions() []string {
	args := []string{"-o", "StrictHostKeyChecking=no"}
	if e.cfg.KeyPath != "" {
		args = append(args, "-i", e.cfg.KeyPath)
	}
	return args
}

func (e *Executor) MkdirCommand() (Command, bool) {
	dst := e.cfg.Destination
	if !dst.Remote || dst.Path == "" {
		return Command{}, false
	}

	args := e.sshOptions()
	args = append(args, dst.UserHost, "mkdir", "-p", quoteRemotePath(dst.Path))

	return Command{Name: e.ssh, Args: args}, true
}

func (e *Executor) MirrorCommand() Command {
	args := []string{"-a", "--delete", "--exclude=" + vcsDir}

	for _, filter := range e.rules.RsyncFilters() {
		args = append(args, "--filter="+filter)
	}

	if e.cfg.Destination.Remote {
		rsh := append([]string{e.ssh}, e.sshOptions()...)
		args = append(args, "-e", shellquote.Join(rsh...))
	}

	src := strings.TrimSuffix(e.cfg.Source, "/") + "/"
	args = append(args, src, e.cfg.Destination.String())

	return Command{Name: e.rsync, Args: args}
}

func (e *Executor) Sync() error {
	if mkdir, ok := e.MkdirCommand(); ok {
		if err := e.runner.Run(mkdir); err != nil {
			logger.Log.Warn("failed to create remote directory",
				append(commandFields(err),
					zap.String("dst", e.cfg.Destination.String()))...)
		}
	}

	cmd := e.MirrorCommand()
	logger.Log.Debug("running mirror command",
		zap.String("cmd", cmd.String()))

	if err := e.runner.Run(cmd); err != nil {
		logger.Log.Debug("mirror command failed",
			commandFields(err)...)
		return fmt.Errorf("failed to mirror %s to %s: %w",
			e.cfg.Source, e.cfg.Destination, err)
	}

	return nil
}

func commandFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	if cmdErr, ok := errors.AsType[*CommandError](err); ok {
		fields = append(fields,
			zap.String("cmd", cmdErr.Command.String()),
			zap.Int("exit_code", cmdErr.ExitCode))
		if cmdErr.Output != "" {
			fields = append(fields, zap.String("output", cmdErr.Output))
		}
	}

	return fields
}
