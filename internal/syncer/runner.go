package syncer

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type Runner interface {
	Run(cmd Command) error
}

// CommandError describes a subprocess that failed to launch (ExitCode -1)
// or exited non-zero.
type CommandError struct {
	Command  Command
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("failed to launch %s: %v", e.Command.Name, e.Err)
	}
	if e.Output != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Command.Name, e.ExitCode, e.Output)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command.Name, e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type ExecRunner struct{}

func (ExecRunner) Run(cmd Command) error {
	var out bytes.Buffer

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Stdout = &out
	c.Stderr = &out

	if err := c.Run(); err != nil {
		code := -1
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			code = exitErr.ExitCode()
		}

		return &CommandError{
			Command:  cmd,
			ExitCode: code,
			Output:   strings.TrimSpace(out.String()),
			Err:      err,
		}
	}

	return nil
}
