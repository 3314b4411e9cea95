//go:build windows

package autostart

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/windows"
)

const taskName = "SyncdMirror"

type WindowsAutoStarter struct{}

func platformAutoStarter() AutoStarter {
	return &WindowsAutoStarter{}
}

// taskCommandLine renders the watch invocation for schtasks /TR.
func taskCommandLine(execPath string, args []string) string {
	parts := watchArgs(execPath, args)
	for i, p := range parts {
		parts[i] = windows.EscapeArg(p)
	}
	return strings.Join(parts, " ")
}

func (w *WindowsAutoStarter) Install(execPath string, args []string) error {
	cmd := exec.Command("schtasks", "/create",
		"/TN", taskName,
		"/TR", taskCommandLine(execPath, args),
		"/SC", "ONLOGON",
		"/F")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	cmd := exec.Command("schtasks", "/DELETE", "/TN", taskName, "/F")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	cmd := exec.Command("schtasks", "/Query", "/TN", taskName)
	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}
