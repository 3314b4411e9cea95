package autostart

import (
	"runtime"

	"github.com/kballard/go-shellquote"
)

type AutoStarter interface {
	Install(execPath string, args []string) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New() AutoStarter {
	if a := platformAutoStarter(); a != nil {
		return a
	}
	if runtime.GOOS == "linux" {
		return &LinuxAutoStarter{}
	}
	return &UnsupportedAutoStarter{}
}

func watchArgs(execPath string, args []string) []string {
	return append([]string{execPath, "watch"}, args...)
}

// commandLine renders the watch invocation for a systemd ExecStart line.
func commandLine(execPath string, args []string) string {
	return shellquote.Join(watchArgs(execPath, args)...)
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ string, _ []string) error {
	return nil
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
