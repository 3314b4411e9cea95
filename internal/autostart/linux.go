package autostart

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const serviceName = "syncd.service"

const serviceTemplate = `[Unit]
Description=syncd mirror daemon
After=network-online.target

[Service]
ExecStart={{.CommandLine}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

var serviceTmpl = template.Must(template.New("service").Parse(serviceTemplate))

type LinuxAutoStarter struct {
	// Dir overrides ~/.config/systemd/user.
	Dir string
	// SkipSystemctl writes the unit file without touching systemd.
	SkipSystemctl bool
}

func (l *LinuxAutoStarter) servicePath() (string, error) {
	dir := l.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, serviceName), nil
}

func renderUnit(execPath string, args []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := serviceTmpl.Execute(&buf, map[string]string{"CommandLine": commandLine(execPath, args)}); err != nil {
		return nil, fmt.Errorf("failed to render service file: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *LinuxAutoStarter) Install(execPath string, args []string) error {
	path, err := l.servicePath()
	if err != nil {
		return err
	}

	unit, err := renderUnit(execPath, args)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, unit, 0644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	if l.SkipSystemctl {
		return nil
	}

	cmds := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", serviceName},
		{"systemctl", "--user", "restart", serviceName},
	}

	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed to run %v: %w\n%s", args, err, out)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	if !l.SkipSystemctl {
		cmds := [][]string{
			{"systemctl", "--user", "stop", serviceName},
			{"systemctl", "--user", "disable", serviceName},
		}

		for _, args := range cmds {
			cmd := exec.Command(args[0], args[1:]...)
			_ = cmd.Run()
		}
	}

	path, err := l.servicePath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove service file: %w", err)
	}
	return nil
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.servicePath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
