package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommandLine(t *testing.T) {
	got := commandLine("/usr/local/bin/syncd", []string{"/home/me/src", "me@host:/srv/my mirror"})
	want := `/usr/local/bin/syncd watch /home/me/src 'me@host:/srv/my mirror'`
	if got != want {
		t.Errorf("commandLine = %s, want %s", got, want)
	}
}

func TestCommandLineEscapesQuotes(t *testing.T) {
	got := commandLine("/opt/syncd", []string{"/src/it's", "/dst"})
	want := `/opt/syncd watch /src/it\'s /dst`
	if got != want {
		t.Errorf("commandLine = %s, want %s", got, want)
	}
}

func TestLinuxInstallWritesUnit(t *testing.T) {
	dir := t.TempDir()
	l := &LinuxAutoStarter{Dir: dir, SkipSystemctl: true}

	if installed, _ := l.IsInstalled(); installed {
		t.Fatal("unexpected unit before install")
	}

	if err := l.Install("/usr/bin/syncd", []string{"/src", "host:/dst", "/keys/id"}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, serviceName))
	if err != nil {
		t.Fatal(err)
	}
	unit := string(data)
	if !strings.Contains(unit, "ExecStart=/usr/bin/syncd watch /src host:/dst /keys/id\n") {
		t.Errorf("unexpected ExecStart in unit:\n%s", unit)
	}
	if !strings.Contains(unit, "[Service]") {
		t.Errorf("missing [Service] section:\n%s", unit)
	}

	if installed, _ := l.IsInstalled(); !installed {
		t.Error("expected unit to be installed")
	}

	if err := l.Uninstall(); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if installed, _ := l.IsInstalled(); installed {
		t.Error("unit still present after uninstall")
	}
}
