//go:build !windows

package autostart

func platformAutoStarter() AutoStarter {
	return nil
}
