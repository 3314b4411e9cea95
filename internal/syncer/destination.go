package syncer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Destination struct {
	Remote   bool
	UserHost string
	Path     string
}

// ParseDestination treats "user@host:path" as remote. A drive prefix such
// as "C:" or a slash before the first colon keeps the destination local.
func ParseDestination(s string) Destination {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return Destination{Path: s}
	}

	if i == 1 && isDriveLetter(s[0]) {
		return Destination{Path: s}
	}

	if strings.ContainsAny(s[:i], `/\`) {
		return Destination{Path: s}
	}

	return Destination{
		Remote:   true,
		UserHost: s[:i],
		Path:     s[i+1:],
	}
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (d Destination) String() string {
	if d.Remote {
		return d.UserHost + ":" + d.Path
	}
	return d.Path
}

type Config struct {
	Source      string
	Destination Destination
	KeyPath     string
}

func NewConfig(source, destination, keyPath string) (Config, error) {
	absSrc, err := filepath.Abs(source)
	if err != nil {
		return Config{}, fmt.Errorf("invalid src path: %w", err)
	}

	info, err := os.Stat(absSrc)
	if err != nil {
		return Config{}, fmt.Errorf("source directory not found: %w", err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("source is not a directory: %s", absSrc)
	}

	if destination == "" {
		return Config{}, fmt.Errorf("destination is empty")
	}

	if keyPath != "" {
		absKey, err := filepath.Abs(keyPath)
		if err != nil {
			return Config{}, fmt.Errorf("invalid key path: %w", err)
		}
		if _, err := os.Stat(absKey); err != nil {
			return Config{}, fmt.Errorf("key file not found: %w", err)
		}
		keyPath = absKey
	}

	return Config{
		Source:      absSrc,
		Destination: ParseDestination(destination),
		KeyPath:     keyPath,
	}, nil
}
