package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	QuietPeriod  time.Duration `mapstructure:"quiet_period"`
	BufferSize   int           `mapstructure:"buffer_size"`
	RsyncPath    string        `mapstructure:"rsync_path"`
	SSHPath      string        `mapstructure:"ssh_path"`
	DaemonPort   int           `mapstructure:"daemon_port"`
	DBPath       string        `mapstructure:"db_path"`
}

var Default = Config{
	PollInterval: 100 * time.Millisecond,
	QuietPeriod:  100 * time.Millisecond,
	BufferSize:   100,
	RsyncPath:    "rsync",
	SSHPath:      "ssh",
	DaemonPort:   9001,
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	return filepath.Join(home, ".syncd"), nil
}

func Load() (*Config, error) {
	configDir, err := Dir()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("poll_interval", Default.PollInterval)
	v.SetDefault("quiet_period", Default.QuietPeriod)
	v.SetDefault("buffer_size", Default.BufferSize)
	v.SetDefault("rsync_path", Default.RsyncPath)
	v.SetDefault("ssh_path", Default.SSHPath)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("db_path", filepath.Join(configDir, "history.db"))

	v.SetEnvPrefix("SYNCD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.QuietPeriod < 0 {
		return nil, fmt.Errorf("quiet_period must not be negative, got %s", cfg.QuietPeriod)
	}

	return &cfg, nil
}
