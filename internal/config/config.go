package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters shared by the alarm binaries.
type Config struct {
	// DataDir is the directory holding the persisted alarm collection.
	DataDir string `yaml:"data_dir"`
	// SocketPath is the unix socket the daemon serves its control RPC on.
	SocketPath string `yaml:"socket_path"`
	// ForegroundInterval is the cadence of the tight polling loop.
	ForegroundInterval time.Duration `yaml:"foreground_interval"`
	// ForegroundTolerance is the trigger window used by the tight loop.
	ForegroundTolerance time.Duration `yaml:"foreground_tolerance"`
	// BackgroundSpec is the cron expression (with seconds) driving the
	// coarse background evaluation.
	BackgroundSpec string `yaml:"background_spec"`
	// BackgroundTolerance is the trigger window used by background evaluation.
	BackgroundTolerance time.Duration `yaml:"background_tolerance"`
	// DefaultSnoozeMinutes is applied to alarms created without an explicit value.
	DefaultSnoozeMinutes int `yaml:"default_snooze_minutes"`
	// LogLevel sets the daemon log verbosity (debug, info, warn, error, fatal).
	LogLevel string `yaml:"log_level"`
}

const (
	// AppName is used for XDG data and runtime paths.
	AppName = "alarm-clock"

	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultForegroundInterval is the cadence of the tight polling loop.
	DefaultForegroundInterval = time.Second

	// DefaultForegroundTolerance is the trigger window of the tight loop.
	// One interval wide, so an alarm is detected at worst on the tick
	// preceding its exact instant.
	DefaultForegroundTolerance = time.Second

	// DefaultBackgroundSpec evaluates every 15 minutes.
	DefaultBackgroundSpec = "0 */15 * * * *"

	// DefaultBackgroundTolerance is the coarse trigger window. Background
	// evaluation cannot promise second-level precision, so the window is
	// deliberately wide.
	DefaultBackgroundTolerance = time.Minute

	// DefaultSnoozeMinutes postpones a snoozed alarm by this many minutes.
	DefaultSnoozeMinutes = 5

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeInterval is returned when a polling interval is not positive.
	errNegativeInterval = errors.New("polling interval must be positive")
	// errNegativeTolerance is returned when a trigger tolerance is not positive.
	errNegativeTolerance = errors.New("trigger tolerance must be positive")
)

// DefaultDataDir returns the default alarm database directory following the XDG spec.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// DefaultSocketPath returns the default control socket location.
func DefaultSocketPath() string {
	return filepath.Join(xdg.RuntimeDir, AppName+".sock")
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		DataDir:              DefaultDataDir(),
		SocketPath:           DefaultSocketPath(),
		ForegroundInterval:   DefaultForegroundInterval,
		ForegroundTolerance:  DefaultForegroundTolerance,
		BackgroundSpec:       DefaultBackgroundSpec,
		BackgroundTolerance:  DefaultBackgroundTolerance,
		DefaultSnoozeMinutes: DefaultSnoozeMinutes,
		LogLevel:             "info",
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: defaults are returned so the daemon can run
// without any prior setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills gaps with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ForegroundInterval < 0 || cfg.BackgroundTolerance < 0 {
		return errNegativeInterval
	}

	if cfg.ForegroundTolerance < 0 {
		return errNegativeTolerance
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}

	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath()
	}

	if cfg.ForegroundInterval == 0 {
		cfg.ForegroundInterval = DefaultForegroundInterval
	}

	if cfg.ForegroundTolerance == 0 {
		cfg.ForegroundTolerance = DefaultForegroundTolerance
	}

	if cfg.BackgroundSpec == "" {
		cfg.BackgroundSpec = DefaultBackgroundSpec
	}

	if cfg.BackgroundTolerance == 0 {
		cfg.BackgroundTolerance = DefaultBackgroundTolerance
	}

	if cfg.DefaultSnoozeMinutes <= 0 {
		cfg.DefaultSnoozeMinutes = DefaultSnoozeMinutes
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return nil
}
