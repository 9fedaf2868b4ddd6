package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Playback engine timing and backend selection
	Engine EngineConfig `koanf:"engine"`

	Log LogConfig `koanf:"log"`

	// Rewards API (enables play recording when url is set)
	Rewards RewardsConfig `koanf:"rewards"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// Desktop notification for the preview prompt
	Notify NotifyConfig `koanf:"notify"`

	// Prometheus endpoint (disabled when addr is empty)
	Metrics MetricsConfig `koanf:"metrics"`

	// Database location (default: XDG data dir)
	State StateConfig `koanf:"state"`
}

// EngineConfig holds playback engine settings.
type EngineConfig struct {
	TickInterval   time.Duration `koanf:"tick_interval"`   // sampling period (default: 1s)
	PreviewLength  time.Duration `koanf:"preview_length"`  // preview cutoff (default: 15s)
	QualifyingPlay time.Duration `koanf:"qualifying_play"` // accrued time for a paid play (default: 30s)
	ForceSimulated bool          `koanf:"force_simulated"` // never open the audio device
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // zerolog level name (default: LOG_LEVEL, then info)
}

// RewardsConfig holds the rewards API settings.
type RewardsConfig struct {
	URL     string        `koanf:"url"`     // e.g., "https://api.example.com"
	Timeout time.Duration `koanf:"timeout"` // per request (default: 10s)
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// NotifyConfig holds notification settings.
type NotifyConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Addr string `koanf:"addr"` // e.g., "127.0.0.1:9090"
}

// StateConfig holds the database location.
type StateConfig struct {
	Path string `koanf:"path"`
}

const (
	defaultTickInterval   = time.Second
	defaultPreviewLength  = 15 * time.Second
	defaultQualifyingPlay = 30 * time.Second
	defaultRewardsTimeout = 10 * time.Second
)

func Load() (*Config, error) {
	return load(getConfigPaths())
}

// load reads paths in order, later files overriding earlier ones. Missing
// files are skipped.
func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize rewards URL (remove trailing slash)
	cfg.Rewards.URL = strings.TrimSuffix(cfg.Rewards.URL, "/")

	// Expand ~ in state path
	if cfg.State.Path != "" {
		cfg.State.Path = expandPath(cfg.State.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavesplay/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wavesplay", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasRewardsConfig returns true if play recording is configured.
func (c *Config) HasRewardsConfig() bool {
	return c.Rewards.URL != ""
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// NotifyEnabled reports whether the preview prompt should notify.
func (c *Config) NotifyEnabled() bool {
	return c.Notify.Enabled == nil || *c.Notify.Enabled
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = defaultPreviewLength
	}
	if cfg.QualifyingPlay <= 0 {
		cfg.QualifyingPlay = defaultQualifyingPlay
	}

	return cfg
}

// GetRewardsConfig returns the rewards configuration with defaults applied.
func (c *Config) GetRewardsConfig() RewardsConfig {
	cfg := c.Rewards
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRewardsTimeout
	}
	return cfg
}
