package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	return path
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/data/wavesplay.db", filepath.Join(home, "data", "wavesplay.db")},
		{"absolute path unchanged", "/var/lib/wavesplay.db", "/var/lib/wavesplay.db"},
		{"relative path unchanged", "data/wavesplay.db", "data/wavesplay.db"},
		{"empty string unchanged", "", ""},
		{"tilde only", "~", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}
}

func TestGetEngineConfig_Defaults(t *testing.T) {
	cfg := (&Config{}).GetEngineConfig()

	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.TickInterval)
	}
	if cfg.PreviewLength != 15*time.Second {
		t.Errorf("PreviewLength = %v, want 15s", cfg.PreviewLength)
	}
	if cfg.QualifyingPlay != 30*time.Second {
		t.Errorf("QualifyingPlay = %v, want 30s", cfg.QualifyingPlay)
	}
	if cfg.ForceSimulated {
		t.Error("ForceSimulated = true, want false")
	}
}

func TestGetEngineConfig_InvalidValues(t *testing.T) {
	cfg := (&Config{Engine: EngineConfig{
		TickInterval:   -time.Second,
		PreviewLength:  0,
		QualifyingPlay: -1,
	}}).GetEngineConfig()

	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.TickInterval)
	}
	if cfg.PreviewLength != 15*time.Second {
		t.Errorf("PreviewLength = %v, want 15s", cfg.PreviewLength)
	}
	if cfg.QualifyingPlay != 30*time.Second {
		t.Errorf("QualifyingPlay = %v, want 30s", cfg.QualifyingPlay)
	}
}

func TestGetRewardsConfig_DefaultTimeout(t *testing.T) {
	cfg := (&Config{Rewards: RewardsConfig{URL: "https://api.example.com"}}).GetRewardsConfig()
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.URL != "https://api.example.com" {
		t.Errorf("URL = %q", cfg.URL)
	}
}

func TestHasConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantRewards bool
		wantLastfm  bool
	}{
		{"empty", Config{}, false, false},
		{"rewards only", Config{Rewards: RewardsConfig{URL: "https://api.example.com"}}, true, false},
		{"lastfm key only", Config{Lastfm: LastfmConfig{APIKey: "k"}}, false, false},
		{"lastfm complete", Config{Lastfm: LastfmConfig{APIKey: "k", APISecret: "s"}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasRewardsConfig(); got != tt.wantRewards {
				t.Errorf("HasRewardsConfig() = %v, want %v", got, tt.wantRewards)
			}
			if got := tt.cfg.HasLastfmConfig(); got != tt.wantLastfm {
				t.Errorf("HasLastfmConfig() = %v, want %v", got, tt.wantLastfm)
			}
		})
	}
}

func TestNotifyEnabled(t *testing.T) {
	off, on := false, true
	tests := []struct {
		name    string
		enabled *bool
		want    bool
	}{
		{"unset defaults to enabled", nil, true},
		{"explicitly enabled", &on, true},
		{"explicitly disabled", &off, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Notify: NotifyConfig{Enabled: tt.enabled}}
			if got := cfg.NotifyEnabled(); got != tt.want {
				t.Errorf("NotifyEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	cfg, err := load([]string{filepath.Join(t.TempDir(), "absent.toml")})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("load() returned nil config")
	}
	if cfg.HasRewardsConfig() || cfg.HasLastfmConfig() {
		t.Errorf("unexpected integrations enabled: %+v", cfg)
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	path := writeConfig(t, `
[engine]
tick_interval = "500ms"
preview_length = "20s"
force_simulated = true

[log]
level = "debug"

[rewards]
url = "https://api.example.com/"
timeout = "3s"

[notify]
enabled = false

[metrics]
addr = "127.0.0.1:9090"

[state]
path = "~/wavesplay/state.db"
`)

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Engine.TickInterval != 500*time.Millisecond {
		t.Errorf("TickInterval = %v, want 500ms", cfg.Engine.TickInterval)
	}
	if cfg.Engine.PreviewLength != 20*time.Second {
		t.Errorf("PreviewLength = %v, want 20s", cfg.Engine.PreviewLength)
	}
	if !cfg.Engine.ForceSimulated {
		t.Error("ForceSimulated = false, want true")
	}
	// Unset values get defaults
	if got := cfg.GetEngineConfig().QualifyingPlay; got != 30*time.Second {
		t.Errorf("QualifyingPlay = %v, want 30s", got)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}

	// Check that URL trailing slash is removed
	if cfg.Rewards.URL != "https://api.example.com" {
		t.Errorf("Rewards.URL = %q, want %q", cfg.Rewards.URL, "https://api.example.com")
	}
	if cfg.Rewards.Timeout != 3*time.Second {
		t.Errorf("Rewards.Timeout = %v, want 3s", cfg.Rewards.Timeout)
	}
	if cfg.NotifyEnabled() {
		t.Error("NotifyEnabled() = true, want false")
	}
	if cfg.Metrics.Addr != "127.0.0.1:9090" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "wavesplay", "state.db"); cfg.State.Path != want {
		t.Errorf("State.Path = %q, want %q", cfg.State.Path, want)
	}
}

func TestLoad_LaterFileWins(t *testing.T) {
	global := writeConfig(t, `
[lastfm]
api_key = "global-key"
api_secret = "global-secret"

[rewards]
url = "https://global.example.com"
`)
	local := writeConfig(t, `
[rewards]
url = "https://local.example.com"
`)

	cfg, err := load([]string{global, local})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Rewards.URL != "https://local.example.com" {
		t.Errorf("Rewards.URL = %q, want local override", cfg.Rewards.URL)
	}
	if cfg.Lastfm.APIKey != "global-key" {
		t.Errorf("Lastfm.APIKey = %q, want value from first file", cfg.Lastfm.APIKey)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	path := writeConfig(t, "invalid = [[[")

	if _, err := load([]string{path}); err == nil {
		t.Error("load() expected error for invalid TOML, got nil")
	}
}
