// Package config loads airadio settings from TOML files, .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.airadiorc, $XDG_CONFIG_HOME/airadio/config.toml, ~/.config/airadio/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are given. Missing files are ignored and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath returns the path a new config file is written to.
func DefaultPath() string {
	paths := searchPaths()
	if len(paths) == 0 {
		return "config.toml"
	}
	return paths[len(paths)-1]
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".airadiorc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "airadio", "config.toml"))
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	if v := firstEnv("AIRADIO_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("AIRADIO_SPOTIFY_DEVICE"); v != "" {
		cfg.Spotify.Device = v
	}
	if v := os.Getenv("AIRADIO_SPOTIFY_TOKEN_FILE"); v != "" {
		cfg.Spotify.TokenFile = v
	}
	if v := os.Getenv("AIRADIO_SPOTIFY_MARKET"); v != "" {
		cfg.Spotify.Market = v
	}

	// Recommend
	if v := os.Getenv("AIRADIO_RECOMMEND_URL"); v != "" {
		cfg.Recommend.URL = v
	}
	envInt("AIRADIO_RECOMMEND_TIMEOUT", &cfg.Recommend.Timeout)
	if v := firstEnv("AIRADIO_OPENAI_API_KEY", "OPENAI_API_KEY"); v != "" {
		cfg.Recommend.OpenAIAPIKey = v
	}
	if v := os.Getenv("AIRADIO_OPENAI_MODEL"); v != "" {
		cfg.Recommend.OpenAIModel = v
	}

	// Radio
	envInt("AIRADIO_RADIO_WATERMARK", &cfg.Radio.Watermark)
	envInt("AIRADIO_RADIO_TICK_INTERVAL", &cfg.Radio.TickInterval)
	envInt("AIRADIO_RADIO_POLL_INTERVAL", &cfg.Radio.PollInterval)
	envInt("AIRADIO_RADIO_COMMAND_TIMEOUT", &cfg.Radio.CommandTimeout)

	// Server
	if v := os.Getenv("AIRADIO_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("AIRADIO_SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	// TUI
	if v := os.Getenv("AIRADIO_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("AIRADIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AIRADIO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("AIRADIO_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
