package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Spotify   SpotifyConfig   `toml:"spotify"`
	Recommend RecommendConfig `toml:"recommend"`
	Radio     RadioConfig     `toml:"radio"`
	Server    ServerConfig    `toml:"server"`
	TUI       TUIConfig       `toml:"tui"`
	Log       LogConfig       `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID string `toml:"client_id"`
	// Device is the name of the Connect device to wait for.
	Device    string `toml:"device"`
	TokenFile string `toml:"token_file"`
	Market    string `toml:"market"`
}

// RecommendConfig selects where recommendations come from. When URL is
// set the remote generate-tracks endpoint is used, otherwise OpenAI is
// called directly.
type RecommendConfig struct {
	URL          string `toml:"url"`
	Timeout      int    `toml:"timeout"`
	OpenAIAPIKey string `toml:"openai_api_key"`
	OpenAIModel  string `toml:"openai_model"`
	OpenAIURL    string `toml:"openai_url"`
}

// RadioConfig holds engine settings. Intervals are in milliseconds.
type RadioConfig struct {
	Watermark      int   `toml:"watermark"`
	TickInterval   int   `toml:"tick_interval"`
	PollInterval   int   `toml:"poll_interval"`
	CommandTimeout int   `toml:"command_timeout"`
	AutoAdvance    *bool `toml:"auto_advance"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// TickEvery returns the tick interval as a duration.
func (c RadioConfig) TickEvery() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// PollEvery returns the device poll interval as a duration.
func (c RadioConfig) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// CommandDeadline returns the per-call timeout as a duration.
func (c RadioConfig) CommandDeadline() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Millisecond
}

// AutoAdvanceEnabled reports whether tracks advance when they end.
func (c RadioConfig) AutoAdvanceEnabled() bool {
	return c.AutoAdvance == nil || *c.AutoAdvance
}

// TimeoutDuration returns the recommendation timeout as a duration.
func (c RecommendConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}
