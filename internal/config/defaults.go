package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Recommend: RecommendConfig{
			Timeout:     30000,
			OpenAIModel: "gpt-4",
			OpenAIURL:   "https://api.openai.com/v1/chat/completions",
		},
		Radio: RadioConfig{
			Watermark:      3,
			TickInterval:   1000,
			PollInterval:   1000,
			CommandTimeout: 10000,
		},
		Server: ServerConfig{
			Addr:           ":8888",
			AllowedOrigins: []string{"*"},
		},
		TUI: TUIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Recommend
	if c.Recommend.Timeout == 0 {
		c.Recommend.Timeout = d.Recommend.Timeout
	}
	if c.Recommend.OpenAIModel == "" {
		c.Recommend.OpenAIModel = d.Recommend.OpenAIModel
	}
	if c.Recommend.OpenAIURL == "" {
		c.Recommend.OpenAIURL = d.Recommend.OpenAIURL
	}

	// Radio
	if c.Radio.Watermark == 0 {
		c.Radio.Watermark = d.Radio.Watermark
	}
	if c.Radio.TickInterval == 0 {
		c.Radio.TickInterval = d.Radio.TickInterval
	}
	if c.Radio.PollInterval == 0 {
		c.Radio.PollInterval = d.Radio.PollInterval
	}
	if c.Radio.CommandTimeout == 0 {
		c.Radio.CommandTimeout = d.Radio.CommandTimeout
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
