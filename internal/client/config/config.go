package config

import "time"

// Config holds runtime settings for the NoteKeeper client.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - WebsocketURL: URL of the push-event websocket endpoint.
//   - DatabasePath: path to the local SQLite file holding session state.
//   - RequestTimeout: per-request timeout for API calls.
type Config struct {
	ServerURL      string
	WebsocketURL   string
	DatabasePath   string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.WebsocketURL = "ws://127.0.0.1:8080/ws"
	c.DatabasePath = "notekeeper.db"
	c.RequestTimeout = 12 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
