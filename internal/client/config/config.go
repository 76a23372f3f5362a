package config

import "time"

// Config holds runtime settings for the gophnotes CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - PollInterval: pause between two note sync cycles.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DecryptConcurrency: notes decrypted in parallel during one sync cycle.
//   - DataDir: directory (relative to the working dir) holding the local DB.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	ServerEndpointAddr  string
	PollInterval        time.Duration
	OnlineCheckInterval time.Duration
	DecryptConcurrency  int
	DataDir             string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PollInterval = 3 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DecryptConcurrency = 8
	c.DataDir = "data"
	c.LogLevel = "warn"
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
