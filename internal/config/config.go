package config

import "time"

// Config holds runtime settings for the catalog CLI.
//
// An empty RemoteDSN runs the catalog local-only. The S3 fields only matter
// when the remote store is enabled.
type Config struct {
	LocalDSN  string
	RemoteDSN string

	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3BaseEndpoint  string
	S3Bucket        string
	S3PublicBaseURL string

	VisionAPIKey  string
	VisionBaseURL string

	OnlineCheckInterval time.Duration
	RemoteTimeout       time.Duration

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDSN = "modcatalog.db"
	c.S3Region = "us-east-1"
	c.S3Bucket = "module-images"
	c.VisionBaseURL = "https://api.groq.com/openai/v1"
	c.OnlineCheckInterval = 3 * time.Second
	c.RemoteTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// RemoteEnabled reports whether a remote database is configured.
func (c *Config) RemoteEnabled() bool {
	return c.RemoteDSN != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and a .env file), JSON (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
