package config

import (
	"time"

	"github.com/ajenda/ajenda/internal/client/session"
)

// Config holds runtime settings for the ajenda CLI.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	SessionDSN          string
	ExpiryCheckInterval time.Duration
	LogLevel            string
	Publish             Publish
}

// Publish configures feed publishing. An empty Bucket disables it.
type Publish struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	LinkTTL         time.Duration
}

// Enabled reports whether a bucket is configured.
func (p Publish) Enabled() bool {
	return p.Bucket != ""
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 30 * time.Second
	c.SessionDSN = session.DefaultDSN
	c.ExpiryCheckInterval = 30 * time.Second
	c.LogLevel = "info"
	c.Publish = Publish{
		Region:  "us-east-1",
		LinkTTL: 24 * time.Hour,
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
