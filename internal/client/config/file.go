package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ajenda/ajenda/internal/flagx"
	"github.com/ajenda/ajenda/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Fields left out of the file keep the
// value they already had.
type fileConfig struct {
	ServerURL           string         `json:"server_url" yaml:"server_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SessionDSN          string         `json:"session_dsn" yaml:"session_dsn"`
	ExpiryCheckInterval timex.Duration `json:"expiry_check_interval" yaml:"expiry_check_interval"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	Publish             filePublish    `json:"publish" yaml:"publish"`
}

type filePublish struct {
	Endpoint        string         `json:"endpoint" yaml:"endpoint"`
	Region          string         `json:"region" yaml:"region"`
	Bucket          string         `json:"bucket" yaml:"bucket"`
	AccessKeyID     string         `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string         `json:"secret_access_key" yaml:"secret_access_key"`
	LinkTTL         timex.Duration `json:"link_ttl" yaml:"link_ttl"`
}

// parseFile overlays cfg with the file named by -c or -config. Without
// either flag it does nothing.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := decode(path, data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}

	if err := fc.apply(cfg); err != nil {
		return fmt.Errorf("config %s: %w", filepath.Base(path), err)
	}
	return nil
}

func decode(path string, data []byte, fc *fileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, fc)
	default:
		return json.Unmarshal(data, fc)
	}
}

// apply copies the set fields onto cfg. Durations must be positive.
func (fc *fileConfig) apply(cfg *Config) error {
	var errs []error
	errs = append(errs, setDuration("request_timeout", &cfg.RequestTimeout, fc.RequestTimeout))
	errs = append(errs, setDuration("expiry_check_interval", &cfg.ExpiryCheckInterval, fc.ExpiryCheckInterval))
	errs = append(errs, setDuration("publish.link_ttl", &cfg.Publish.LinkTTL, fc.Publish.LinkTTL))
	if err := errors.Join(errs...); err != nil {
		return err
	}

	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.SessionDSN, fc.SessionDSN)
	setString(&cfg.LogLevel, fc.LogLevel)

	p := &cfg.Publish
	setString(&p.Endpoint, fc.Publish.Endpoint)
	setString(&p.Region, fc.Publish.Region)
	setString(&p.Bucket, fc.Publish.Bucket)
	setString(&p.AccessKeyID, fc.Publish.AccessKeyID)
	setString(&p.SecretAccessKey, fc.Publish.SecretAccessKey)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(name string, dst *time.Duration, v timex.Duration) error {
	switch {
	case v.Duration < 0:
		return fmt.Errorf("%s must be positive, got %s", name, v.Duration)
	case v.Duration > 0:
		*dst = v.Duration
	}
	return nil
}
