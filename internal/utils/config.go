package utils

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the dashboard configuration. Missing files and missing keys fall
// back to DefaultConfig.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Map     MapConfig     `yaml:"map"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	TLSCert         string        `yaml:"tls_cert"`
	TLSKey          string        `yaml:"tls_key"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MaxCookieAge is the longest cookie lifetime browsers honour (400 days). The
// token itself carries no expiry, so the cookie defaults to living that long.
const MaxCookieAge = 400 * 24 * 3600

type SessionConfig struct {
	CookieName    string `yaml:"cookie_name"`
	MasterKeyFile string `yaml:"master_key_file"`
	Secure        bool   `yaml:"secure"`
	MaxAge        int    `yaml:"max_age"`
}

// MapConfig selects the XYZ tile provider used on the farmer detail page.
type MapConfig struct {
	TileURL     string `yaml:"tile_url"`
	Attribution string `yaml:"attribution"`
	Zoom        int    `yaml:"zoom"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			CookieName:    "freshxpress_session",
			MasterKeyFile: "master.key",
			MaxAge:        MaxCookieAge,
		},
		Map: MapConfig{
			TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			Zoom:        13,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads the YAML file at path over the defaults, applies
// environment overrides and validates the result. An empty path or a missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FRESHXPRESS_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("FRESHXPRESS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FRESHXPRESS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FRESHXPRESS_COOKIE_SECURE"); v != "" {
		c.Session.Secure = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate normalises and checks the configuration.
func (c *Config) Validate() error {
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if c.Session.MaxAge < 0 {
		return errors.New("session.max_age must not be negative")
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = 13
	}
	return nil
}
