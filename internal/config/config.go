package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all lifehack configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Widget   WidgetConfig   `yaml:"widget"`
	Notify   NotifyConfig   `yaml:"notify"`
	// Timezone is an IANA name used for day keys and the midnight refresh.
	// Empty means the host's local zone.
	Timezone string         `yaml:"timezone"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type WidgetConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
	Hour    int  `yaml:"hour"`
	Minute  int  `yaml:"minute"`
}

// Environment overrides.
const (
	EnvConfig    = "LIFEHACK_CONFIG"
	EnvDB        = "LIFEHACK_DB"
	EnvWidgetDir = "LIFEHACK_WIDGET_DIR"
	EnvPort      = "LIFEHACK_PORT"
)

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Widget: WidgetConfig{
			Enabled: true,
			Dir:     "", // resolved at runtime via DefaultWidgetDir()
		},
		Notify: NotifyConfig{
			Enabled: true,
			Hour:    21,
			Minute:  0,
		},
	}
}

// Dir returns ~/.lifehack.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".lifehack")
}

// DefaultPath returns the config file location, honoring LIFEHACK_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultWidgetDir returns the shared directory the widget payload is written to.
func DefaultWidgetDir() string {
	return filepath.Join(Dir(), "widget")
}

// Load reads path on top of Default and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvWidgetDir); v != "" {
		c.Widget.Dir = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks ranges and the time zone name.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Notify.Hour < 0 || c.Notify.Hour > 23 {
		return fmt.Errorf("notify.hour %d out of range", c.Notify.Hour)
	}
	if c.Notify.Minute < 0 || c.Notify.Minute > 59 {
		return fmt.Errorf("notify.minute %d out of range", c.Notify.Minute)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WidgetDir returns the configured widget directory or the default.
func (c *Config) WidgetDir() string {
	if c.Widget.Dir != "" {
		return c.Widget.Dir
	}
	return DefaultWidgetDir()
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
