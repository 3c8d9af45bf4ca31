package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/claude/mapty/internal/app"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Auth      AuthConfig      `yaml:"auth"`
	Map       MapConfig       `yaml:"map"`
	Form      FormConfig      `yaml:"form"`
	Session   SessionConfig   `yaml:"session"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AuthConfig protects the MCP endpoint. An empty key leaves it open.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type MapConfig struct {
	Zoom        int           `yaml:"zoom"`
	TileURL     string        `yaml:"tile_url"`
	Attribution string        `yaml:"attribution"`
	PanDuration time.Duration `yaml:"pan_duration"`
}

type FormConfig struct {
	RestoreDelay time.Duration `yaml:"restore_delay"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AppOptions returns the controller options described by the config.
func (c *Config) AppOptions() app.Options {
	return app.Options{
		Zoom: c.Map.Zoom,
		TileLayer: app.TileLayer{
			URLTemplate: c.Map.TileURL,
			Attribution: c.Map.Attribution,
		},
		RestoreDelay: c.Form.RestoreDelay,
		PanDuration:  c.Map.PanDuration,
	}
}

// Addr returns the plain TCP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func defaults() *Config {
	d := app.DefaultOptions()
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Tailscale: TailscaleConfig{Hostname: "mapty"},
		Map: MapConfig{
			Zoom:        d.Zoom,
			TileURL:     d.TileLayer.URLTemplate,
			Attribution: d.TileLayer.Attribution,
			PanDuration: d.PanDuration,
		},
		Form:    FormConfig{RestoreDelay: d.RestoreDelay},
		Session: SessionConfig{TTL: 30 * time.Minute, SweepInterval: time.Minute},
	}
}

// Load reads config from a YAML file over the built-in defaults, then applies
// environment variable overrides. Env vars use the prefix MAPTY_:
//
//	MAPTY_SERVER_HOST, MAPTY_SERVER_PORT,
//	MAPTY_TAILSCALE_ENABLED, MAPTY_TAILSCALE_HOSTNAME, MAPTY_TAILSCALE_STATE_DIR,
//	MAPTY_AUTH_API_KEY, MAPTY_MAP_ZOOM, MAPTY_MAP_TILE_URL,
//	MAPTY_MAP_ATTRIBUTION, MAPTY_MAP_PAN_DURATION, MAPTY_FORM_RESTORE_DELAY,
//	MAPTY_SESSION_TTL, MAPTY_SESSION_SWEEP_INTERVAL
//
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MAPTY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MAPTY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MAPTY_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("MAPTY_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("MAPTY_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("MAPTY_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("MAPTY_MAP_ZOOM"); v != "" {
		if zoom, err := strconv.Atoi(v); err == nil {
			cfg.Map.Zoom = zoom
		}
	}
	if v := os.Getenv("MAPTY_MAP_TILE_URL"); v != "" {
		cfg.Map.TileURL = v
	}
	if v := os.Getenv("MAPTY_MAP_ATTRIBUTION"); v != "" {
		cfg.Map.Attribution = v
	}
	if v := os.Getenv("MAPTY_MAP_PAN_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Map.PanDuration = d
		}
	}
	if v := os.Getenv("MAPTY_FORM_RESTORE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Form.RestoreDelay = d
		}
	}
	if v := os.Getenv("MAPTY_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}
	if v := os.Getenv("MAPTY_SESSION_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.SweepInterval = d
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 20 {
		return fmt.Errorf("map.zoom must be between 0 and 20, got %d", c.Map.Zoom)
	}
	if c.Map.TileURL == "" {
		return fmt.Errorf("map.tile_url is required")
	}
	if c.Map.PanDuration < 0 {
		return fmt.Errorf("map.pan_duration must not be negative")
	}
	if c.Form.RestoreDelay < 0 {
		return fmt.Errorf("form.restore_delay must not be negative")
	}
	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval is required when session.ttl is set")
	}
	return nil
}
