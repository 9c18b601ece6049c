package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Environment variables that override file values. The Legacy names are read
// only when the primary name is unset.
const (
	EnvServerURL         = "VIKUNJA_URL"
	EnvServerToken       = "VIKUNJA_TOKEN"
	EnvLegacyServerURL   = "INSTANCE_URL"
	EnvLegacyServerToken = "API_KEY"
)

// ErrMissingURL and related errors describe startup configuration failures.
var (
	ErrMissingURL   = errors.New("server url is required (set [server] url or VIKUNJA_URL)")
	ErrMissingToken = errors.New("server token is required (set [server] token or VIKUNJA_TOKEN)")
	ErrInvalidURL   = errors.New("invalid server url")
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	List    ListConfig    `toml:"list"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	URL       string `toml:"url"`
	Token     string `toml:"token"`
	ProjectID int64  `toml:"project_id"`
	Timeout   string `toml:"timeout"`
}

type ListConfig struct {
	PerPage int `toml:"per_page"`
}

type UIConfig struct {
	Timezone string `toml:"timezone"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the built-in configuration. logDir seeds the dev log location.
func Default(logDir string) Config {
	return Config{
		Server: ServerConfig{
			ProjectID: 1,
			Timeout:   "30s",
		},
		List: ListConfig{
			PerPage: 50,
		},
		UI: UIConfig{
			Timezone: "Local",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     logDir,
			},
		},
	}
}

// Load reads path over defaults, applies environment overrides, and validates.
// A missing or empty file keeps the defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return nil
	}
	if err := toml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("decode toml: %w", err)
	}
	return nil
}

// ApplyEnv overlays the server url and token from the environment when set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v := firstEnv(lookup, EnvServerURL, EnvLegacyServerURL); v != "" {
		c.Server.URL = v
	}
	if v := firstEnv(lookup, EnvServerToken, EnvLegacyServerToken); v != "" {
		c.Server.Token = v
	}
}

// firstEnv returns the first non-blank value among names.
func firstEnv(lookup func(string) (string, bool), names ...string) string {
	for _, name := range names {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (c Config) Validate() error {
	rawURL := strings.TrimSpace(c.Server.URL)
	if rawURL == "" {
		return ErrMissingURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q must be an http(s) url", ErrInvalidURL, rawURL)
	}
	if strings.TrimSpace(c.Server.Token) == "" {
		return ErrMissingToken
	}
	if c.Server.ProjectID < 1 {
		return fmt.Errorf("server.project_id must be >= 1, got %d", c.Server.ProjectID)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if c.List.PerPage < 1 {
		return fmt.Errorf("list.per_page must be >= 1, got %d", c.List.PerPage)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := charmLog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// RequestTimeout parses server.timeout. Zero disables the per-request deadline.
func (c Config) RequestTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Server.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid server.timeout %q: %w", c.Server.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("server.timeout must be >= 0, got %s", d)
	}
	return d, nil
}

// Location resolves ui.timezone, defaulting to the local zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.UI.Timezone)
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid ui.timezone %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}
