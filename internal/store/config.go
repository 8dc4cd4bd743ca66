package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config is the client configuration. Priority: flags > ENV > YAML > defaults.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Poll   PollConfig   `yaml:"poll"   json:"poll"`
	Usage  UsageConfig  `yaml:"usage"  json:"usage"`
	Log    LogConfig    `yaml:"log"    json:"log"`
	TUI    TUIConfig    `yaml:"tui"    json:"tui"`
}

type ServerConfig struct {
	URL     string        `yaml:"url"     json:"url"     env:"AUTOPLEX_SERVER"         env-default:"http://127.0.0.1:5000/api"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"AUTOPLEX_SERVER_TIMEOUT" env-default:"30s"`
}

type PollConfig struct {
	// StatusInterval is how often the UIs re-read /status.
	StatusInterval time.Duration `yaml:"status_interval" json:"statusInterval" env:"AUTOPLEX_POLL_STATUS_INTERVAL" env-default:"60s"`
	// RunNowDelay is the pause before re-reading status after a run-now.
	RunNowDelay time.Duration `yaml:"run_now_delay" json:"runNowDelay" env:"AUTOPLEX_POLL_RUN_NOW_DELAY" env-default:"2s"`
}

type UsageConfig struct {
	Quota int `yaml:"quota" json:"quota" env:"AUTOPLEX_USAGE_QUOTA" env-default:"100"`
}

type LogConfig struct {
	Level  string `yaml:"level"  json:"level"  env:"AUTOPLEX_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" json:"format" env:"AUTOPLEX_LOG_FORMAT" env-default:"text"`
	// File receives logs while the TUI owns the terminal. Empty disables TUI logging.
	File string `yaml:"file" json:"file,omitempty" env:"AUTOPLEX_DEBUG_LOG"`
}

type TUIConfig struct {
	// Theme is light|dark|auto.
	Theme string `yaml:"theme" json:"theme" env:"AUTOPLEX_TUI_THEME" env-default:"auto"`
}

// LoadConfig reads path (or the store's config.yaml when path is empty)
// and environment variables. A missing default file is not an error; a
// missing explicit file is.
func (s Store) LoadConfig(path string) (*Config, error) {
	var cfg Config

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = s.ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML to the store's config.yaml.
func (s Store) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := s.ConfigPath()
	return atomicWriteFile(filepath.Dir(path), "config.yaml.*.tmp", path, b, 0o600)
}

func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(strings.TrimSpace(c.Server.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server.url must be an http(s) URL, got %q", c.Server.URL))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server.timeout must be positive"))
	}
	if c.Poll.StatusInterval < time.Second {
		errs = append(errs, errors.New("poll.status_interval must be at least 1s"))
	}
	if c.Poll.RunNowDelay < 0 {
		errs = append(errs, errors.New("poll.run_now_delay must not be negative"))
	}
	if c.Usage.Quota <= 0 {
		errs = append(errs, errors.New("usage.quota must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text|json, got %q", c.Log.Format))
	}
	switch strings.ToLower(c.TUI.Theme) {
	case "", "auto", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("tui.theme must be auto|light|dark, got %q", c.TUI.Theme))
	}
	return errors.Join(errs...)
}
