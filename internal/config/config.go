package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	GitHub   GitHubConfig   `toml:"github"`
	Poll     PollConfig     `toml:"poll"`
	Banner   BannerConfig   `toml:"banner"`
	Board    BoardConfig    `toml:"board"`
	Window   WindowConfig   `toml:"window"`
	Drag     DragConfig     `toml:"drag"`
	Menu     MenuConfig     `toml:"menu"`
	Logging  LoggingConfig  `toml:"logging"`
	Serve    ServeConfig    `toml:"serve"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type GitHubConfig struct {
	APIURL     string `toml:"api_url"`
	GraphQLURL string `toml:"graphql_url"`
	GHPath     string `toml:"gh_path"`
	TokenEnv   string `toml:"token_env"`
	Timeout    string `toml:"timeout"`
}

type PollConfig struct {
	Interval string `toml:"interval"`
}

type BannerConfig struct {
	Timeout string `toml:"timeout"`
}

type BoardConfig struct {
	ColumnWidth  int `toml:"column_width"`
	Gap          int `toml:"gap"`
	Padding      int `toml:"padding"`
	MaxCardLines int `toml:"max_card_lines"`
}

type WindowConfig struct {
	Resize     bool `toml:"resize"`
	MenuMargin int  `toml:"menu_margin"`
}

type DragConfig struct {
	ClickSuppress string `toml:"click_suppress"`
}

type MenuConfig struct {
	CloseGrace string `toml:"close_grace"`
}

type LoggingConfig struct {
	Level   string           `toml:"level"`
	DevFile DevFileLogConfig `toml:"dev_file"`
}

type DevFileLogConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServeConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		GitHub: GitHubConfig{
			APIURL:     "https://api.github.com",
			GraphQLURL: "https://api.github.com/graphql",
			TokenEnv:   "GITHUB_TOKEN",
			Timeout:    "30s",
		},
		Poll: PollConfig{
			Interval: "5m",
		},
		Banner: BannerConfig{
			Timeout: "10s",
		},
		Board: BoardConfig{
			ColumnWidth:  28,
			Gap:          1,
			Padding:      1,
			MaxCardLines: 2,
		},
		Window: WindowConfig{
			Resize:     true,
			MenuMargin: 4,
		},
		Drag: DragConfig{
			ClickSuppress: "250ms",
		},
		Menu: MenuConfig{
			CloseGrace: "300ms",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileLogConfig{
				Enabled: true,
			},
		},
		Serve: ServeConfig{
			Bind:        "127.0.0.1:5438",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.Logging.Level = normalizeLevel(cfg.Logging.Level, defaults.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// normalizeLevel trims and lowercases a log level, falling back when blank.
func normalizeLevel(level, fallback string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return strings.ToLower(strings.TrimSpace(fallback))
	}
	return level
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	for name, raw := range map[string]string{
		"github.api_url":     c.GitHub.APIURL,
		"github.graphql_url": c.GitHub.GraphQLURL,
	} {
		parsed, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}

	durations := []struct {
		name string
		raw  string
		min  time.Duration
	}{
		{name: "github.timeout", raw: c.GitHub.Timeout, min: time.Second},
		{name: "poll.interval", raw: c.Poll.Interval, min: 5 * time.Second},
		{name: "banner.timeout", raw: c.Banner.Timeout, min: time.Second},
		{name: "drag.click_suppress", raw: c.Drag.ClickSuppress, min: 0},
		{name: "menu.close_grace", raw: c.Menu.CloseGrace, min: 0},
	}
	for _, d := range durations {
		value, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("invalid %s: %q", d.name, d.raw)
		}
		if value < d.min {
			return fmt.Errorf("%s must be >= %s", d.name, d.min)
		}
	}

	if c.Board.ColumnWidth < 12 {
		return fmt.Errorf("board.column_width must be >= 12")
	}
	if c.Board.Gap < 0 || c.Board.Padding < 0 {
		return fmt.Errorf("board.gap and board.padding must be >= 0")
	}
	if c.Board.MaxCardLines < 1 {
		return fmt.Errorf("board.max_card_lines must be >= 1")
	}
	if c.Window.MenuMargin < 0 {
		return fmt.Errorf("window.menu_margin must be >= 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Serve.Bind) == "" {
		return errors.New("serve.bind is required")
	}
	for name, endpoint := range map[string]string{
		"serve.api_endpoint": c.Serve.APIEndpoint,
		"serve.mcp_endpoint": c.Serve.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with /", name)
		}
	}
	if strings.TrimSpace(c.Serve.APIEndpoint) == strings.TrimSpace(c.Serve.MCPEndpoint) {
		return errors.New("serve.api_endpoint and serve.mcp_endpoint must differ")
	}

	return nil
}

// PollInterval returns the parsed board refresh interval.
func (c Config) PollInterval() time.Duration {
	return parseDurationOr(c.Poll.Interval, 5*time.Minute)
}

// BannerTimeout returns how long transient banners stay visible.
func (c Config) BannerTimeout() time.Duration {
	return parseDurationOr(c.Banner.Timeout, 10*time.Second)
}

// ClickSuppress returns the post-drag click suppression window.
func (c Config) ClickSuppress() time.Duration {
	return parseDurationOr(c.Drag.ClickSuppress, 250*time.Millisecond)
}

// MenuCloseGrace returns the submenu hover-leave grace period.
func (c Config) MenuCloseGrace() time.Duration {
	return parseDurationOr(c.Menu.CloseGrace, 300*time.Millisecond)
}

// GitHubTimeout returns the per-request GitHub API timeout.
func (c Config) GitHubTimeout() time.Duration {
	return parseDurationOr(c.GitHub.Timeout, 30*time.Second)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteFile encodes cfg as TOML at path, refusing to replace an existing file.
func WriteFile(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return file.Close()
}
