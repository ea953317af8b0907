package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	ThemeDark  = "dark-modern"
	ThemeLight = "light"

	ModeAsync = "async"
	ModeSync  = "sync"
)

// EnvTheme 覆盖配置文件中的主题。
const EnvTheme = "JS_RUNNER_THEME"

// Config is the only persisted config file schema.
type Config struct {
	Theme       string `toml:"theme"`
	Mode        string `toml:"mode"`
	TabWidth    int    `toml:"tab_width"`
	LineNumbers string `toml:"line_numbers"`
	Minimap     bool   `toml:"minimap"`
	IndentSize  int    `toml:"indent_size"`

	SplitRatio    float64 `toml:"split_ratio"`
	MinPaneWidth  int     `toml:"min_pane_width"`
	MinPaneHeight int     `toml:"min_pane_height"`
	NarrowWidth   int     `toml:"narrow_width"`

	AltScreen bool   `toml:"alt_screen"`
	Mouse     bool   `toml:"mouse"`
	LogPath   string `toml:"log_path"`
	LogLevel  string `toml:"log_level"`

	Source string `toml:"-"`
}

func Default() Config {
	return Config{
		Theme:         ThemeDark,
		Mode:          ModeAsync,
		TabWidth:      2,
		LineNumbers:   "on",
		Minimap:       true,
		IndentSize:    2,
		SplitRatio:    0.5,
		MinPaneWidth:  20,
		MinPaneHeight: 5,
		NarrowWidth:   100,
		AltScreen:     true,
		Mouse:         true,
		LogLevel:      "info",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".js-runner", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg.Normalize(), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg.Normalize(), nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv(EnvTheme)); env != "" {
		cfg.Theme = env
	}
}

// Normalize 将非法取值回退到默认值。
func (c Config) Normalize() Config {
	def := Default()
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "light", "vs-light", "vs":
		c.Theme = ThemeLight
	case "dark", "dark-modern", "":
		c.Theme = ThemeDark
	default:
		c.Theme = def.Theme
	}
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case ModeSync:
		c.Mode = ModeSync
	default:
		c.Mode = ModeAsync
	}
	switch lv := strings.ToLower(strings.TrimSpace(c.LogLevel)); lv {
	case "trace", "debug", "info", "warn", "error":
		c.LogLevel = lv
	case "warning":
		c.LogLevel = "warn"
	default:
		c.LogLevel = def.LogLevel
	}
	switch c.LineNumbers {
	case "on", "off", "relative":
	default:
		c.LineNumbers = def.LineNumbers
	}
	if c.TabWidth <= 0 || c.TabWidth > 8 {
		c.TabWidth = def.TabWidth
	}
	if c.IndentSize <= 0 || c.IndentSize > 8 {
		c.IndentSize = def.IndentSize
	}
	if c.SplitRatio <= 0 || c.SplitRatio >= 1 {
		c.SplitRatio = def.SplitRatio
	}
	if c.MinPaneWidth <= 0 {
		c.MinPaneWidth = def.MinPaneWidth
	}
	if c.MinPaneHeight <= 0 {
		c.MinPaneHeight = def.MinPaneHeight
	}
	if c.NarrowWidth <= 0 {
		c.NarrowWidth = def.NarrowWidth
	}
	return c
}
