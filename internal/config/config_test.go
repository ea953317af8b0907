package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Theme(t *testing.T) {
	cfg := Default()
	if cfg.Theme != ThemeDark {
		t.Fatalf("Default().Theme = %q, want %q", cfg.Theme, ThemeDark)
	}
	if cfg.Mode != ModeAsync {
		t.Fatalf("Default().Mode = %q, want %q", cfg.Mode, ModeAsync)
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	t.Setenv(EnvTheme, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("cfg.Source = %q, want %q", cfg.Source, path)
	}
	if cfg.MinPaneWidth != 20 || cfg.MinPaneHeight != 5 {
		t.Fatalf("unexpected minimums: %+v", cfg)
	}
}

func TestLoad_FromTOML(t *testing.T) {
	t.Setenv(EnvTheme, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
theme = "light"
mode = "sync"
tab_width = 4
split_ratio = 0.6
narrow_width = 80
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != ThemeLight {
		t.Fatalf("cfg.Theme = %q, want %q", cfg.Theme, ThemeLight)
	}
	if cfg.Mode != ModeSync {
		t.Fatalf("cfg.Mode = %q, want %q", cfg.Mode, ModeSync)
	}
	if cfg.TabWidth != 4 || cfg.SplitRatio != 0.6 || cfg.NarrowWidth != 80 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.IndentSize != 2 {
		t.Fatalf("cfg.IndentSize = %d, want default 2", cfg.IndentSize)
	}
}

func TestLoad_EnvOverridesTheme(t *testing.T) {
	t.Setenv(EnvTheme, "light")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != ThemeLight {
		t.Fatalf("cfg.Theme = %q, want %q", cfg.Theme, ThemeLight)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("theme = "), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestApplyKVOverrides(t *testing.T) {
	cfg := Default()
	got := ApplyKVOverrides(cfg, []string{
		"theme=light",
		"mode=sync",
		"tab_width=4",
		"mouse=false",
		"split_ratio=2",
		"garbage",
	})
	if got.Theme != ThemeLight || got.Mode != ModeSync || got.TabWidth != 4 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Mouse {
		t.Fatalf("mouse override not applied")
	}
	if got.SplitRatio != 0.5 {
		t.Fatalf("out of range split_ratio should fall back, got %v", got.SplitRatio)
	}
}

func TestLogLevelOverride(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		" WARN ":  "warn",
		"warning": "warn",
		"verbose": "info",
		"":        "info",
	}
	for in, want := range cases {
		got := ApplyKVOverrides(Default(), []string{"log_level=" + in})
		if got.LogLevel != want {
			t.Fatalf("log_level=%q -> %q, want %q", in, got.LogLevel, want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Theme = ThemeLight
	if err := Save(path, cfg, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(path, cfg, false); !errors.Is(err, ErrExists) {
		t.Fatalf("second Save err = %v, want ErrExists", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Theme != ThemeLight {
		t.Fatalf("loaded.Theme = %q, want %q", loaded.Theme, ThemeLight)
	}
}
