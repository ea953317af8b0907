package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "theme":
			cfg.Theme = val
		case "mode":
			cfg.Mode = val
		case "line_numbers":
			cfg.LineNumbers = val
		case "log_path":
			cfg.LogPath = val
		case "log_level":
			cfg.LogLevel = val
		case "tab_width":
			setInt(&cfg.TabWidth, val)
		case "indent_size":
			setInt(&cfg.IndentSize, val)
		case "min_pane_width":
			setInt(&cfg.MinPaneWidth, val)
		case "min_pane_height":
			setInt(&cfg.MinPaneHeight, val)
		case "narrow_width":
			setInt(&cfg.NarrowWidth, val)
		case "split_ratio":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.SplitRatio = f
			}
		case "minimap":
			setBool(&cfg.Minimap, val)
		case "alt_screen":
			setBool(&cfg.AltScreen, val)
		case "mouse":
			setBool(&cfg.Mouse, val)
		}
	}
	return cfg.Normalize()
}

func setInt(dst *int, val string) {
	if n, err := strconv.Atoi(val); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, val string) {
	if b, err := strconv.ParseBool(val); err == nil {
		*dst = b
	}
}
