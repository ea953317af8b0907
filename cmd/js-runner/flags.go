package main

import (
	"flag"
	"strings"

	"js-runner/internal/config"
)

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// commonArgs 是根命令与所有子命令共享的配置参数。
type commonArgs struct {
	cfgPath   string
	overrides stringSlice
	theme     string
	mode      string
}

func (c *commonArgs) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.cfgPath, "config", c.cfgPath, "Path to config file (default ~/.js-runner/config.toml)")
	fs.Var(&c.overrides, "c", "Override config value key=value (repeatable)")
	fs.StringVar(&c.theme, "theme", c.theme, "Editor theme: dark-modern or light")
	fs.StringVar(&c.mode, "mode", c.mode, "Execution mode: async or sync")
}

// clone 复制参数，子命令追加的 -c 不会影响根命令的切片。
func (c commonArgs) clone() commonArgs {
	c.overrides = append(stringSlice{}, c.overrides...)
	return c
}

// loadConfig 依次应用配置文件、环境变量、-c 覆盖和显式参数。
func loadConfig(c commonArgs) (config.Config, error) {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyKVOverrides(cfg, []string(c.overrides))
	if v := strings.TrimSpace(c.theme); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(c.mode); v != "" {
		cfg.Mode = v
	}
	return cfg.Normalize(), nil
}
