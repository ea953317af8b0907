package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrExists 表示目标配置文件已存在且未要求覆盖。
var ErrExists = errors.New("config file already exists")

// Save 将配置写入 path；overwrite 为 false 时拒绝覆盖已有文件。
func Save(path string, cfg Config, overwrite bool) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg.Normalize())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
