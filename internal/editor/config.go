package editor

import "strings"

// LineNumbers 控制行号栏的显示方式。
type LineNumbers string

const (
	LineNumbersOn       LineNumbers = "on"
	LineNumbersOff      LineNumbers = "off"
	LineNumbersRelative LineNumbers = "relative"
)

// ParseLineNumbers 把配置字符串转成 LineNumbers，未知值视为 on。
func ParseLineNumbers(s string) LineNumbers {
	switch LineNumbers(strings.ToLower(strings.TrimSpace(s))) {
	case LineNumbersOff:
		return LineNumbersOff
	case LineNumbersRelative:
		return LineNumbersRelative
	default:
		return LineNumbersOn
	}
}

// Config 是编辑器的初始化记录。
type Config struct {
	InitialText string
	Language    string
	Theme       string
	TabWidth    int
	LineNumbers LineNumbers
	// Minimap 在终端中不渲染，只作为配置记录保留。
	Minimap bool
	Width   int
	Height  int
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = "javascript"
	}
	if c.TabWidth <= 0 {
		c.TabWidth = 2
	}
	if c.LineNumbers == "" {
		c.LineNumbers = LineNumbersOn
	}
	return c
}
