package editor

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

const (
	ThemeDarkModern = "dark-modern"
	ThemeLight      = "light"
)

// Theme 包含语法配色和界面配色，上层界面也从这里取色。
type Theme struct {
	Name   string
	Syntax *chroma.Style

	Background       lipgloss.Color
	Foreground       lipgloss.Color
	LineNumber       lipgloss.Color
	LineNumberActive lipgloss.Color
	Selection        lipgloss.Color
	ErrorLine        lipgloss.Color
	ErrorGlyph       lipgloss.Color

	Toolbar       lipgloss.Color
	ToolbarText   lipgloss.Color
	Button        lipgloss.Color
	ButtonText    lipgloss.Color
	Accent        lipgloss.Color
	Console       lipgloss.Color
	ConsoleText   lipgloss.Color
	ConsoleError  lipgloss.Color
	ConsoleStatus lipgloss.Color
	Divider       lipgloss.Color
	DividerActive lipgloss.Color
}

var darkModernSyntax = chroma.MustNewStyle(ThemeDarkModern, chroma.StyleEntries{
	chroma.Background:      "#d4d4d4 bg:#1e1e1e",
	chroma.Comment:         "#6A9955",
	chroma.Keyword:         "#C586C0",
	chroma.KeywordConstant: "#4FC1FF",
	chroma.LiteralNumber:   "#B5CEA8",
	chroma.LiteralString:   "#CE9178",
	chroma.NameClass:       "#4EC9B0",
	chroma.NameBuiltin:     "#4EC9B0",
	chroma.NameFunction:    "#FFBB00",
	chroma.Operator:        "#d4d4d4",
	chroma.Punctuation:     "#d4d4d4",
})

// DarkModern 是默认的深色主题。
func DarkModern() Theme {
	return Theme{
		Name:             ThemeDarkModern,
		Syntax:           darkModernSyntax,
		Background:       "#1e1e1e",
		Foreground:       "#d4d4d4",
		LineNumber:       "#858585",
		LineNumberActive: "#c6c6c6",
		Selection:        "#264F78",
		ErrorLine:        "#5a1d1d",
		ErrorGlyph:       "#f14c4c",

		Toolbar:       "#252526",
		ToolbarText:   "#cccccc",
		Button:        "#0e639c",
		ButtonText:    "#ffffff",
		Accent:        "#FFBB00",
		Console:       "#181818",
		ConsoleText:   "#d4d4d4",
		ConsoleError:  "#f48771",
		ConsoleStatus: "#4FC1FF",
		Divider:       "#3c3c3c",
		DividerActive: "#007acc",
	}
}

// Light 使用 Chroma 的 vs 配色。
func Light() Theme {
	syntax := styles.Get("vs")
	return Theme{
		Name:             ThemeLight,
		Syntax:           syntax,
		Background:       "#ffffff",
		Foreground:       "#000000",
		LineNumber:       "#237893",
		LineNumberActive: "#0b216f",
		Selection:        "#add6ff",
		ErrorLine:        "#ffd7d7",
		ErrorGlyph:       "#e51400",

		Toolbar:       "#f3f3f3",
		ToolbarText:   "#333333",
		Button:        "#007acc",
		ButtonText:    "#ffffff",
		Accent:        "#795e26",
		Console:       "#fafafa",
		ConsoleText:   "#1e1e1e",
		ConsoleError:  "#cd3131",
		ConsoleStatus: "#0070c1",
		Divider:       "#d4d4d4",
		DividerActive: "#007acc",
	}
}

// ThemeByName 按名字返回主题，vs-light 与 vs 视为 light，其余为 dark-modern。
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeLight, "vs-light", "vs":
		return Light()
	default:
		return DarkModern()
	}
}

// Toggle 在两套主题之间切换。
func (t Theme) Toggle() Theme {
	if t.Name == ThemeLight {
		return DarkModern()
	}
	return Light()
}

// tokenStyle 把 Chroma 样式条目转换成 lipgloss 样式，背景由调用方决定。
func (t Theme) tokenStyle(tt chroma.TokenType) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(t.Foreground)
	if t.Syntax == nil {
		return s
	}
	entry := t.Syntax.Get(tt)
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	return s
}
