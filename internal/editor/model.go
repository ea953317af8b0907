package editor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Position 是缓冲区中的位置，Row 与 Col 都从 0 开始，Col 以 rune 计。
type Position struct {
	Row int
	Col int
}

// Model 是编辑器组件。
type Model struct {
	cfg      Config
	theme    Theme
	keys     KeyMap
	commands []command

	lines [][]rune
	row   int
	col   int
	// goal 是上下移动时希望保持的显示列。
	goal int

	scroll int
	xoff   int
	width  int
	height int

	focused     bool
	decorations []Decoration

	revision uint64
	hl       *highlighter
}

// New 按配置创建编辑器。
func New(cfg Config) *Model {
	cfg = cfg.withDefaults()
	m := &Model{
		cfg:     cfg,
		theme:   ThemeByName(cfg.Theme),
		keys:    DefaultKeyMap(),
		hl:      newHighlighter(cfg.Language),
		focused: true,
	}
	m.SetValue(cfg.InitialText)
	m.SetSize(cfg.Width, cfg.Height)
	return m
}

// Config 返回当前配置记录，Theme、Width、Height 反映最新状态。
func (m *Model) Config() Config {
	cfg := m.cfg
	cfg.Theme = m.theme.Name
	cfg.Width = m.width
	cfg.Height = m.height
	return cfg
}

func (m *Model) Init() tea.Cmd { return nil }

// SetSize 设置组件占用的单元格尺寸。
func (m *Model) SetSize(width, height int) {
	m.width = max(0, width)
	m.height = max(0, height)
	m.ensureVisible()
}

func (m *Model) Width() int  { return m.width }
func (m *Model) Height() int { return m.height }

func (m *Model) Focus()        { m.focused = true }
func (m *Model) Blur()         { m.focused = false }
func (m *Model) Focused() bool { return m.focused }

// Theme 返回当前主题。
func (m *Model) Theme() Theme { return m.theme }

// SetTheme 按名字切换主题。
func (m *Model) SetTheme(name string) {
	m.theme = ThemeByName(name)
}

// ToggleTheme 在深浅主题之间切换并返回新主题。
func (m *Model) ToggleTheme() Theme {
	m.theme = m.theme.Toggle()
	return m.theme
}

// SetLineNumbers 设置行号模式。
func (m *Model) SetLineNumbers(mode LineNumbers) {
	m.cfg.LineNumbers = mode
}

// Value 返回缓冲区文本。
func (m *Model) Value() string {
	var sb strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// SetValue 替换缓冲区，光标回到开头，装饰被清除。
func (m *Model) SetValue(s string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	raw := strings.Split(s, "\n")
	m.lines = make([][]rune, len(raw))
	for i, l := range raw {
		m.lines[i] = []rune(l)
	}
	m.row, m.col, m.goal = 0, 0, 0
	m.scroll, m.xoff = 0, 0
	m.decorations = nil
	m.changed()
}

// LineCount 返回行数。
func (m *Model) LineCount() int { return len(m.lines) }

// Line 返回第 row 行（从 0 开始）的文本。
func (m *Model) Line(row int) string {
	if row < 0 || row >= len(m.lines) {
		return ""
	}
	return string(m.lines[row])
}

// Cursor 返回光标位置。
func (m *Model) Cursor() Position { return Position{Row: m.row, Col: m.col} }

// SetCursor 移动光标并保证其可见，越界位置会被夹紧。
func (m *Model) SetCursor(p Position) {
	m.row, m.col = p.Row, p.Col
	m.clampCursor()
	m.goal = m.displayCol(m.row, m.col)
	m.ensureVisible()
}

// Revision 在每次缓冲区内容变化后递增。
func (m *Model) Revision() uint64 { return m.revision }

// ScrollOffset 返回首个可见行。
func (m *Model) ScrollOffset() int { return m.scroll }

// Update 处理按键和鼠标消息。鼠标坐标需要是相对组件左上角的坐标。
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, ok := m.matchCommand(msg); ok {
			return cmd
		}
		if !m.focused {
			return nil
		}
		m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return nil
}

func (m *Model) changed() {
	m.revision++
	m.pruneDecorations()
}

func (m *Model) pruneDecorations() {
	if len(m.decorations) == 0 {
		return
	}
	kept := m.decorations[:0]
	for _, d := range m.decorations {
		if d.Line <= len(m.lines) {
			kept = append(kept, d)
		}
	}
	m.decorations = kept
}

func (m *Model) clampCursor() {
	if len(m.lines) == 0 {
		m.lines = [][]rune{{}}
	}
	m.row = clamp(m.row, 0, len(m.lines)-1)
	m.col = clamp(m.col, 0, len(m.lines[m.row]))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
