package editor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/mattn/go-runewidth"
)

func (m *Model) handleKey(msg tea.KeyMsg) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Left):
		m.moveLeft()
	case key.Matches(msg, k.Right):
		m.moveRight()
	case key.Matches(msg, k.Up):
		m.moveVertical(-1)
	case key.Matches(msg, k.Down):
		m.moveVertical(1)
	case key.Matches(msg, k.PageUp):
		m.moveVertical(-max(1, m.height-1))
	case key.Matches(msg, k.PageDown):
		m.moveVertical(max(1, m.height-1))
	case key.Matches(msg, k.DocStart):
		m.SetCursor(Position{})
	case key.Matches(msg, k.DocEnd):
		last := len(m.lines) - 1
		m.SetCursor(Position{Row: last, Col: len(m.lines[last])})
	case key.Matches(msg, k.Home):
		m.home()
	case key.Matches(msg, k.End):
		m.SetCursor(Position{Row: m.row, Col: len(m.lines[m.row])})
	case key.Matches(msg, k.Backspace):
		m.deleteBack()
	case key.Matches(msg, k.Delete):
		m.deleteForward()
	case key.Matches(msg, k.Enter):
		m.newline()
	case key.Matches(msg, k.Indent):
		m.indent()
	case key.Matches(msg, k.Outdent):
		m.outdent()
	case msg.Type == tea.KeySpace:
		m.InsertText(" ")
	case msg.Type == tea.KeyRunes && !msg.Alt:
		m.InsertText(string(msg.Runes))
	}
}

// InsertText 在光标处插入文本，换行会拆分行，\r 被丢弃。
func (m *Model) InsertText(text string) {
	if text == "" {
		return
	}
	for _, r := range text {
		switch r {
		case '\n':
			m.splitLine("")
		case '\r':
		case '\t':
			m.insertRunes([]rune(strings.Repeat(" ", m.cfg.TabWidth)))
		default:
			m.insertRunes([]rune{r})
		}
	}
	m.afterEdit()
}

func (m *Model) insertRunes(rs []rune) {
	line := m.lines[m.row]
	out := make([]rune, 0, len(line)+len(rs))
	out = append(out, line[:m.col]...)
	out = append(out, rs...)
	out = append(out, line[m.col:]...)
	m.lines[m.row] = out
	m.col += len(rs)
}

// splitLine 在光标处断行，新行以 indent 开头。
func (m *Model) splitLine(indent string) {
	line := m.lines[m.row]
	head := append([]rune(nil), line[:m.col]...)
	tail := append([]rune(indent), line[m.col:]...)
	lines := make([][]rune, 0, len(m.lines)+1)
	lines = append(lines, m.lines[:m.row]...)
	lines = append(lines, head, tail)
	lines = append(lines, m.lines[m.row+1:]...)
	m.lines = lines
	m.row++
	m.col = len([]rune(indent))
}

// newline 保留当前行缩进；光标前是开括号时多缩进一级，
// 光标后紧跟对应闭括号时把闭括号放到单独一行。
func (m *Model) newline() {
	line := m.lines[m.row]
	base := leadingSpace(line)
	before := strings.TrimRight(string(line[:m.col]), " \t")
	after := strings.TrimLeft(string(line[m.col:]), " \t")

	open := ""
	if before != "" {
		open = before[len(before)-1:]
	}
	closer := map[string]string{"{": "}", "[": "]", "(": ")"}[open]
	if closer == "" {
		m.splitLine(base)
		m.afterEdit()
		return
	}
	inner := base + strings.Repeat(" ", m.cfg.TabWidth)
	if strings.HasPrefix(after, closer) {
		m.lines[m.row] = []rune(string(line[:m.col]) + after)
		m.splitLine(base)
		m.row--
		m.col = len(m.lines[m.row])
		m.splitLine(inner)
		m.afterEdit()
		return
	}
	m.splitLine(inner)
	m.afterEdit()
}

func (m *Model) deleteBack() {
	switch {
	case m.col > 0:
		line := m.lines[m.row]
		n := 1
		// 光标前全是空格时退回到上一个制表位。
		if prefix := string(line[:m.col]); strings.TrimLeft(prefix, " ") == "" {
			n = (m.col-1)%m.cfg.TabWidth + 1
		}
		m.lines[m.row] = append(line[:m.col-n:m.col-n], line[m.col:]...)
		m.col -= n
	case m.row > 0:
		prev := m.lines[m.row-1]
		m.col = len(prev)
		m.lines[m.row-1] = append(append([]rune(nil), prev...), m.lines[m.row]...)
		m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
		m.row--
	default:
		return
	}
	m.afterEdit()
}

func (m *Model) deleteForward() {
	line := m.lines[m.row]
	switch {
	case m.col < len(line):
		m.lines[m.row] = append(line[:m.col:m.col], line[m.col+1:]...)
	case m.row < len(m.lines)-1:
		m.lines[m.row] = append(append([]rune(nil), line...), m.lines[m.row+1]...)
		m.lines = append(m.lines[:m.row+1], m.lines[m.row+2:]...)
	default:
		return
	}
	m.afterEdit()
}

func (m *Model) indent() {
	tw := m.cfg.TabWidth
	n := tw - m.displayCol(m.row, m.col)%tw
	m.insertRunes([]rune(strings.Repeat(" ", n)))
	m.afterEdit()
}

func (m *Model) outdent() {
	line := m.lines[m.row]
	n := 0
	for n < len(line) && n < m.cfg.TabWidth && line[n] == ' ' {
		n++
	}
	if n == 0 {
		return
	}
	m.lines[m.row] = append([]rune(nil), line[n:]...)
	m.col = max(0, m.col-n)
	m.afterEdit()
}

// home 在行首与首个非空白字符之间切换。
func (m *Model) home() {
	first := len(leadingSpace(m.lines[m.row]))
	col := first
	if m.col == first {
		col = 0
	}
	m.SetCursor(Position{Row: m.row, Col: col})
}

func (m *Model) moveLeft() {
	switch {
	case m.col > 0:
		m.col--
	case m.row > 0:
		m.row--
		m.col = len(m.lines[m.row])
	}
	m.goal = m.displayCol(m.row, m.col)
	m.ensureVisible()
}

func (m *Model) moveRight() {
	switch {
	case m.col < len(m.lines[m.row]):
		m.col++
	case m.row < len(m.lines)-1:
		m.row++
		m.col = 0
	}
	m.goal = m.displayCol(m.row, m.col)
	m.ensureVisible()
}

func (m *Model) moveVertical(delta int) {
	m.row = clamp(m.row+delta, 0, len(m.lines)-1)
	m.col = m.colForDisplay(m.row, m.goal)
	m.ensureVisible()
}

func (m *Model) afterEdit() {
	m.clampCursor()
	m.goal = m.displayCol(m.row, m.col)
	m.changed()
	m.ensureVisible()
}

// ensureVisible 调整纵向与横向滚动，使光标落在可视区域内。
func (m *Model) ensureVisible() {
	m.clampCursor()
	if m.height > 0 {
		if m.row < m.scroll {
			m.scroll = m.row
		}
		if m.row >= m.scroll+m.height {
			m.scroll = m.row - m.height + 1
		}
	}
	m.clampScroll()
	tw := m.textWidth()
	if tw <= 0 {
		return
	}
	cx := m.displayCol(m.row, m.col)
	if cx < m.xoff {
		m.xoff = cx
	}
	if cx >= m.xoff+tw {
		m.xoff = cx - tw + 1
	}
}

func (m *Model) clampScroll() {
	maxScroll := max(0, len(m.lines)-max(1, m.height))
	m.scroll = clamp(m.scroll, 0, maxScroll)
}

// displayCol 返回 rune 列在屏幕上的显示列。
func (m *Model) displayCol(row, col int) int {
	if row < 0 || row >= len(m.lines) {
		return 0
	}
	line := m.lines[row]
	w := 0
	for i := 0; i < col && i < len(line); i++ {
		w += runeCells(line[i], w, m.cfg.TabWidth)
	}
	return w
}

// colForDisplay 是 displayCol 的逆运算，落在宽字符中间时取其起点。
func (m *Model) colForDisplay(row, target int) int {
	if row < 0 || row >= len(m.lines) {
		return 0
	}
	line := m.lines[row]
	w := 0
	for i, r := range line {
		cw := runeCells(r, w, m.cfg.TabWidth)
		if w+cw > target {
			return i
		}
		w += cw
	}
	return len(line)
}

func runeCells(r rune, at, tabWidth int) int {
	if r == '\t' {
		return tabWidth - at%tabWidth
	}
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}

func leadingSpace(line []rune) string {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return string(line[:n])
}
