package editor

import tea "github.com/charmbracelet/bubbletea"

const wheelLines = 3

// handleMouse 处理相对于组件左上角的鼠标消息：左键定位光标，滚轮滚动。
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.X < 0 || msg.Y < 0 || msg.X >= m.width || msg.Y >= m.height {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ScrollBy(-wheelLines)
	case tea.MouseButtonWheelDown:
		m.ScrollBy(wheelLines)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
			return
		}
		m.focused = true
		row := clamp(m.scroll+msg.Y, 0, len(m.lines)-1)
		col := 0
		if gw := m.GutterWidth(); msg.X >= gw {
			col = m.colForDisplay(row, m.xoff+msg.X-gw)
		}
		m.SetCursor(Position{Row: row, Col: col})
	}
}

// ScrollBy 纵向滚动 delta 行，不移动光标。
func (m *Model) ScrollBy(delta int) {
	m.scroll += delta
	m.clampScroll()
}
