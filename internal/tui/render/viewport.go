package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ConsoleViewport 包装 bubbles viewport，按行 diff 更新内容，新增行时滚到底部。
type ConsoleViewport struct {
	viewport.Model
	lastLines []string
}

// NewConsoleViewport 创建控制台视口。
func NewConsoleViewport(width, height int) ConsoleViewport {
	vp := viewport.New(width, height)
	vp.MouseWheelDelta = 3
	return ConsoleViewport{Model: vp}
}

// Resize 更新宽高，高度变化后保持贴底。
func (v *ConsoleViewport) Resize(width, height int) {
	if v == nil || (v.Width == width && v.Height == height) {
		return
	}
	atBottom := v.AtBottom()
	v.Width = width
	v.Height = height
	if atBottom {
		v.GotoBottom()
	}
}

// HandleUpdate 代理 bubbles 的 Update，保持内部状态。
func (v *ConsoleViewport) HandleUpdate(msg tea.Msg) tea.Cmd {
	if v == nil {
		return nil
	}
	var cmd tea.Cmd
	v.Model, cmd = v.Model.Update(msg)
	return cmd
}

// SetLines 更新内容。行数增加或原本就在底部时滚到底部，返回内容是否变化。
func (v *ConsoleViewport) SetLines(lines []string) bool {
	if v == nil || slices.Equal(lines, v.lastLines) {
		return false
	}
	stick := v.AtBottom() || len(lines) > len(v.lastLines)
	v.lastLines = append([]string(nil), lines...)
	v.SetContent(strings.Join(lines, "\n"))
	if stick {
		v.GotoBottom()
	}
	return true
}

// Lines 返回最近一次设置的内容。
func (v *ConsoleViewport) Lines() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.lastLines...)
}

// ScrollPageDown 下翻一页。
func (v *ConsoleViewport) ScrollPageDown() {
	if v != nil {
		v.ViewDown()
	}
}

// ScrollPageUp 上翻一页。
func (v *ConsoleViewport) ScrollPageUp() {
	if v != nil {
		v.ViewUp()
	}
}

// ScrollLineDown 下滚 n 行。
func (v *ConsoleViewport) ScrollLineDown(n int) {
	if v != nil {
		v.LineDown(n)
	}
}

// ScrollLineUp 上滚 n 行。
func (v *ConsoleViewport) ScrollLineUp(n int) {
	if v != nil {
		v.LineUp(n)
	}
}

// Invalidate 清空已缓存的行，下一次 SetLines 一定会重设内容。
func (v *ConsoleViewport) Invalidate() {
	if v != nil {
		v.lastLines = nil
	}
}
