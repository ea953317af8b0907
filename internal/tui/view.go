package tui

import (
	"fmt"
	"strings"

	"js-runner/internal/console"
	"js-runner/internal/editor"
	"js-runner/internal/layout"
	"js-runner/internal/tui/palette"
	"js-runner/internal/tui/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// toolbarButton 是工具栏上一个可点击按钮，[x0, x1) 是它占用的列。
type toolbarButton struct {
	label string
	cmd   palette.Command
	x0    int
	x1    int
}

type buttonSpec struct {
	label string
	cmd   palette.Command
}

func (m *Model) toolbarButtons() []toolbarButton {
	specs := []buttonSpec{{"▶ Run", palette.CommandRun}}
	if m.state.Pending() {
		specs = append(specs, buttonSpec{"■ Stop", palette.CommandStop})
	}
	specs = append(specs,
		buttonSpec{"Format", palette.CommandFormat},
		buttonSpec{"Theme", palette.CommandTheme},
		buttonSpec{"Reset", palette.CommandReset},
		buttonSpec{"Clear", palette.CommandClear},
		buttonSpec{"Fullscreen", palette.CommandFullscreen},
	)

	x := ansi.StringWidth(appTitle) + 3
	out := make([]toolbarButton, 0, len(specs))
	for _, s := range specs {
		w := ansi.StringWidth(s.label) + 2
		out = append(out, toolbarButton{label: s.label, cmd: s.cmd, x0: x, x1: x + w})
		x += w + 1
	}
	return out
}

func (m *Model) toolbarHit(x int) (palette.Command, bool) {
	for _, b := range m.toolbarButtons() {
		if x >= b.x0 && x < b.x1 {
			return b.cmd, true
		}
	}
	return "", false
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	th := m.editor.Theme()
	bodyHeight := max(0, m.height-toolbarHeight-statusHeight)

	body := m.renderBody(th)
	if m.palette.IsOpen() {
		box := m.palette.View(min(m.width-4, 72), paletteStyles(th))
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Top, box,
			lipgloss.WithWhitespaceBackground(th.Background))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderToolbar(th), body, m.renderStatus(th))
}

func (m *Model) renderToolbar(th editor.Theme) string {
	bar := lipgloss.NewStyle().Background(th.Toolbar).Foreground(th.ToolbarText)
	title := bar.Bold(true).Render(" " + appTitle + " ")
	parts := []string{title, bar.Render(" ")}
	btn := lipgloss.NewStyle().Background(th.Button).Foreground(th.ButtonText).Padding(0, 1)
	for i, b := range m.toolbarButtons() {
		if i > 0 {
			parts = append(parts, bar.Render(" "))
		}
		parts = append(parts, btn.Render(b.label))
	}
	line := strings.Join(parts, "")
	if pad := m.width - ansi.StringWidth(line); pad > 0 {
		line += bar.Render(strings.Repeat(" ", pad))
	}
	return ansi.Truncate(line, m.width, "")
}

func (m *Model) renderBody(th editor.Theme) string {
	p := m.layout.Panes()
	dividerColor := th.Divider
	if m.layout.State() == layout.Resizing {
		dividerColor = th.DividerActive
	}
	divider := lipgloss.NewStyle().Foreground(dividerColor).Background(th.Background)
	consolePane := m.renderConsole(th, p.Console)

	if p.Orientation == layout.Horizontal {
		bar := strings.TrimSuffix(strings.Repeat("│\n", p.Divider.H), "\n")
		return lipgloss.JoinHorizontal(lipgloss.Top, m.editor.View(), divider.Render(bar), consolePane)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.editor.View(), divider.Render(strings.Repeat("─", p.Divider.W)), consolePane)
}

func (m *Model) renderConsole(th editor.Theme, r layout.Rect) string {
	if r.Empty() {
		return ""
	}
	panel := m.state.Console
	header := "Console"
	if n := panel.Count(console.KindError); n > 0 {
		header = fmt.Sprintf("Console · %d error(s)", n)
	}
	head := lipgloss.NewStyle().
		Background(th.Toolbar).Foreground(th.ToolbarText).Bold(true).
		Width(r.W).MaxWidth(r.W).
		Render(" " + header)
	if r.H <= consoleHeaderHeight {
		return head
	}
	content := lipgloss.NewStyle().
		Background(th.Console).Foreground(th.ConsoleText).
		Width(r.W).Height(r.H - consoleHeaderHeight).
		MaxWidth(r.W).MaxHeight(r.H - consoleHeaderHeight).
		Render(m.console.View())
	return lipgloss.JoinVertical(lipgloss.Left, head, content)
}

func (m *Model) renderStatus(th editor.Theme) string {
	bar := lipgloss.NewStyle().Background(th.Toolbar).Foreground(th.ToolbarText)

	var left string
	switch {
	case m.indicator.State() != RunIdle:
		left = m.indicator.Line(m.width/2, m.spin.View()).Render()
	case m.notice != "":
		left = m.notice
	default:
		hints := make([]string, 0, len(m.keys.hints()))
		for _, b := range m.keys.hints() {
			h := b.Help()
			hints = append(hints, h.Key+" "+h.Desc)
		}
		left = strings.Join(hints, " • ")
	}

	cur := m.editor.Cursor()
	right := fmt.Sprintf("%s · %s · Ln %d, Col %d ", m.mode, th.Name, cur.Row+1, cur.Col+1)
	left = ansi.Truncate(" "+left, max(0, m.width-ansi.StringWidth(right)-1), "…")
	gap := max(0, m.width-ansi.StringWidth(left)-ansi.StringWidth(right))
	return bar.Render(left + strings.Repeat(" ", gap) + right)
}

func consoleStyles(th editor.Theme) render.ConsoleStyles {
	base := lipgloss.NewStyle().Background(th.Console)
	return render.ConsoleStyles{
		Log:    base.Foreground(th.ConsoleText),
		Error:  base.Foreground(th.ConsoleError),
		Status: base.Foreground(th.ConsoleStatus),
	}
}

func paletteStyles(th editor.Theme) palette.Styles {
	return palette.Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Accent).
			Background(th.Background).
			Foreground(th.Foreground).
			Padding(0, 1),
		Title:     lipgloss.NewStyle().Foreground(th.Foreground),
		Keys:      lipgloss.NewStyle().Foreground(th.LineNumber),
		Desc:      lipgloss.NewStyle().Foreground(th.LineNumber),
		Highlight: lipgloss.NewStyle().Foreground(th.Accent).Bold(true),
		Selected:  lipgloss.NewStyle().Background(th.Selection),
		Disabled:  lipgloss.NewStyle().Foreground(th.LineNumber).Faint(true),
	}
}
