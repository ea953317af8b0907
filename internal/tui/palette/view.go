package palette

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Styles 是面板的配色，由调用方按主题提供。
type Styles struct {
	Box       lipgloss.Style
	Title     lipgloss.Style
	Keys      lipgloss.Style
	Desc      lipgloss.Style
	Highlight lipgloss.Style
	Selected  lipgloss.Style
	Disabled  lipgloss.Style
}

// View 渲染带边框的面板。
func (s *State) View(width int, st Styles) string {
	if s == nil || !s.open {
		return ""
	}
	contentWidth := max(width-4, 24)
	s.input.Width = contentWidth - runewidth.StringWidth(s.input.Prompt) - 1

	lines := []string{s.input.View(), ""}
	if len(s.matches) == 0 {
		lines = append(lines, st.Desc.Render("no matches"))
	}
	start, end := window(len(s.matches), s.maxLines, s.selected)
	for idx := start; idx < end; idx++ {
		lines = append(lines, s.renderRow(s.matches[idx], idx == s.selected, contentWidth, st))
	}
	return st.Box.Width(contentWidth).Render(strings.Join(lines, "\n"))
}

func (s *State) renderRow(m match, selected bool, width int, st Styles) string {
	title := applyHighlights(m.item.Token(), m.highlights, st.Title, st.Highlight)
	if m.item.Disabled {
		title = st.Disabled.Render(m.item.Token())
	}
	titleWidth := 20
	row := lipgloss.NewStyle().Width(titleWidth).Render(title)
	keysWidth := 8
	row += lipgloss.NewStyle().Width(keysWidth).Render(st.Keys.Render(m.item.Keys))
	if descWidth := width - titleWidth - keysWidth - 1; descWidth > 0 {
		row += " " + st.Desc.Render(runewidth.Truncate(m.item.Description, descWidth, "…"))
	}
	if selected {
		return st.Selected.Width(width).Render(row)
	}
	return row
}

// window 返回包含选中项的可见区间。
func window(total, maxLines, selected int) (int, int) {
	if maxLines <= 0 || total <= maxLines {
		return 0, total
	}
	start := 0
	if selected >= maxLines {
		start = selected - maxLines + 1
	}
	return start, start + maxLines
}

func applyHighlights(name string, indexes []int, base, hl lipgloss.Style) string {
	if len(indexes) == 0 {
		return base.Render(name)
	}
	marked := map[int]bool{}
	for _, idx := range indexes {
		marked[idx] = true
	}
	var sb strings.Builder
	for i, r := range []rune(name) {
		if marked[i] {
			sb.WriteString(hl.Render(string(r)))
			continue
		}
		sb.WriteString(base.Render(string(r)))
	}
	return sb.String()
}
