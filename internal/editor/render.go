package editor

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const errorGlyph = "●"

// cell 是一行中一个已定位的显示单元。
type cell struct {
	text   string
	tt     chroma.TokenType
	cursor bool
}

// View 渲染 width×height 的编辑区，包括行号栏和错误标记。
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	hl := m.hl.linesFor(m.Value(), m.revision)
	rows := make([]string, 0, m.height)
	for i := 0; i < m.height; i++ {
		row := m.scroll + i
		if row >= len(m.lines) {
			rows = append(rows, m.renderFiller())
			continue
		}
		var spans []span
		if row < len(hl) {
			spans = hl[row]
		}
		rows = append(rows, m.renderGutter(row)+m.renderText(row, spans))
	}
	return strings.Join(rows, "\n")
}

// GutterWidth 返回行号栏占用的列数。
func (m *Model) GutterWidth() int {
	w := 2 // 错误标记和分隔空格
	if m.cfg.LineNumbers != LineNumbersOff {
		w += m.numberWidth()
	}
	return min(w, m.width)
}

func (m *Model) numberWidth() int {
	return max(2, len(fmt.Sprint(len(m.lines))))
}

func (m *Model) textWidth() int {
	return m.width - m.GutterWidth()
}

func (m *Model) renderGutter(row int) string {
	_, marked := m.decorationAt(row)
	bg := m.theme.Background
	base := lipgloss.NewStyle().Background(bg)

	glyph := base.Render(" ")
	if marked {
		glyph = base.Foreground(m.theme.ErrorGlyph).Render(errorGlyph)
	}
	if m.cfg.LineNumbers == LineNumbersOff {
		return truncateCells(glyph+base.Render(" "), m.GutterWidth())
	}

	n := row + 1
	if m.cfg.LineNumbers == LineNumbersRelative && row != m.row {
		n = row - m.row
		if n < 0 {
			n = -n
		}
	}
	color := m.theme.LineNumber
	if row == m.row {
		color = m.theme.LineNumberActive
	}
	num := fmt.Sprintf("%*d", m.numberWidth(), n)
	return truncateCells(glyph+base.Foreground(color).Render(num)+base.Render(" "), m.GutterWidth())
}

func (m *Model) renderFiller() string {
	return lipgloss.NewStyle().Background(m.theme.Background).Render(strings.Repeat(" ", m.width))
}

func (m *Model) renderText(row int, spans []span) string {
	tw := m.textWidth()
	if tw <= 0 {
		return ""
	}
	cells := m.layoutCells(row, spans, tw)

	bg := m.theme.Background
	if _, marked := m.decorationAt(row); marked {
		bg = m.theme.ErrorLine
	}

	var sb strings.Builder
	used := 0
	for i := 0; i < len(cells); {
		j := i
		var run strings.Builder
		for j < len(cells) && cells[j].tt == cells[i].tt && cells[j].cursor == cells[i].cursor {
			run.WriteString(cells[j].text)
			used += runewidth.StringWidth(cells[j].text)
			j++
		}
		st := m.theme.tokenStyle(cells[i].tt).Background(bg)
		if cells[i].cursor {
			st = st.Reverse(true)
		}
		sb.WriteString(st.Render(run.String()))
		i = j
	}
	if used < tw {
		sb.WriteString(lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", tw-used)))
	}
	return sb.String()
}

// layoutCells 展开制表符并按横向偏移裁剪，被裁到一半的宽字符用空格代替。
func (m *Model) layoutCells(row int, spans []span, tw int) []cell {
	showCursor := m.focused && row == m.row
	cx := m.displayCol(m.row, m.col)
	lo, hi := m.xoff, m.xoff+tw

	var cells []cell
	pos := 0
	for _, sp := range spans {
		for _, r := range sp.Text {
			w := runeCells(r, pos, m.cfg.TabWidth)
			text := string(r)
			if r == '\t' {
				text = strings.Repeat(" ", w)
			}
			cursor := showCursor && pos == cx
			switch {
			case pos >= lo && pos+w <= hi:
				cells = append(cells, cell{text: text, tt: sp.Type, cursor: cursor})
			case pos < hi && pos+w > lo:
				visible := min(pos+w, hi) - max(pos, lo)
				cells = append(cells, cell{text: strings.Repeat(" ", visible), tt: sp.Type, cursor: cursor})
			}
			pos += w
		}
	}
	if showCursor && cx >= pos && cx >= lo && cx < hi {
		cells = append(cells, cell{text: " ", tt: chroma.Text, cursor: true})
	}
	return cells
}

func truncateCells(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
