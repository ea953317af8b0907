package render

import (
	"js-runner/internal/console"

	"github.com/charmbracelet/lipgloss"
)

const (
	glyphError  = "❌ "
	glyphStatus = "🕒 "
)

// ConsoleStyles 是控制台条目的样式。
type ConsoleStyles struct {
	Log    lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
}

// ConsoleLines 把控制台条目渲染成视口行。每个物理行占一行，超宽时按宽度折行；
// 错误条目以 ❌ 开头，状态条目以 🕒 开头并在末尾附上 spinner 帧。
func ConsoleLines(entries []console.Entry, styles ConsoleStyles, width int, spinnerFrame string) []string {
	out := []Line{}
	for _, e := range entries {
		out = append(out, entryLines(e, styles, width, spinnerFrame)...)
	}
	return LinesToStrings(out)
}

func entryLines(e console.Entry, styles ConsoleStyles, width int, spinnerFrame string) []Line {
	style := styles.Log
	prefix := ""
	switch e.Kind {
	case console.KindError:
		style, prefix = styles.Error, glyphError
	case console.KindStatus:
		style, prefix = styles.Status, glyphStatus
	}
	prefixWidth := Line{Spans: []Span{{Text: prefix}}}.Width()

	var lines []Line
	for _, text := range wrapText(e.Text, width-prefixWidth) {
		lines = append(lines, Line{Spans: []Span{{Text: text, Style: style}}})
	}
	if e.Kind == console.KindStatus && spinnerFrame != "" {
		last := &lines[len(lines)-1]
		last.Spans = append(last.Spans, Span{Text: " " + spinnerFrame, Style: style})
	}
	if prefix != "" {
		lines = PrefixLines(lines, Span{Text: prefix, Style: style}, nil)
	}
	if width > 0 {
		for i := range lines {
			lines[i] = TruncateLine(lines[i], width)
		}
	}
	return lines
}
