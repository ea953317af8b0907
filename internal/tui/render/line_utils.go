package render

import "github.com/mattn/go-runewidth"

// PrefixLines 为首行/续行添加前缀，续行前缀默认是与首行前缀等宽的空格。
func PrefixLines(lines []Line, initial Span, subsequent *Span) []Line {
	cont := Span{Text: runewidth.FillRight("", runewidth.StringWidth(initial.Text)), Style: initial.Style}
	if subsequent != nil {
		cont = *subsequent
	}
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		spans := make([]Span, 0, len(l.Spans)+1)
		if i == 0 {
			spans = append(spans, initial)
		} else {
			spans = append(spans, cont)
		}
		spans = append(spans, l.Spans...)
		out = append(out, Line{Spans: spans, Style: l.Style})
	}
	return out
}

// TruncateLine 把行截断到 width 个显示单元。
func TruncateLine(line Line, width int) Line {
	if width <= 0 {
		return Line{Style: line.Style}
	}
	remaining := width
	out := Line{Style: line.Style}
	for _, sp := range line.Spans {
		if remaining <= 0 {
			break
		}
		tw := runewidth.StringWidth(sp.Text)
		if tw <= remaining {
			out.Spans = append(out.Spans, sp)
			remaining -= tw
			continue
		}
		if text := runewidth.Truncate(sp.Text, remaining, ""); text != "" {
			sp.Text = text
			out.Spans = append(out.Spans, sp)
		}
		remaining = 0
	}
	return out
}
