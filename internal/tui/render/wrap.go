package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText 按显示宽度换行，保留行首缩进；能在空格处断行时优先在空格处断。
func wrapText(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	lines := []string{}
	for _, raw := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(raw, width)...)
	}
	return lines
}

func wrapLine(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := []string{}
	runes := []rune(line)
	for len(runes) > 0 {
		w, cut, lastSpace := 0, 0, -1
		for cut < len(runes) {
			rw := runewidth.RuneWidth(runes[cut])
			if w+rw > width {
				break
			}
			if runes[cut] == ' ' {
				lastSpace = cut
			}
			w += rw
			cut++
		}
		if cut == len(runes) {
			out = append(out, string(runes))
			break
		}
		if cut == 0 {
			cut = 1
		}
		next := cut
		switch {
		case runes[cut] == ' ':
			next = cut + 1
		case lastSpace > 0:
			cut, next = lastSpace, lastSpace+1
		}
		out = append(out, string(runes[:cut]))
		runes = runes[next:]
	}
	return out
}
