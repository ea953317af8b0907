package format

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// span 是源码中不可拆分的一段，[start, end) 为字节偏移。
type span struct {
	start, end int
	joinBefore bool // 与前一个字符之间的空白保持原样
	joinAfter  bool // 与后一个字符之间的空白保持原样
	comment    bool // 行注释，后面必须换行
}

// punctuators 按长度降序匹配。
var punctuators = []string{"??=", "**=", "||=", "&&=", "...", "?.", "??", "**", "=>"}

// regexPrecede 中的字符之后出现的 / 按正则字面量处理。
const regexPrecede = "(,=:[!&|?{};+-*%<>~^"

// tokenSpans 扫描 src，标出 beautifier 可能拆开的词法单元：
// 字符串、模板字符串、正则、私有字段以及较新的多字符运算符。
// 误判只会让一段输出保留源码的空白，不影响正确性。
func tokenSpans(src string) []span {
	var spans []span
	last := byte(0)
	add := func(s span) {
		spans = append(spans, s)
		last = src[s.end-1]
	}
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '/' && strings.HasPrefix(src[i:], "//"):
			end := lineEnd(src, i)
			spans = append(spans, span{start: i, end: end, comment: true})
			i = end
			continue
		case c == '/' && strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return spans
			}
			i += end + 4
			continue
		case c == '"' || c == '\'':
			end := skipQuoted(src, i)
			add(span{start: i, end: end})
			i = end
			continue
		case c == '`':
			end := skipTemplate(src, i)
			add(span{start: i, end: end})
			i = end
			continue
		case c == '/' && (last == 0 || strings.IndexByte(regexPrecede, last) >= 0):
			end := skipRegex(src, i)
			add(span{start: i, end: end})
			i = end
			continue
		case c == '.' && i+2 < len(src) && src[i+1] == '#' && isIdentPart(src[i+2]):
			end := skipIdent(src, i+2)
			add(span{start: i, end: end})
			i = end
			continue
		case c == '#' && i+1 < len(src) && isIdentPart(src[i+1]):
			end := skipIdent(src, i+1)
			add(span{start: i, end: end})
			i = end
			continue
		}
		if p := punctuatorAt(src, i); p != "" {
			s := span{start: i, end: i + len(p)}
			switch p {
			case "?.":
				s.joinBefore, s.joinAfter = true, true
			case "...":
				s.joinAfter = true
			}
			add(s)
			i = s.end
			continue
		}
		if isIdentPart(c) {
			end := skipIdent(src, i)
			last = src[end-1]
			i = end
			continue
		}
		if c > ' ' {
			last = c
		}
		i++
	}
	return spans
}

func punctuatorAt(src string, i int) string {
	for _, p := range punctuators {
		if !strings.HasPrefix(src[i:], p) {
			continue
		}
		// a?.5:1 是条件表达式
		if p == "?." && i+2 < len(src) && src[i+2] >= '0' && src[i+2] <= '9' {
			continue
		}
		return p
	}
	return ""
}

func skipQuoted(src string, i int) int {
	q := src[i]
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case q:
			return j + 1
		case '\n':
			return j
		}
		j++
	}
	return len(src)
}

func skipTemplate(src string, i int) int {
	j := i + 1
	for j < len(src) {
		switch {
		case src[j] == '\\':
			j += 2
			continue
		case src[j] == '`':
			return j + 1
		case strings.HasPrefix(src[j:], "${"):
			j = skipBraces(src, j+2)
			continue
		}
		j++
	}
	return len(src)
}

// skipBraces 从 ${ 之后开始，返回匹配的 } 之后的位置。
func skipBraces(src string, j int) int {
	depth := 1
	for j < len(src) {
		switch c := src[j]; c {
		case '"', '\'':
			j = skipQuoted(src, j)
			continue
		case '`':
			j = skipTemplate(src, j)
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(src)
}

func skipRegex(src string, i int) int {
	inClass := false
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case '\n':
			return j
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return skipIdent(src, j+1)
			}
		}
		j++
	}
	return len(src)
}

func skipIdent(src string, i int) int {
	for i < len(src) && isIdentPart(src[i]) {
		i++
	}
	return i
}

func lineEnd(src string, i int) int {
	if n := strings.IndexByte(src[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(src)
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// rejoin 把 out 中被拆开的词法单元恢复成 src 的写法，只替换空白。
// 要求 compact(src) == compact(out)。
func rejoin(src, out string) string {
	spans := tokenSpans(src)
	if len(spans) == 0 {
		return out
	}
	srcPos, outPos := runeOffsets(src), runeOffsets(out)
	if len(srcPos) != len(outPos) {
		return out
	}

	var b strings.Builder
	b.Grow(len(out))
	written := 0
	for k := 1; k < len(srcPos); k++ {
		srcGap := gapAfter(src, srcPos[k-1], srcPos[k])
		outStart := gapStart(out, outPos[k-1])
		outGap := out[outStart:outPos[k]]
		if srcGap == outGap {
			continue
		}
		if !keepSource(spanAt(spans, srcPos[k-1]), spanAt(spans, srcPos[k]), outGap) {
			continue
		}
		b.WriteString(out[written:outStart])
		b.WriteString(srcGap)
		written = outPos[k]
	}
	b.WriteString(out[written:])
	return b.String()
}

func keepSource(prev, next *span, outGap string) bool {
	switch {
	case prev != nil && prev == next:
		return true
	case prev != nil && prev.joinAfter, next != nil && next.joinBefore:
		return true
	case prev != nil && prev.comment && !strings.Contains(outGap, "\n"):
		return true
	}
	return false
}

func spanAt(spans []span, off int) *span {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].end > off })
	if i < len(spans) && spans[i].start <= off {
		return &spans[i]
	}
	return nil
}

func gapStart(s string, off int) int {
	_, size := utf8.DecodeRuneInString(s[off:])
	return off + size
}

func gapAfter(s string, from, to int) string {
	return s[gapStart(s, from):to]
}

// runeOffsets 返回每个非空白字符的字节偏移，与 compact 的判定一致。
func runeOffsets(s string) []int {
	var offs []int
	for i, r := range s {
		if !unicode.IsSpace(r) {
			offs = append(offs, i)
		}
	}
	return offs
}
