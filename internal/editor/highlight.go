package editor

import (
	"strings"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// span 是一行中同一种记号类型的一段文本。
type span struct {
	Text string
	Type chroma.TokenType
}

// highlighter 对整个缓冲区做词法分析并按行切分，结果按缓冲区版本缓存。
type highlighter struct {
	lexer    chroma.Lexer
	revision uint64
	valid    bool
	lines    [][]span
}

func newHighlighter(language string) *highlighter {
	lex := lexers.Get(language)
	if lex == nil {
		return &highlighter{}
	}
	return &highlighter{lexer: chroma.Coalesce(lex)}
}

func (h *highlighter) linesFor(text string, revision uint64) [][]span {
	if h.valid && h.revision == revision {
		return h.lines
	}
	h.lines = tokenizeLines(h.lexer, text)
	h.revision = revision
	h.valid = true
	return h.lines
}

func tokenizeLines(lex chroma.Lexer, text string) [][]span {
	if lex == nil {
		return plainLines(text)
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return plainLines(text)
	}
	tokens := classify(it.Tokens())

	lines := [][]span{nil}
	for _, tok := range tokens {
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part == "" {
				continue
			}
			last := len(lines) - 1
			lines[last] = append(lines[last], span{Text: part, Type: tok.Type})
		}
	}
	// 词法器可能补一个结尾换行，行数以缓冲区为准。
	want := strings.Count(text, "\n") + 1
	for len(lines) < want {
		lines = append(lines, nil)
	}
	return lines[:want]
}

func plainLines(text string) [][]span {
	raw := strings.Split(text, "\n")
	out := make([][]span, len(raw))
	for i, l := range raw {
		if l != "" {
			out[i] = []span{{Text: l, Type: chroma.Text}}
		}
	}
	return out
}

// classify 重新标注标识符：后面紧跟 "(" 的是函数调用，大写开头的是类型名。
func classify(tokens []chroma.Token) []chroma.Token {
	out := make([]chroma.Token, 0, len(tokens))
	for i, tok := range tokens {
		if tok.Type == chroma.EOFType {
			continue
		}
		if isIdentifier(tok.Type) {
			switch {
			case nextIsCall(tokens, i+1):
				tok.Type = chroma.NameFunction
			case startsUpper(tok.Value):
				tok.Type = chroma.NameClass
			}
		}
		out = append(out, tok)
	}
	return out
}

func isIdentifier(tt chroma.TokenType) bool {
	return tt == chroma.NameOther || tt == chroma.Name || tt == chroma.NameBuiltin
}

func nextIsCall(tokens []chroma.Token, from int) bool {
	for j := from; j < len(tokens); j++ {
		t := tokens[j]
		if t.Type.InCategory(chroma.Text) && strings.TrimSpace(t.Value) == "" {
			continue
		}
		return t.Type.InCategory(chroma.Punctuation) && strings.HasPrefix(t.Value, "(")
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
