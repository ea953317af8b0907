package format

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ditashi/jsbeautifier-go/jsbeautifier"
	"github.com/dop251/goja/parser"

	"js-runner/internal/logger"
)

const sourceName = "format.js"

// validatePrefix 独占一行，使顶层 await 能通过解析，错误行号减一即可还原。
const (
	validatePrefix = "(async () => {\n"
	validateSuffix = "\n})()"
)

// Error 描述格式化失败，缓冲区保持不变。Line 为 0 表示无法定位。
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (%d:%d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Options 配置格式化器。
type Options struct {
	IndentSize int
	Log        *logger.LogEntry
}

// Formatter 先校验语法，再按 js-beautify 规则重新排版。
type Formatter struct {
	indent int
	log    *logger.LogEntry
}

// New 创建格式化器，IndentSize 默认 2。
func New(opts Options) *Formatter {
	if opts.IndentSize <= 0 {
		opts.IndentSize = 2
	}
	if opts.Log == nil {
		opts.Log = logger.Named("format")
	}
	return &Formatter{indent: opts.IndentSize, log: opts.Log}
}

// Format 返回格式化后的源码。失败时返回 *Error，不会返回部分结果。
func (f *Formatter) Format(src string) (string, error) {
	if err := Validate(src); err != nil {
		return "", err
	}
	opts := jsbeautifier.DefaultOptions()
	opts["indent_size"] = f.indent
	opts["indent_char"] = " "

	code := src
	out, err := jsbeautifier.Beautify(&code, opts)
	if err != nil {
		f.log.WithError(err).Warn("beautify failed")
		return "", &Error{Message: err.Error()}
	}
	out = strings.TrimRight(out, "\n") + "\n"

	// 重排只允许改变空白，任何其他变化都视为失败。
	if compact(out) != compact(src) {
		f.log.WithField("size", len(src)).Warn("beautify changed non-whitespace content")
		return "", &Error{Message: "formatter changed more than whitespace"}
	}
	out = rejoin(src, out)
	if err := Validate(out); err != nil {
		f.log.WithError(err).Warn("beautify produced invalid source")
		return "", &Error{Message: "formatter produced invalid source"}
	}
	return out, nil
}

// Validate 用 goja 的解析器检查语法，允许顶层 await。
func Validate(src string) error {
	_, err := parser.ParseFile(nil, sourceName, validatePrefix+src+validateSuffix, 0)
	if err == nil {
		return nil
	}
	lines := strings.Count(src, "\n") + 1
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return positioned(list[0].Message, list[0].Position.Line-1, list[0].Position.Column, lines)
	}
	return &Error{Message: err.Error()}
}

func positioned(msg string, line, col, lines int) *Error {
	if line < 1 {
		line, col = 1, 1
	}
	if line > lines {
		line = lines
	}
	return &Error{Message: msg, Line: line, Column: col}
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
