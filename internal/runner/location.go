package runner

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// asyncPrefix 与缓冲区第一行位于同一行，因此行号不需要偏移，只需修正第一行的列号。
const (
	asyncPrefix = "(async () => { "
	asyncSuffix = "\n})()"
)

var stackPattern = regexp.MustCompile(regexp.QuoteMeta(ScriptName) + `:(\d+):(\d+)`)

func wrap(src string, mode Mode) string {
	if mode == ModeSync {
		return src
	}
	return asyncPrefix + src + asyncSuffix
}

// locator 把包装后源码中的位置换算回缓冲区的 1 起始行列。
type locator struct {
	mode  Mode
	lines int
}

func newLocator(src string, mode Mode) locator {
	return locator{mode: mode, lines: strings.Count(src, "\n") + 1}
}

// compile 先用解析器拿到带位置的语法错误，再编译为 Program。
func compile(src string, mode Mode) (*goja.Program, *ScriptError) {
	loc := newLocator(src, mode)
	ast, err := parser.ParseFile(nil, ScriptName, wrap(src, mode), 0)
	if err != nil {
		return nil, loc.syntax(err)
	}
	prg, err := goja.CompileAST(ast, false)
	if err != nil {
		return nil, loc.syntax(err)
	}
	return prg, nil
}

func (l locator) syntax(err error) *ScriptError {
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return l.positioned(list[0].Message, list[0].Position)
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		return l.positioned(perr.Message, perr.Position)
	}
	var cerr *goja.CompilerSyntaxError
	if errors.As(err, &cerr) {
		return l.compilerError(cerr.CompilerError)
	}
	var rerr *goja.CompilerReferenceError
	if errors.As(err, &rerr) {
		return l.compilerError(rerr.CompilerError)
	}
	return &ScriptError{Message: err.Error()}
}

func (l locator) compilerError(ce goja.CompilerError) *ScriptError {
	if ce.File == nil {
		return &ScriptError{Message: ce.Message}
	}
	return l.positioned(ce.Message, ce.File.Position(ce.Offset))
}

func (l locator) positioned(msg string, pos file.Position) *ScriptError {
	se := &ScriptError{Message: msg}
	se.Line, se.Column = l.position(pos.Line, pos.Column)
	return se
}

func (l locator) position(line, col int) (int, int) {
	if line <= 0 {
		return 0, 0
	}
	if l.mode == ModeAsync && line == 1 {
		col -= len(asyncPrefix)
	}
	if col < 1 {
		col = 1
	}
	// 后缀在缓冲区末尾另起一行，落在那里的错误归到最后一行。
	if l.lines > 0 && line > l.lines {
		line = l.lines
	}
	return line, col
}

// stackOverflowMessage 与浏览器的 RangeError 文案一致。
const stackOverflowMessage = "Maximum call stack size exceeded"

// fromError 优先使用异常自带的调用栈帧定位，找不到时才匹配 stack 文本。
// 栈溢出不可捕获，也没有异常值，只能从调用栈取位置。
func (l locator) fromError(err error) *ScriptError {
	var so *goja.StackOverflowError
	if errors.As(err, &so) {
		se := &ScriptError{Message: stackOverflowMessage}
		l.locate(se, so.Stack())
		return se
	}
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return &ScriptError{Message: err.Error()}
	}
	se := &ScriptError{Message: messageOf(ex.Value())}
	if l.locate(se, ex.Stack()) {
		return se
	}
	if line, col, ok := matchStack(ex.Value()); ok {
		se.Line, se.Column = l.position(line, col)
	}
	return se
}

// locate 取第一个属于缓冲区的栈帧。
func (l locator) locate(se *ScriptError, stack []goja.StackFrame) bool {
	for _, frame := range stack {
		if frame.SrcName() != ScriptName {
			continue
		}
		if pos := frame.Position(); pos.Line > 0 {
			se.Line, se.Column = l.position(pos.Line, pos.Column)
			return true
		}
	}
	return false
}

// fromValue 用于 Promise 拒绝原因，它只有 stack 字符串可用。
func (l locator) fromValue(v goja.Value) *ScriptError {
	se := &ScriptError{Message: messageOf(v)}
	if line, col, ok := matchStack(v); ok {
		se.Line, se.Column = l.position(line, col)
	}
	return se
}

func matchStack(v goja.Value) (int, int, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return 0, 0, false
	}
	stack := obj.Get("stack")
	if stack == nil || goja.IsUndefined(stack) || goja.IsNull(stack) {
		return 0, 0, false
	}
	m := stackPattern.FindStringSubmatch(stack.String())
	if m == nil {
		return 0, 0, false
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return line, col, true
}

// messageOf 取 Error 的 message，其他值按 String() 处理。
func messageOf(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return v.String()
}
