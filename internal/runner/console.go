package runner

import (
	"strings"

	"github.com/dop251/goja"

	"js-runner/internal/events"
)

const circularPlaceholder = "[Circular Object]"

func (s *session) installConsole(vm *goja.Runtime) {
	stringify, _ := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	console := vm.NewObject()
	bind := func(name string, level events.Level) {
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			s.console(level, formatArgs(vm, stringify, call.Arguments))
			return goja.Undefined()
		})
	}
	bind("log", events.LevelLog)
	bind("info", events.LevelInfo)
	bind("debug", events.LevelDebug)
	bind("warn", events.LevelWarn)
	bind("error", events.LevelError)
	_ = vm.Set("console", console)
}

func (s *session) console(level events.Level, text string) {
	if s.stopped.Load() {
		return
	}
	s.r.runLog.Console(s.runID, string(level), text)
	s.publish(events.EventConsole, events.ConsoleOutput{Level: level, Text: text})
}

// formatArgs 以单个空格连接参数；对象用 JSON.stringify(arg, null, 2) 展开，
// 无法序列化时输出占位符。
func formatArgs(vm *goja.Runtime, stringify goja.Callable, args []goja.Value) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatArg(vm, stringify, arg))
	}
	return strings.Join(parts, " ")
}

func formatArg(vm *goja.Runtime, stringify goja.Callable, arg goja.Value) string {
	switch {
	case arg == nil || goja.IsUndefined(arg):
		return "undefined"
	case goja.IsNull(arg):
		return "null"
	}
	obj, isObject := arg.(*goja.Object)
	if !isObject {
		return arg.String()
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc || stringify == nil {
		return arg.String()
	}
	out, err := stringify(goja.Undefined(), obj, goja.Null(), vm.ToValue(2))
	if err != nil {
		return circularPlaceholder
	}
	if out == nil || goja.IsUndefined(out) {
		return "undefined"
	}
	return out.String()
}
