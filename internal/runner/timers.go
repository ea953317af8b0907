package runner

import (
	"time"

	"github.com/dop251/goja"

	"js-runner/internal/events"
)

// 定时器回调由这里包装：回调中的异常按未捕获错误报告，每个宏任务结束后检查未处理的拒绝。

func (s *session) setTimeout(call goja.FunctionCall) goja.Value {
	vm := s.vm.Load()
	fn, args := s.callback(vm, call, "setTimeout")
	if s.stopped.Load() {
		return goja.Undefined()
	}
	id := s.timerID()
	s.timers[id] = s.loop.SetTimeout(func(*goja.Runtime) {
		delete(s.timers, id)
		s.invoke(fn, args)
	}, delayOf(call.Argument(1), 0))
	return vm.ToValue(id)
}

func (s *session) setInterval(call goja.FunctionCall) goja.Value {
	vm := s.vm.Load()
	fn, args := s.callback(vm, call, "setInterval")
	if s.stopped.Load() {
		return goja.Undefined()
	}
	id := s.timerID()
	s.intervals[id] = s.loop.SetInterval(func(*goja.Runtime) {
		s.invoke(fn, args)
	}, delayOf(call.Argument(1), time.Millisecond))
	return vm.ToValue(id)
}

func (s *session) clearTimeout(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	if t, ok := s.timers[id]; ok {
		s.loop.ClearTimeout(t)
		delete(s.timers, id)
	}
	return goja.Undefined()
}

func (s *session) clearInterval(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	if iv, ok := s.intervals[id]; ok {
		s.loop.ClearInterval(iv)
		delete(s.intervals, id)
	}
	return goja.Undefined()
}

func (s *session) clearTimers() {
	for id, t := range s.timers {
		s.loop.ClearTimeout(t)
		delete(s.timers, id)
	}
	for id, iv := range s.intervals {
		s.loop.ClearInterval(iv)
		delete(s.intervals, id)
	}
}

func (s *session) callback(vm *goja.Runtime, call goja.FunctionCall, name string) (goja.Callable, []goja.Value) {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(vm.NewTypeError("%s: callback must be a function", name))
	}
	var args []goja.Value
	if len(call.Arguments) > 2 {
		args = append(args, call.Arguments[2:]...)
	}
	return fn, args
}

func (s *session) invoke(fn goja.Callable, args []goja.Value) {
	if s.stopped.Load() {
		return
	}
	if _, err := fn(goja.Undefined(), args...); err != nil {
		s.report(events.KindUncaught, err)
	}
	s.flushRejections()
}

func (s *session) timerID() int64 {
	s.nextTimer++
	return s.nextTimer
}

func delayOf(v goja.Value, floor time.Duration) time.Duration {
	d := time.Duration(0)
	if v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		d = time.Duration(v.ToInteger()) * time.Millisecond
	}
	if d < floor {
		d = floor
	}
	return d
}
