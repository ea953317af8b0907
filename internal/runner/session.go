package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"

	"js-runner/internal/events"
)

var errStopped = errors.New("execution stopped")

// session 是一次执行的全部状态。除 stop 外只在事件循环 goroutine 上访问。
type session struct {
	r     *Runner
	runID string
	mode  Mode
	ctx   context.Context
	loc   locator

	loop    *eventloop.EventLoop
	vm      atomic.Pointer[goja.Runtime]
	stopped atomic.Bool

	wrapper  *goja.Promise
	rejected []*goja.Promise
	failures []*ScriptError

	timers    map[int64]*eventloop.Timer
	intervals map[int64]*eventloop.Interval
	nextTimer int64
}

func newSession(r *Runner, runID string, mode Mode) *session {
	return &session{
		r:         r,
		runID:     runID,
		mode:      mode,
		ctx:       context.Background(),
		loop:      eventloop.NewEventLoop(eventloop.EnableConsole(false)),
		timers:    make(map[int64]*eventloop.Timer),
		intervals: make(map[int64]*eventloop.Interval),
	}
}

// execute 编译并运行缓冲区，直到事件循环中没有剩余任务。
func (s *session) execute(src string) {
	s.loc = newLocator(src, s.mode)
	prg, perr := compile(src, s.mode)
	if perr != nil {
		s.fail(perr)
		return
	}
	s.loop.Run(func(vm *goja.Runtime) {
		s.vm.Store(vm)
		if s.stopped.Load() {
			return
		}
		s.install(vm)
		v, err := vm.RunProgram(prg)
		if err != nil {
			s.report(events.KindRuntime, err)
		} else if s.mode == ModeAsync {
			if p, ok := v.Export().(*goja.Promise); ok {
				s.wrapper = p
			}
		}
		s.flushRejections()
	})
	if vm := s.vm.Load(); vm != nil {
		vm.ClearInterrupt()
	}
}

// stop 可在任意 goroutine 调用。
func (s *session) stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	if vm := s.vm.Load(); vm != nil {
		vm.Interrupt(errStopped)
	}
	s.loop.RunOnLoop(func(*goja.Runtime) {
		s.clearTimers()
	})
}

func (s *session) install(vm *goja.Runtime) {
	vm.SetMaxCallStackSize(maxCallStackSize)
	vm.SetPromiseRejectionTracker(s.trackRejection)
	s.installConsole(vm)

	global := vm.GlobalObject()
	_ = global.Set("setTimeout", s.setTimeout)
	_ = global.Set("setInterval", s.setInterval)
	_ = global.Set("clearTimeout", s.clearTimeout)
	_ = global.Set("clearInterval", s.clearInterval)
	_ = global.Delete("setImmediate")
	_ = global.Delete("clearImmediate")
}

func (s *session) trackRejection(p *goja.Promise, op goja.PromiseRejectionOperation) {
	switch op {
	case goja.PromiseRejectionReject:
		s.rejected = append(s.rejected, p)
	case goja.PromiseRejectionHandle:
		for i, candidate := range s.rejected {
			if candidate == p {
				s.rejected = append(s.rejected[:i], s.rejected[i+1:]...)
				break
			}
		}
	}
}

// flushRejections 在每个宏任务结束后调用，报告仍没有处理器的拒绝。
// async 包装本身的拒绝属于脚本主体的运行时错误。
func (s *session) flushRejections() {
	pending := s.rejected
	s.rejected = nil
	for _, p := range pending {
		if s.stopped.Load() {
			return
		}
		kind := events.KindUnhandledRejection
		if p == s.wrapper {
			kind = events.KindRuntime
		}
		s.reportValue(kind, p.Result())
	}
}

func (s *session) report(kind events.ErrorKind, err error) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) || s.stopped.Load() {
		return
	}
	se := s.loc.fromError(err)
	se.Kind = kind
	s.fail(se)
}

func (s *session) reportValue(kind events.ErrorKind, reason goja.Value) {
	se := s.loc.fromValue(reason)
	se.Kind = kind
	s.fail(se)
}

func (s *session) fail(se *ScriptError) {
	if se.Kind == "" {
		se.Kind = events.KindRuntime
	}
	s.failures = append(s.failures, se)
	s.r.runLog.Failed(s.runID, string(se.Kind), se.Line, se.Message)
	s.publish(events.EventScriptError, events.ScriptError{
		Kind:    se.Kind,
		Message: se.Message,
		Line:    se.Line,
		Column:  se.Column,
	})
}

func (s *session) publish(typ events.EventType, payload any) {
	if s.r.queue == nil {
		return
	}
	ev := events.Event{Type: typ, RunID: s.runID, Timestamp: time.Now(), Payload: payload}
	if err := s.r.queue.Publish(s.ctx, ev); err != nil {
		s.r.log.WithError(err).WithField("type", string(typ)).Debug("drop run event")
	}
}
