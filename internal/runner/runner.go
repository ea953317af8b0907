package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"js-runner/internal/events"
	"js-runner/internal/logger"
)

// Mode 决定缓冲区以何种方式执行。
type Mode string

const (
	// ModeAsync 把缓冲区包进 async 箭头函数，允许顶层 await。
	ModeAsync Mode = "async"
	// ModeSync 以普通脚本方式执行缓冲区。
	ModeSync Mode = "sync"
)

// ParseMode 把配置中的字符串转成 Mode，未知值回落到 async。
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeSync)) {
		return ModeSync
	}
	return ModeAsync
}

// ScriptName 是缓冲区在调用栈中的源文件名。
const ScriptName = "buffer.js"

// maxCallStackSize 限制 JS 调用深度，无限递归以运行时错误结束而不是耗尽 Go 栈。
const maxCallStackSize = 10000

// ErrBusy 表示已有一次执行尚未结束。
var ErrBusy = errors.New("a run is already in progress")

// ScriptError 是脚本执行期间捕获到的一次错误。Line 为 0 表示无法定位。
type ScriptError struct {
	Kind    events.ErrorKind
	Message string
	Line    int
	Column  int
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result 汇总一次执行。
type Result struct {
	RunID    string
	Failures []*ScriptError
	Stopped  bool
	Elapsed  time.Duration
}

// Err 把所有脚本错误合并为一个 error，没有错误时返回 nil。
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Options 配置 Runner。
type Options struct {
	Queue  *events.EventQueue
	RunLog logger.RunLogger
	Log    *logger.LogEntry
}

// Runner 在 goja 上执行缓冲区，并把控制台输出和错误发布到 EQ。
// 同一时间只允许一次执行。
type Runner struct {
	queue  *events.EventQueue
	runLog logger.RunLogger
	log    *logger.LogEntry

	mu     sync.Mutex
	active *session
}

// New 创建 Runner。Queue 为空时事件只写入 Result。
func New(opts Options) *Runner {
	if opts.RunLog == nil {
		opts.RunLog = logger.NoopRunLogger{}
	}
	if opts.Log == nil {
		opts.Log = logger.Named("runner")
	}
	return &Runner{queue: opts.Queue, runLog: opts.RunLog, log: opts.Log}
}

// Running 报告是否有执行尚未结束。
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Stop 中断当前执行，没有执行时返回 false。
func (r *Runner) Stop() bool {
	r.mu.Lock()
	s := r.active
	r.mu.Unlock()
	if s == nil {
		return false
	}
	s.stop()
	return true
}

// Run 执行 src 并阻塞到脚本及其调度的所有定时器、Promise 任务结束。
// ctx 取消等同于 Stop。
func (r *Runner) Run(ctx context.Context, runID string, src string, mode Mode) (*Result, error) {
	s := newSession(r, runID, mode)
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.active = s
	r.mu.Unlock()
	// 完成事件发出前必须释放，订阅者收到后立即可以开始下一次执行。
	release := func() {
		r.mu.Lock()
		if r.active == s {
			r.active = nil
		}
		r.mu.Unlock()
	}
	defer release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.ctx = runCtx
	go func() {
		<-runCtx.Done()
		if ctx.Err() != nil {
			s.stop()
		}
	}()

	start := time.Now()
	r.runLog.Started(runID, string(mode), len(src))
	s.publish(events.EventRunStarted, nil)

	s.execute(src)

	res := &Result{
		RunID:    runID,
		Failures: s.failures,
		Stopped:  s.stopped.Load(),
		Elapsed:  time.Since(start),
	}
	r.runLog.Completed(runID, res.Elapsed, res.Stopped)
	s.ctx = context.WithoutCancel(ctx)
	release()
	s.publish(events.EventRunCompleted, events.RunSummary{
		Elapsed: res.Elapsed,
		Failed:  len(res.Failures) > 0,
		Stopped: res.Stopped,
	})
	return res, nil
}
