package events

import "time"

// EventType 描述 EQ 中分发的事件类型。
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventConsole      EventType = "run.console"
	EventScriptError  EventType = "run.error"
	EventRunCompleted EventType = "run.completed"
)

// Level 是脚本控制台输出的级别。
type Level string

const (
	LevelLog   Level = "log"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ErrorKind 区分脚本错误的来源。
type ErrorKind string

const (
	// KindRuntime 表示脚本主体执行（同步或 async 包装）中抛出的错误，包括语法错误。
	KindRuntime ErrorKind = "runtime"
	// KindUncaught 表示定时器回调中未被捕获的错误。
	KindUncaught ErrorKind = "uncaught"
	// KindUnhandledRejection 表示宏任务结束后仍无处理器的 Promise 拒绝。
	KindUnhandledRejection ErrorKind = "unhandled_rejection"
)

// ConsoleOutput 表示脚本的一次 console 调用。
type ConsoleOutput struct {
	Level Level
	Text  string
}

// ScriptError 描述一次被捕获的脚本错误。Line 为 0 表示无法定位。
type ScriptError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

// RunSummary 在执行结束时发出（成功/失败/停止均会发出）。
type RunSummary struct {
	Elapsed time.Duration
	Failed  bool
	Stopped bool
}

// Event 是 EQ 中传递的唯一消息格式，Payload 的具体结构由 Type 决定。
type Event struct {
	Type      EventType
	RunID     string
	Timestamp time.Time
	Payload   any
}
