package bridge

import (
	"fmt"

	"js-runner/internal/console"
	"js-runner/internal/editor"
	"js-runner/internal/events"
	"js-runner/internal/logger"
)

const (
	StatusRunning   = "Execution in progress..."
	MsgBusy         = "A run is already in progress"
	MsgStopped      = "Execution stopped"
	MsgFormatted    = "Code formatted!"
	formatErrPrefix = "Format Error: "
)

// LineMarker 是编辑器的行装饰接口。
type LineMarker interface {
	SetDecorations([]editor.Decoration)
	ClearDecorations()
}

// Buffer 是编辑器的文本读写接口。
type Buffer interface {
	Value() string
	SetValue(string)
}

// Formatter 把源码重排为新文本，失败时不返回部分结果。
type Formatter interface {
	Format(src string) (string, error)
}

// State 持有一次会话中执行、格式化对控制台和编辑器装饰的全部副作用。
// 只在 UI 线程上使用。
type State struct {
	Console *console.Panel
	marker  LineMarker
	log     *logger.LogEntry

	runID  string
	status console.Handle
}

// New 创建桥接状态。marker 可以为 nil。
func New(panel *console.Panel, marker LineMarker, log *logger.LogEntry) *State {
	if panel == nil {
		panel = console.New()
	}
	if log == nil {
		log = logger.Named("bridge")
	}
	return &State{Console: panel, marker: marker, log: log}
}

// Pending 报告是否有执行尚未结束。
func (s *State) Pending() bool {
	return s.runID != ""
}

// RunID 返回当前执行的 ID。
func (s *State) RunID() string {
	return s.runID
}

// Begin 为新的执行做准备：清空控制台和装饰，发布状态条目。
// 已有执行时拒绝并在控制台给出提示。
func (s *State) Begin(runID string) bool {
	if s.Pending() {
		s.Console.Error(MsgBusy)
		s.log.WithField("run_id", s.runID).Info("run refused: another run pending")
		return false
	}
	s.Console.Clear()
	s.clearMarks()
	s.runID = runID
	s.status = s.Console.Status(StatusRunning)
	return true
}

// Abort 在执行未能启动时撤销 Begin 的状态。
func (s *State) Abort(message string) {
	s.Console.RemoveStatus(s.status)
	if message != "" {
		s.Console.Error(message)
	}
	s.runID = ""
	s.status = 0
}

// Apply 把 EQ 中的执行事件落到控制台和装饰上，其他执行的事件会被忽略。
func (s *State) Apply(ev events.Event) {
	if ev.RunID == "" || ev.RunID != s.runID {
		return
	}
	switch ev.Type {
	case events.EventConsole:
		out, ok := ev.Payload.(events.ConsoleOutput)
		if !ok {
			return
		}
		if out.Level == events.LevelError {
			s.Console.Error(out.Text)
		} else {
			s.Console.Log(out.Text)
		}
	case events.EventScriptError:
		se, ok := ev.Payload.(events.ScriptError)
		if !ok {
			return
		}
		s.Console.RemoveStatus(s.status)
		s.Console.Error(Describe(se))
		if se.Kind == events.KindRuntime && se.Line > 0 {
			s.mark(se)
		}
	case events.EventRunCompleted:
		s.Console.RemoveStatus(s.status)
		if summary, ok := ev.Payload.(events.RunSummary); ok {
			if summary.Stopped {
				s.Console.Log(MsgStopped)
			}
			s.log.WithFields(logger.Fields{
				"run_id":  ev.RunID,
				"elapsed": summary.Elapsed,
				"failed":  summary.Failed,
				"stopped": summary.Stopped,
			}).Info("run completed")
		}
		s.runID = ""
		s.status = 0
	}
}

// Reset 清空控制台与装饰，不影响正在进行的执行 ID。
func (s *State) Reset() {
	s.Console.Clear()
	s.status = 0
	s.clearMarks()
}

// Format 对缓冲区做全有或全无的格式化。
func (s *State) Format(f Formatter, buf Buffer) bool {
	out, err := f.Format(buf.Value())
	if err != nil {
		s.Console.Error(formatErrPrefix + err.Error())
		s.log.WithError(err).Info("format rejected")
		return false
	}
	buf.SetValue(out)
	s.Console.Log(MsgFormatted)
	return true
}

// Describe 按报告策略把脚本错误转成控制台文本。
func Describe(se events.ScriptError) string {
	if se.Kind == events.KindUnhandledRejection {
		if se.Line > 0 {
			return fmt.Sprintf("Async Error at line %d: %s", se.Line, se.Message)
		}
		return "Async Error: " + se.Message
	}
	if se.Line > 0 {
		return fmt.Sprintf("Error at line %d: %s", se.Line, se.Message)
	}
	return se.Message
}

func (s *State) mark(se events.ScriptError) {
	if s.marker == nil {
		return
	}
	s.marker.SetDecorations([]editor.Decoration{{Line: se.Line, Message: se.Message}})
}

func (s *State) clearMarks() {
	if s.marker != nil {
		s.marker.ClearDecorations()
	}
}
