package tui

import (
	"fmt"
	"time"

	"js-runner/internal/tui/render"

	"github.com/charmbracelet/lipgloss"
)

// RunIndicatorState 是状态栏左侧执行指示器的状态。
type RunIndicatorState int

const (
	// RunIdle 表示没有执行，显示快捷键提示。
	RunIdle RunIndicatorState = iota
	// RunActive 表示执行中，计时器持续累加。
	RunActive
	// RunStopping 表示已请求停止，等待执行收尾。
	RunStopping
)

func (s RunIndicatorState) String() string {
	switch s {
	case RunActive:
		return "running"
	case RunStopping:
		return "stopping"
	default:
		return "idle"
	}
}

func (s RunIndicatorState) header() string {
	switch s {
	case RunActive:
		return "Running"
	case RunStopping:
		return "Stopping"
	default:
		return ""
	}
}

// RunIndicator 渲染执行状态行：spinner + 标题 + 计时/停止提示。
type RunIndicator struct {
	state     RunIndicatorState
	startedAt time.Time
	elapsed   time.Duration
	stopHint  string

	clock func() time.Time
}

// NewRunIndicator 创建空闲状态的指示器。clock 为 nil 时使用 time.Now。
func NewRunIndicator(stopHint string, clock func() time.Time) *RunIndicator {
	if clock == nil {
		clock = time.Now
	}
	return &RunIndicator{stopHint: stopHint, clock: clock}
}

// State 返回当前状态。
func (w *RunIndicator) State() RunIndicatorState {
	if w == nil {
		return RunIdle
	}
	return w.state
}

// Start 开始一次执行并清零计时。
func (w *RunIndicator) Start() {
	if w == nil {
		return
	}
	w.state = RunActive
	w.startedAt = w.clock()
	w.elapsed = 0
}

// Stopping 标记已请求停止，计时继续。
func (w *RunIndicator) Stopping() {
	if w == nil || w.state != RunActive {
		return
	}
	w.state = RunStopping
}

// Finish 结束计时并回到空闲，返回本次耗时。
func (w *RunIndicator) Finish() time.Duration {
	if w == nil || w.state == RunIdle {
		return 0
	}
	w.elapsed = w.clock().Sub(w.startedAt)
	w.state = RunIdle
	return w.elapsed
}

// ElapsedSeconds 返回累计秒数。
func (w *RunIndicator) ElapsedSeconds() uint64 {
	if w == nil {
		return 0
	}
	if w.state == RunIdle {
		return uint64(w.elapsed.Seconds())
	}
	return uint64(w.clock().Sub(w.startedAt).Seconds())
}

// Line 返回状态行，空闲时为空行。
func (w *RunIndicator) Line(width int, frame string) render.Line {
	if w == nil || w.state == RunIdle || width <= 0 {
		return render.Line{}
	}
	spans := []render.Span{{Text: frame}}
	if frame != "" {
		spans = append(spans, render.Span{Text: " "})
	}
	spans = append(spans, render.Span{Text: w.state.header()})
	spans = append(spans, render.Span{Text: " "}, render.Span{
		Text:  formatHint(fmtElapsedCompact(w.ElapsedSeconds()), w.state == RunActive, w.stopHint),
		Style: lipgloss.NewStyle().Faint(true),
	})
	return render.TruncateLine(render.Line{Spans: spans}, width)
}

func formatHint(elapsed string, stoppable bool, stopHint string) string {
	if stoppable && stopHint != "" {
		return fmt.Sprintf("(%s • %s to stop)", elapsed, stopHint)
	}
	return fmt.Sprintf("(%s)", elapsed)
}

// fmtElapsedCompact 将秒数格式化为紧凑的时长字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}
