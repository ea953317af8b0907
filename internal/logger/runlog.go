package logger

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RunLogger 记录脚本执行的生命周期：开始、控制台输出、错误与结束。
type RunLogger interface {
	Started(runID string, mode string, size int)
	Console(runID string, level string, text string)
	Failed(runID string, kind string, line int, message string)
	Completed(runID string, elapsed time.Duration, stopped bool)
}

// StdRunLogger 使用 logrus 输出执行日志。
type StdRunLogger struct {
	logger *logrus.Entry
}

// NewRunLogger 基于给定入口构造执行日志器，entry 为 nil 时写入全局 logger。
func NewRunLogger(entry *LogEntry) *StdRunLogger {
	if entry == nil {
		entry = Named("runs")
	}
	return &StdRunLogger{logger: entry}
}

// Started 记录一次执行开始。
func (l *StdRunLogger) Started(runID string, mode string, size int) {
	l.printf(logrus.InfoLevel, "run.started", runID, "-> run mode=%s bytes=%d", mode, size)
}

// Console 记录脚本的一条控制台输出。
func (l *StdRunLogger) Console(runID string, level string, text string) {
	l.printf(logrus.DebugLevel, "run.console", runID, "<- console.%s %s", level, sanitize(text))
}

// Failed 记录脚本抛出的错误。
func (l *StdRunLogger) Failed(runID string, kind string, line int, message string) {
	l.printf(logrus.WarnLevel, "run.error", runID, "!! %s line=%d %s", kind, line, sanitize(message))
}

// Completed 记录执行结束。
func (l *StdRunLogger) Completed(runID string, elapsed time.Duration, stopped bool) {
	l.printf(logrus.InfoLevel, "run.completed", runID, "<- run completed elapsed=%s stopped=%t", elapsed, stopped)
}

// NoopRunLogger 忽略所有日志输出。
type NoopRunLogger struct{}

func (NoopRunLogger) Started(runID string, mode string, size int)                {}
func (NoopRunLogger) Console(runID string, level string, text string)            {}
func (NoopRunLogger) Failed(runID string, kind string, line int, message string) {}
func (NoopRunLogger) Completed(runID string, elapsed time.Duration, stopped bool) {}

func (l *StdRunLogger) printf(level logrus.Level, typ string, runID string, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	if !l.logger.Logger.IsLevelEnabled(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	entry := l.logger.WithField("type", typ)
	if runID != "" {
		entry = entry.WithField("run_id", runID)
	}
	if caller := findCaller(); caller != "" {
		entry = entry.WithField("caller", caller)
	}
	entry.Log(level, msg)
}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}

func findCaller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.Contains(frame.File, "runlog.go") {
			return fmt.Sprintf("%s:%d", shortenFilePath(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
	return ""
}
