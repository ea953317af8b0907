package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry/Fields 暴露底层类型，调用方不直接依赖 logrus。
type LogEntry = logrus.Entry
type Fields = logrus.Fields

const DebugLevel = logrus.DebugLevel

// 终端由 TUI 独占，日志只写文件。
const (
	DefaultLogPath    = "logs/js-runner.log"
	DefaultRunLogPath = "logs/runs.log"
)

// Configure 设置全局格式、caller 输出和级别。无法识别的级别回落到 info。
func Configure(level string) {
	l := logrus.StandardLogger()
	l.SetReportCaller(true)
	l.SetFormatter(PlainFormatter{})
	l.SetLevel(ParseLevel(level))
}

// ParseLevel 解析配置中的日志级别，空值和非法值都视为 info。
func ParseLevel(level string) logrus.Level {
	lv, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lv
}

// SetupFile 把全局日志写到 logPath（空值用 DefaultLogPath），返回文件与实际路径。
func SetupFile(logPath string) (io.Closer, string, error) {
	f, resolved, err := openLogFile(logPath)
	if err != nil {
		return nil, "", err
	}
	logrus.StandardLogger().SetOutput(f)
	return f, resolved, nil
}

// SetupComponentFile 为单个组件创建独立文件的 logger，级别跟随全局 logger。
func SetupComponentFile(component, logPath string) (*LogEntry, io.Closer, string, error) {
	f, resolved, err := openLogFile(logPath)
	if err != nil {
		return nil, nil, "", err
	}
	l := logrus.New()
	l.SetReportCaller(true)
	l.SetFormatter(PlainFormatter{})
	l.SetLevel(logrus.StandardLogger().GetLevel())
	l.SetOutput(f)
	return withComponent(logrus.NewEntry(l), component), f, resolved, nil
}

// Discard 返回丢弃所有输出的入口。
func Discard(component string) *LogEntry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return withComponent(logrus.NewEntry(l), component)
}

// Silence 丢弃全局日志，用于日志文件不可用而终端被占用的情况。
func Silence() {
	logrus.StandardLogger().SetOutput(io.Discard)
}

// Named 返回带 component 字段的全局入口。
func Named(component string) *LogEntry {
	return withComponent(logrus.NewEntry(logrus.StandardLogger()), component)
}

func withComponent(entry *LogEntry, component string) *LogEntry {
	if component == "" {
		return entry
	}
	return entry.WithField("component", component)
}

// PlainFormatter 输出 `caller [time] [LEVEL] [component] [type=x] message k=v`。
type PlainFormatter struct{}

// reservedFields 已经出现在行首，不再重复输出。
var reservedFields = map[string]bool{"component": true, "caller": true, "type": true}

func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}
	var b bytes.Buffer
	if caller := formatCaller(entry); caller != "" {
		b.WriteString(caller)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] [%s]", entry.Time.UTC().Format(time.RFC3339Nano), strings.ToUpper(entry.Level.String()))
	if c, ok := entry.Data["component"].(string); ok && c != "" {
		fmt.Fprintf(&b, " [%s]", c)
	}
	if typ, ok := entry.Data["type"]; ok {
		fmt.Fprintf(&b, " [type=%v]", typ)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if !reservedFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func formatCaller(entry *logrus.Entry) string {
	if entry.HasCaller() {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	caller, _ := entry.Data["caller"].(string)
	return caller
}

// shortenFilePath 去掉模块根之前的路径前缀。
func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if idx := strings.Index(file, marker); idx != -1 {
			return file[idx+1:]
		}
	}
	return filepath.Base(file)
}

func openLogFile(logPath string) (*os.File, string, error) {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", err
	}
	return f, logPath, nil
}
