package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestPlainFormatter_TypePrefixAndFieldSkipping(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name    string
		data    logrus.Fields
		message string
		want    string
	}{
		{
			name: "with type",
			data: logrus.Fields{
				"component": "runner",
				"type":      "run.started",
				"caller":    "x.go:1",
				"mode":      "async",
				"run_id":    "r1",
			},
			message: "script started",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [runner] [type=run.started] script started mode=async run_id=r1\n",
		},
		{
			name: "without type",
			data: logrus.Fields{
				"component": "runner",
				"caller":    "x.go:1",
				"foo":       "bar",
			},
			message: "hello",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [runner] hello foo=bar\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Time:    ts,
				Level:   logrus.InfoLevel,
				Message: tc.message,
				Data:    tc.data,
			}
			out, err := (PlainFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			got := string(out)
			if got != tc.want {
				t.Fatalf("unexpected format:\nwant: %q\ngot:  %q", tc.want, got)
			}
			if _, ok := tc.data["type"]; ok {
				if strings.Count(got, "type=run.started") != 1 {
					t.Fatalf("expected type to appear only once in output, got: %q", got)
				}
			}
		})
	}
}

func TestShortenFilePath(t *testing.T) {
	cases := map[string]string{
		"/home/u/src/js-runner/internal/runner/runner.go": "internal/runner/runner.go",
		"/home/u/src/js-runner/cmd/js-runner/main.go":     "cmd/js-runner/main.go",
		"/tmp/other.go": "other.go",
	}
	for in, want := range cases {
		if got := shortenFilePath(in); got != want {
			t.Fatalf("shortenFilePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunLoggerWritesTypedEntries(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(PlainFormatter{})
	l.SetLevel(logrus.DebugLevel)

	rl := NewRunLogger(logrus.NewEntry(l).WithField("component", "runs"))
	rl.Started("r1", "async", 12)
	rl.Console("r1", "log", "a\nb")
	rl.Completed("r1", time.Second, false)

	out := buf.String()
	for _, want := range []string{
		"[runs] [type=run.started] -> run mode=async bytes=12",
		`<- console.log a\nb`,
		"[type=run.completed]",
		"run_id=r1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":  logrus.DebugLevel,
		" warn ": logrus.WarnLevel,
		"":       logrus.InfoLevel,
		"noisy":  logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupComponentFileInheritsLevel(t *testing.T) {
	defer Configure("info")
	Configure("warn")

	path := filepath.Join(t.TempDir(), "logs", "runs.log")
	entry, closer, resolved, err := SetupComponentFile("runs", path)
	if err != nil {
		t.Fatalf("SetupComponentFile: %v", err)
	}
	defer closer.Close()
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	entry.Info("dropped")
	entry.Warn("kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") || !strings.Contains(out, "[WARN] [runs] kept") {
		t.Fatalf("unexpected run log:\n%s", out)
	}
}

func TestFormatCallerUsesShortPath(t *testing.T) {
	entry := &logrus.Entry{
		Logger: logrus.New(),
		Data:   logrus.Fields{},
		Caller: &runtime.Frame{File: "/src/js-runner/internal/format/format.go", Line: 42},
	}
	entry.Logger.SetReportCaller(true)
	if got := formatCaller(entry); got != "internal/format/format.go:42" {
		t.Fatalf("formatCaller = %q", got)
	}
}
