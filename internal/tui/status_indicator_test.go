package tui

import (
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestFmtElapsedCompact(t *testing.T) {
	cases := []struct {
		seconds  uint64
		expected string
	}{
		{seconds: 0, expected: "0s"},
		{seconds: 59, expected: "59s"},
		{seconds: 60, expected: "1m 00s"},
		{seconds: 3*60 + 5, expected: "3m 05s"},
		{seconds: 3600, expected: "1h 00m 00s"},
		{seconds: 25*3600 + 2*60 + 3, expected: "25h 02m 03s"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if got := fmtElapsedCompact(tc.seconds); got != tc.expected {
				t.Fatalf("fmtElapsedCompact(%d) = %q, want %q", tc.seconds, got, tc.expected)
			}
		})
	}
}

func TestRunIndicatorTimesRun(t *testing.T) {
	base := time.Unix(0, 0)
	now := base
	w := NewRunIndicator("ctrl+x", func() time.Time { return now })

	w.Start()
	now = base.Add(5 * time.Second)
	if got := w.ElapsedSeconds(); got != 5 {
		t.Fatalf("expected 5s while running, got %d", got)
	}

	now = base.Add(7 * time.Second)
	if d := w.Finish(); d != 7*time.Second {
		t.Fatalf("Finish() = %s", d)
	}
	now = base.Add(20 * time.Second)
	if got := w.ElapsedSeconds(); got != 7 {
		t.Fatalf("elapsed kept counting after finish: %d", got)
	}
	if w.State() != RunIdle {
		t.Fatalf("state = %s", w.State())
	}
}

func TestRunIndicatorLine(t *testing.T) {
	now := time.Unix(0, 0)
	w := NewRunIndicator("ctrl+x", func() time.Time { return now })
	if got := w.Line(80, "•").Plain(); got != "" {
		t.Fatalf("idle line = %q", got)
	}

	w.Start()
	if got, want := w.Line(80, "•").Plain(), "• Running (0s • ctrl+x to stop)"; got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	w.Stopping()
	if got, want := w.Line(80, "•").Plain(), "• Stopping (0s)"; got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}

func TestRunIndicatorLineClampsToWidth(t *testing.T) {
	w := NewRunIndicator("ctrl+x", nil)
	w.Start()
	line := w.Line(10, "•").Plain()
	if width := runewidth.StringWidth(line); width > 10 {
		t.Fatalf("rendered width %d exceeds 10", width)
	}
}
