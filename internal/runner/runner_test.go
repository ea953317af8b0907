package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"js-runner/internal/events"
	"js-runner/internal/logger"
)

type recordingRunLog struct {
	mu        sync.Mutex
	started   []string
	failed    []string
	completed int
}

func (l *recordingRunLog) Started(runID string, mode string, size int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, runID+":"+mode)
}

func (l *recordingRunLog) Console(runID string, level string, text string) {}

func (l *recordingRunLog) Failed(runID string, kind string, line int, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, kind+":"+message)
}

func (l *recordingRunLog) Completed(runID string, elapsed time.Duration, stopped bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed++
}

type capture struct {
	result   *Result
	events   []events.Event
	consoles []events.ConsoleOutput
	errors   []events.ScriptError
}

func run(t *testing.T, src string, mode Mode) capture {
	t.Helper()
	q := events.NewEventQueue(1024)
	ch := q.Subscribe()
	r := New(Options{Queue: q, Log: logger.Discard("runner")})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := r.Run(ctx, "run-1", src, mode)
	require.NoError(t, err)
	q.Close()

	c := capture{result: res}
	for ev := range ch {
		c.events = append(c.events, ev)
		switch p := ev.Payload.(type) {
		case events.ConsoleOutput:
			c.consoles = append(c.consoles, p)
		case events.ScriptError:
			c.errors = append(c.errors, p)
		}
	}
	return c
}

func TestConsoleLogProducesSingleEntry(t *testing.T) {
	for _, mode := range []Mode{ModeAsync, ModeSync} {
		t.Run(string(mode), func(t *testing.T) {
			c := run(t, `console.log("hi")`, mode)
			require.Len(t, c.consoles, 1)
			assert.Equal(t, events.ConsoleOutput{Level: events.LevelLog, Text: "hi"}, c.consoles[0])
			assert.Empty(t, c.errors)
			assert.NoError(t, c.result.Err())

			require.Len(t, c.events, 3)
			assert.Equal(t, events.EventRunStarted, c.events[0].Type)
			assert.Equal(t, events.EventRunCompleted, c.events[2].Type)
			assert.Equal(t, "run-1", c.events[2].RunID)
			summary := c.events[2].Payload.(events.RunSummary)
			assert.False(t, summary.Failed)
			assert.False(t, summary.Stopped)
		})
	}
}

func TestSynchronousThrowReportsLine(t *testing.T) {
	src := "const a = 1;\nconst b = a + 1;\nthrow new Error(\"boom\");\nconsole.log(\"unreachable\");"
	for _, mode := range []Mode{ModeAsync, ModeSync} {
		t.Run(string(mode), func(t *testing.T) {
			c := run(t, src, mode)
			require.Len(t, c.errors, 1)
			assert.Equal(t, events.KindRuntime, c.errors[0].Kind)
			assert.Equal(t, "boom", c.errors[0].Message)
			assert.Equal(t, 3, c.errors[0].Line)
			assert.Empty(t, c.consoles)

			var se *ScriptError
			require.True(t, errors.As(c.result.Err(), &se))
			assert.Equal(t, 3, se.Line)
		})
	}
}

func TestThrowInsideFunctionReportsThrowSite(t *testing.T) {
	src := "function fail() {\n  throw new TypeError(\"bad input\");\n}\n\nfail();"
	c := run(t, src, ModeSync)
	require.Len(t, c.errors, 1)
	assert.Equal(t, "bad input", c.errors[0].Message)
	assert.Equal(t, 2, c.errors[0].Line)
}

func TestThrowNonErrorValue(t *testing.T) {
	c := run(t, `throw "plain"`, ModeSync)
	require.Len(t, c.errors, 1)
	assert.Equal(t, "plain", c.errors[0].Message)
}

func TestThrowNullLocation(t *testing.T) {
	// async 包装的拒绝原因只有值本身，原始值无法定位。
	cases := map[Mode]int{ModeSync: 1, ModeAsync: 0}
	for mode, line := range cases {
		t.Run(string(mode), func(t *testing.T) {
			c := run(t, "throw null", mode)
			require.Len(t, c.errors, 1)
			assert.Equal(t, events.KindRuntime, c.errors[0].Kind)
			assert.Equal(t, "null", c.errors[0].Message)
			assert.Equal(t, line, c.errors[0].Line)
		})
	}
}

func TestInfiniteRecursionIsRuntimeError(t *testing.T) {
	for _, mode := range []Mode{ModeAsync, ModeSync} {
		t.Run(string(mode), func(t *testing.T) {
			c := run(t, "function f(){ f() }\nf()", mode)
			require.Len(t, c.errors, 1)
			assert.Equal(t, events.KindRuntime, c.errors[0].Kind)
			assert.Equal(t, "Maximum call stack size exceeded", c.errors[0].Message)
			assert.Equal(t, 1, c.errors[0].Line)
			assert.False(t, c.result.Stopped)
		})
	}
}

func TestSyntaxErrorIsLocatedByParser(t *testing.T) {
	src := "const ok = 1;\nlet x = ;"
	asyncRun := run(t, src, ModeAsync)
	syncRun := run(t, src, ModeSync)

	require.Len(t, asyncRun.errors, 1)
	require.Len(t, syncRun.errors, 1)
	assert.Equal(t, events.KindRuntime, asyncRun.errors[0].Kind)
	assert.Equal(t, 2, asyncRun.errors[0].Line)
	assert.Equal(t, 2, syncRun.errors[0].Line)
	assert.Equal(t, syncRun.errors[0].Column, asyncRun.errors[0].Column)
}

func TestFirstLineColumnIgnoresAsyncWrapper(t *testing.T) {
	src := "let x = ;"
	asyncRun := run(t, src, ModeAsync)
	syncRun := run(t, src, ModeSync)
	require.Len(t, asyncRun.errors, 1)
	require.Len(t, syncRun.errors, 1)
	assert.Equal(t, 1, asyncRun.errors[0].Line)
	assert.Equal(t, syncRun.errors[0].Column, asyncRun.errors[0].Column)
}

func TestUnterminatedBlockStaysInsideBuffer(t *testing.T) {
	c := run(t, "if (true) {\n  console.log(1);", ModeAsync)
	require.Len(t, c.errors, 1)
	assert.LessOrEqual(t, c.errors[0].Line, 2)
	assert.Greater(t, c.errors[0].Line, 0)
}

func TestTopLevelAwait(t *testing.T) {
	src := "await new Promise(resolve => setTimeout(resolve, 5));\nconsole.log(\"after\");"
	c := run(t, src, ModeAsync)
	assert.Empty(t, c.errors)
	require.Len(t, c.consoles, 1)
	assert.Equal(t, "after", c.consoles[0].Text)
}

func TestRejectionAfterAwaitIsRuntimeError(t *testing.T) {
	src := "await null;\n\nthrow new Error(\"later\");"
	c := run(t, src, ModeAsync)
	require.Len(t, c.errors, 1)
	assert.Equal(t, events.KindRuntime, c.errors[0].Kind)
	assert.Equal(t, "later", c.errors[0].Message)
	assert.Equal(t, 3, c.errors[0].Line)
}

func TestTimerCallbackErrorIsUncaught(t *testing.T) {
	src := "console.log(\"start\");\nsetTimeout(() => {\n  throw new Error(\"late\");\n}, 1);"
	c := run(t, src, ModeAsync)
	require.Len(t, c.consoles, 1)
	require.Len(t, c.errors, 1)
	assert.Equal(t, events.KindUncaught, c.errors[0].Kind)
	assert.Equal(t, "late", c.errors[0].Message)
	assert.Equal(t, 3, c.errors[0].Line)
}

func TestUnhandledRejection(t *testing.T) {
	src := "const x = 1;\nPromise.reject(new Error(\"nope\"));"
	c := run(t, src, ModeAsync)
	require.Len(t, c.errors, 1)
	assert.Equal(t, events.KindUnhandledRejection, c.errors[0].Kind)
	assert.Equal(t, "nope", c.errors[0].Message)
	assert.Equal(t, 2, c.errors[0].Line)
}

func TestRejectionHandledInSameTaskIsNotReported(t *testing.T) {
	src := "const p = Promise.reject(new Error(\"x\"));\np.catch(e => console.log(\"caught\", e.message));"
	c := run(t, src, ModeAsync)
	assert.Empty(t, c.errors)
	require.Len(t, c.consoles, 1)
	assert.Equal(t, "caught x", c.consoles[0].Text)
}

func TestRejectionWithPrimitiveReason(t *testing.T) {
	c := run(t, `Promise.reject("flat")`, ModeSync)
	require.Len(t, c.errors, 1)
	assert.Equal(t, events.KindUnhandledRejection, c.errors[0].Kind)
	assert.Equal(t, "flat", c.errors[0].Message)
	assert.Zero(t, c.errors[0].Line)
}

func TestConsoleFormatting(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want events.ConsoleOutput
	}{
		{
			name: "object pretty printed",
			src:  `console.log({a: 1}, "s", 3)`,
			want: events.ConsoleOutput{Level: events.LevelLog, Text: "{\n  \"a\": 1\n} s 3"},
		},
		{
			name: "array",
			src:  `console.info([1, 2])`,
			want: events.ConsoleOutput{Level: events.LevelInfo, Text: "[\n  1,\n  2\n]"},
		},
		{
			name: "null and undefined",
			src:  `console.warn(null, undefined)`,
			want: events.ConsoleOutput{Level: events.LevelWarn, Text: "null undefined"},
		},
		{
			name: "circular",
			src:  "const o = {};\no.self = o;\nconsole.log(o)",
			want: events.ConsoleOutput{Level: events.LevelLog, Text: "[Circular Object]"},
		},
		{
			name: "error level",
			src:  `console.error("bad", true)`,
			want: events.ConsoleOutput{Level: events.LevelError, Text: "bad true"},
		},
		{
			name: "no arguments",
			src:  `console.debug()`,
			want: events.ConsoleOutput{Level: events.LevelDebug, Text: ""},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := run(t, tc.src, ModeSync)
			assert.Empty(t, c.errors)
			require.Len(t, c.consoles, 1)
			assert.Equal(t, tc.want, c.consoles[0])
		})
	}
}

func TestIntervalAndClear(t *testing.T) {
	src := "let n = 0;\nconst id = setInterval(() => {\n  n++;\n  console.log(\"tick\", n);\n  if (n === 3) clearInterval(id);\n}, 1);"
	c := run(t, src, ModeAsync)
	assert.Empty(t, c.errors)
	require.Len(t, c.consoles, 3)
	assert.Equal(t, "tick 3", c.consoles[2].Text)
}

func TestClearTimeoutCancels(t *testing.T) {
	src := "const id = setTimeout(() => console.log(\"never\"), 5);\nclearTimeout(id);\nsetTimeout((a, b) => console.log(a + b), 1, 2, 3);"
	c := run(t, src, ModeSync)
	require.Len(t, c.consoles, 1)
	assert.Equal(t, "5", c.consoles[0].Text)
}

func TestStopInterruptsRunawayScript(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{name: "busy loop", src: `while (true) {}`},
		{name: "endless interval", src: `setInterval(() => {}, 5)`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rl := &recordingRunLog{}
			r := New(Options{RunLog: rl, Log: logger.Discard("runner")})
			done := make(chan *Result, 1)
			go func() {
				res, err := r.Run(context.Background(), "run-stop", tc.src, ModeAsync)
				assert.NoError(t, err)
				done <- res
			}()

			require.Eventually(t, r.Running, time.Second, time.Millisecond)
			time.Sleep(20 * time.Millisecond)
			require.True(t, r.Stop())

			select {
			case res := <-done:
				assert.True(t, res.Stopped)
				assert.Empty(t, res.Failures)
			case <-time.After(5 * time.Second):
				t.Fatal("run did not stop")
			}
			assert.False(t, r.Running())
			assert.False(t, r.Stop())
			assert.Equal(t, 1, rl.completed)
		})
	}
}

func TestContextCancelStopsRun(t *testing.T) {
	r := New(Options{Log: logger.Discard("runner")})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	res, err := r.Run(ctx, "run-ctx", `setInterval(() => {}, 5)`, ModeSync)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
}

func TestRunsAreSerialized(t *testing.T) {
	r := New(Options{Log: logger.Discard("runner")})
	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = r.Run(context.Background(), "first", `setInterval(() => {}, 5)`, ModeAsync)
	}()
	<-started
	require.Eventually(t, r.Running, time.Second, time.Millisecond)

	_, err := r.Run(context.Background(), "second", `console.log(1)`, ModeAsync)
	assert.ErrorIs(t, err, ErrBusy)

	r.Stop()
	require.Eventually(t, func() bool { return !r.Running() }, 5*time.Second, time.Millisecond)
}

func TestIdleWhenCompletionPublished(t *testing.T) {
	q := events.NewEventQueue(16)
	ch := q.Subscribe()
	r := New(Options{Queue: q, Log: logger.Discard("runner")})

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), "run-idle", `console.log(1)`, ModeAsync)
		done <- err
	}()
	for ev := range ch {
		if ev.Type != events.EventRunCompleted {
			continue
		}
		assert.False(t, r.Running())
		_, err := r.Run(context.Background(), "run-next", `1`, ModeSync)
		assert.NoError(t, err)
		break
	}
	require.NoError(t, <-done)
}

func TestRunLoggerRecordsLifecycle(t *testing.T) {
	rl := &recordingRunLog{}
	r := New(Options{RunLog: rl, Log: logger.Discard("runner")})
	_, err := r.Run(context.Background(), "run-log", `throw new Error("x")`, ModeSync)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-log:sync"}, rl.started)
	assert.Equal(t, []string{"runtime:x"}, rl.failed)
	assert.Equal(t, 1, rl.completed)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeSync, ParseMode("SYNC"))
	assert.Equal(t, ModeAsync, ParseMode("async"))
	assert.Equal(t, ModeAsync, ParseMode("weird"))
}
