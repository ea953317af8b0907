package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"js-runner/internal/bridge"
	"js-runner/internal/events"
	"js-runner/internal/logger"
	"js-runner/internal/runner"

	"github.com/google/uuid"
)

type jsonEvent struct {
	Type      string      `json:"type"`
	RunID     string      `json:"run_id"`
	Level     string      `json:"level,omitempty"`
	Text      string      `json:"text,omitempty"`
	Error     *eventError `json:"error,omitempty"`
	ElapsedMS int64       `json:"elapsed_ms,omitempty"`
	Failed    bool        `json:"failed,omitempty"`
	Stopped   bool        `json:"stopped,omitempty"`
}

type eventError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type execOptions struct {
	mode    runner.Mode
	timeout time.Duration
	json    bool
	runLog  logger.RunLogger
}

func execMain(root rootArgs, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := root.common.clone()
	common.bind(fs)
	var opts execOptions
	fs.BoolVar(&opts.json, "json", false, "Print events as JSON lines")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Stop the script after this duration (0 disables)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "exec expects exactly one file (or - for stdin)\n")
		return 2
	}

	cfg, err := loadConfig(common)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	src, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	runLog, closeLogs := setupLogs(cfg, false)
	defer closeLogs()
	opts.mode = runner.ParseMode(cfg.Mode)
	opts.runLog = runLog

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := runHeadless(ctx, src, opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "run: %v\n", err)
		return 1
	}
	if res.Err() != nil || res.Stopped {
		return 1
	}
	return 0
}

// runHeadless 执行脚本并把 EQ 事件流式写到 stdout/stderr，直到执行结束。
func runHeadless(ctx context.Context, src string, opts execOptions, stdout, stderr io.Writer) (*runner.Result, error) {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	queue := events.NewEventQueue(0)
	queue.SetLogger(logger.Named("events"))
	sub := queue.Subscribe()

	p := &eventPrinter{stdout: stdout, stderr: stderr, json: opts.json}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range sub {
			p.print(ev)
		}
	}()

	r := runner.New(runner.Options{Queue: queue, RunLog: opts.runLog})
	res, err := r.Run(ctx, uuid.NewString(), src, opts.mode)
	queue.Close()
	wg.Wait()
	return res, err
}

type eventPrinter struct {
	stdout io.Writer
	stderr io.Writer
	json   bool
}

func (p *eventPrinter) print(ev events.Event) {
	if p.json {
		if out, ok := toJSON(ev); ok {
			_ = json.NewEncoder(p.stdout).Encode(out)
		}
		return
	}
	switch payload := ev.Payload.(type) {
	case events.ConsoleOutput:
		if payload.Level == events.LevelError {
			fmt.Fprintln(p.stderr, payload.Text)
		} else {
			fmt.Fprintln(p.stdout, payload.Text)
		}
	case events.ScriptError:
		fmt.Fprintln(p.stderr, bridge.Describe(payload))
	case events.RunSummary:
		if payload.Stopped {
			fmt.Fprintln(p.stderr, bridge.MsgStopped)
		}
	}
}

func toJSON(ev events.Event) (jsonEvent, bool) {
	out := jsonEvent{Type: string(ev.Type), RunID: ev.RunID}
	switch payload := ev.Payload.(type) {
	case events.ConsoleOutput:
		out.Level = string(payload.Level)
		out.Text = payload.Text
	case events.ScriptError:
		out.Error = &eventError{
			Kind:    string(payload.Kind),
			Message: payload.Message,
			Line:    payload.Line,
			Column:  payload.Column,
		}
		out.Text = bridge.Describe(payload)
	case events.RunSummary:
		out.ElapsedMS = payload.Elapsed.Milliseconds()
		out.Failed = payload.Failed
		out.Stopped = payload.Stopped
	case nil:
		if ev.Type != events.EventRunStarted {
			return jsonEvent{}, false
		}
	default:
		return jsonEvent{}, false
	}
	return out, true
}
