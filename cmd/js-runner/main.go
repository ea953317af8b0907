package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"js-runner/internal/config"
	"js-runner/internal/events"
	"js-runner/internal/logger"
	"js-runner/internal/runner"
	"js-runner/internal/tui"
)

var log = logger.Named("cli")

const usage = `Usage:
  js-runner [flags] [file.js]           open the editor (file contents become the buffer)
  js-runner exec [flags] file.js|-      run headless, print console output
  js-runner fmt [-w] file.js|-          print or rewrite formatted source
  js-runner init-config [-force]        write the default config file

Flags:
  -config path      config file (default ~/.js-runner/config.toml)
  -c key=value      override a config value (repeatable)
  -theme name       dark-modern or light
  -mode name        async or sync
`

func main() {
	logger.Configure(config.Default().LogLevel)

	root, rest, err := parseRootArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stdout, usage)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse args: %v\n\n%s", err, usage)
		os.Exit(2)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "exec":
			os.Exit(execMain(root, rest[1:], os.Stdin, os.Stdout, os.Stderr))
		case "fmt":
			os.Exit(fmtMain(root, rest[1:], os.Stdin, os.Stdout, os.Stderr))
		case "init-config":
			os.Exit(initConfigMain(root, rest[1:], os.Stdout, os.Stderr))
		case "help":
			fmt.Fprint(os.Stdout, usage)
			return
		}
	}
	os.Exit(runInteractive(root, rest))
}

func runInteractive(root rootArgs, args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "expected at most one file, got %d\n\n%s", len(args), usage)
		return 2
	}
	cfg, err := loadConfig(root.common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	initial := ""
	if len(args) == 1 {
		initial, err = readSource(args[0], os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}

	runLog, closeLogs := setupLogs(cfg, true)
	defer closeLogs()
	log.WithField("config", cfg.Source).Info("starting editor")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	queue := events.NewEventQueue(0)
	queue.SetLogger(logger.Named("events"))
	res, err := tui.Run(tui.Options{
		Config:      cfg,
		InitialText: initial,
		Queue:       queue,
		Runner:      runner.New(runner.Options{Queue: queue, RunLog: runLog}),
		Context:     ctx,
	})
	if err != nil {
		log.WithError(err).Error("program exit")
		fmt.Fprintf(os.Stderr, "program exit: %v\n", err)
		return 1
	}
	log.WithField("theme", res.Theme).Info("editor closed")
	return 0
}

// setupLogs 把全局日志和执行日志重定向到文件。
// quiet 为 true 时日志文件打不开也不会写到终端。
func setupLogs(cfg config.Config, quiet bool) (logger.RunLogger, func()) {
	logger.Configure(cfg.LogLevel)
	var closers []io.Closer
	if f, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		if quiet {
			logger.Silence()
		} else {
			fmt.Fprintf(os.Stderr, "failed to initialize log file: %v\n", err)
		}
	} else {
		closers = append(closers, f)
	}

	var runLog logger.RunLogger = logger.NoopRunLogger{}
	if entry, closer, _, err := logger.SetupComponentFile("runs", logger.DefaultRunLogPath); err != nil {
		log.Warnf("failed to initialize run log (%s): %v", logger.DefaultRunLogPath, err)
	} else {
		runLog = logger.NewRunLogger(entry)
		closers = append(closers, closer)
	}
	return runLog, func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
}

// readSource 读取脚本文件，"-" 表示标准输入。
func readSource(path string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(path) == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func initConfigMain(root rootArgs, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := root.common.clone()
	common.bind(fs)
	var force bool
	fs.BoolVar(&force, "force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.ApplyKVOverrides(config.Default(), []string(common.overrides))
	if common.theme != "" {
		cfg.Theme = common.theme
	}
	if common.mode != "" {
		cfg.Mode = common.mode
	}
	path := common.cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(path, cfg, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			fmt.Fprintf(stderr, "%v (use -force to overwrite)\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "write config: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return 0
}
