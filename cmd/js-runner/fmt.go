package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"js-runner/internal/format"
	"js-runner/internal/logger"
)

func fmtMain(root rootArgs, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := root.common.clone()
	common.bind(fs)
	var write bool
	var indent int
	fs.BoolVar(&write, "w", false, "Write the result back to the file instead of stdout")
	fs.IntVar(&indent, "indent", 0, "Indent size (default from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "fmt expects exactly one file (or - for stdin)\n")
		return 2
	}
	path := fs.Arg(0)
	if write && path == "-" {
		fmt.Fprintf(stderr, "fmt -w cannot rewrite stdin\n")
		return 2
	}

	cfg, err := loadConfig(common)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	if indent <= 0 {
		indent = cfg.IndentSize
	}
	src, err := readSource(path, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	out, err := format.New(format.Options{IndentSize: indent, Log: logger.Named("format")}).Format(src)
	if err != nil {
		fmt.Fprintf(stderr, "Format Error: %v\n", err)
		return 1
	}
	if !write {
		fmt.Fprint(stdout, out)
		return 0
	}
	if out == src {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(stderr, "stat %s: %v\n", path, err)
		return 1
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		fmt.Fprintf(stderr, "write %s: %v\n", path, err)
		return 1
	}
	return 0
}
