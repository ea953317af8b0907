package main

import (
	"flag"
	"io"
)

type rootArgs struct {
	common commonArgs
}

// parseRootArgs 解析子命令之前的参数，剩余参数原样返回。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("js-runner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var root rootArgs
	root.common.bind(fs)
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return root, fs.Args(), nil
}
