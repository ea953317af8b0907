package palette

import "strings"

// Command 是命令面板里可执行动作的标识符。
type Command string

const (
	CommandRun        Command = "run"
	CommandStop       Command = "stop"
	CommandFormat     Command = "format"
	CommandTheme      Command = "theme"
	CommandReset      Command = "reset"
	CommandClear      Command = "clear"
	CommandFullscreen Command = "fullscreen"
	CommandCopy       Command = "copy"
	CommandMode       Command = "mode"
	CommandQuit       Command = "quit"
)

// Item 代表面板中的一行条目。
type Item struct {
	Command     Command
	Title       string
	Keys        string
	Description string
	// Disabled 的条目仍会显示，但不能执行。
	Disabled bool
}

// Token 返回用于模糊匹配的键。
func (i Item) Token() string {
	if i.Title != "" {
		return i.Title
	}
	return string(i.Command)
}

// ActionKind 描述按键处理后的结果。
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionClose
	ActionRun
)

// Action 汇总按键处理结果。
type Action struct {
	Kind    ActionKind
	Command Command
}

// Builtin 返回应用内置动作的默认条目。
func Builtin() []Item {
	return []Item{
		{Command: CommandRun, Title: "Run", Keys: "ctrl+r", Description: "execute the buffer"},
		{Command: CommandStop, Title: "Stop", Keys: "ctrl+x", Description: "interrupt the running script"},
		{Command: CommandFormat, Title: "Format", Keys: "ctrl+f", Description: "re-indent the buffer"},
		{Command: CommandTheme, Title: "Toggle Theme", Keys: "ctrl+t", Description: "switch dark / light"},
		{Command: CommandReset, Title: "Reset", Keys: "ctrl+n", Description: "restore the default buffer"},
		{Command: CommandClear, Title: "Clear Console", Keys: "ctrl+l", Description: "remove all console entries"},
		{Command: CommandFullscreen, Title: "Toggle Fullscreen", Keys: "f11", Description: "enter or leave the alternate screen"},
		{Command: CommandCopy, Title: "Copy Console", Keys: "ctrl+y", Description: "copy console text to the clipboard"},
		{Command: CommandMode, Title: "Toggle Mode", Description: "switch async / sync execution"},
		{Command: CommandQuit, Title: "Quit", Keys: "ctrl+q", Description: "exit js-runner"},
	}
}

func lower(s string) string { return strings.ToLower(s) }
