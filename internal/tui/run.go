package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 退出时的必要信息。
type Result struct {
	Buffer string
	Theme  string
}

// Run 封装 Bubble Tea 入口，返回最终的 UI 结果。
func Run(opts Options) (Result, error) {
	m := New(opts)
	defer m.queue.Close()

	programOptions := []tea.ProgramOption{}
	if m.cfg.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	if m.cfg.Mouse {
		programOptions = append(programOptions, tea.WithMouseCellMotion())
	}
	if opts.Context != nil {
		programOptions = append(programOptions, tea.WithContext(opts.Context))
	}
	program := tea.NewProgram(m, programOptions...)
	final, err := program.Run()
	m.cancel()
	if err != nil {
		return Result{}, err
	}
	tuiModel, ok := final.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{Buffer: tuiModel.Buffer(), Theme: tuiModel.Theme()}, nil
}
