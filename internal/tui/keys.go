package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap 是应用级快捷键。run/format/theme/reset/clear/copy 通过编辑器的
// AddCommand 注册，其余在 Update 中先于编辑器处理。
type keyMap struct {
	Run        key.Binding
	Format     key.Binding
	Theme      key.Binding
	Reset      key.Binding
	Clear      key.Binding
	Copy       key.Binding
	Fullscreen key.Binding
	Stop       key.Binding
	Palette    key.Binding
	Quit       key.Binding

	ConsoleUp   key.Binding
	ConsoleDown key.Binding

	NudgeLeft  key.Binding
	NudgeRight key.Binding
	NudgeUp    key.Binding
	NudgeDown  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:        key.NewBinding(key.WithKeys("ctrl+r", "f5"), key.WithHelp("ctrl+r", "run")),
		Format:     key.NewBinding(key.WithKeys("ctrl+f", "alt+F"), key.WithHelp("ctrl+f", "format")),
		Theme:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		Reset:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "reset")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy console")),
		Fullscreen: key.NewBinding(key.WithKeys("f11"), key.WithHelp("f11", "fullscreen")),
		Stop:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "stop")),
		Palette:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "commands")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),

		ConsoleUp:   key.NewBinding(key.WithKeys("alt+pgup"), key.WithHelp("alt+pgup", "console up")),
		ConsoleDown: key.NewBinding(key.WithKeys("alt+pgdown"), key.WithHelp("alt+pgdn", "console down")),

		NudgeLeft:  key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "divider left")),
		NudgeRight: key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "divider right")),
		NudgeUp:    key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "divider up")),
		NudgeDown:  key.NewBinding(key.WithKeys("alt+down"), key.WithHelp("alt+↓", "divider down")),
	}
}

// hints 是状态栏空闲时显示的快捷键提示。
func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Run, k.Format, k.Stop, k.Palette, k.Quit}
}
