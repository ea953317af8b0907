package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"js-runner/internal/bridge"
	"js-runner/internal/config"
	"js-runner/internal/console"
	"js-runner/internal/editor"
	"js-runner/internal/layout"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) (*Model, *string) {
	t.Helper()
	copied := new(string)
	m := New(Options{
		Config:    config.Default(),
		Clipboard: func(s string) error { *copied = s; return nil },
	})
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 30})
	return m, copied
}

// collect 同步执行命令，展开 Batch，丢弃 spinner tick。
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if _, ok := msg.(spinner.TickMsg); ok {
		return nil
	}
	return []tea.Msg{msg}
}

func drainEvents(t *testing.T, m *Model) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for m.state.Pending() {
		got := make(chan tea.Msg, 1)
		go func() { got <- m.listenEvents()() }()
		select {
		case msg := <-got:
			m.Update(msg)
		case <-deadline:
			t.Fatalf("run did not complete")
		}
	}
}

func runBuffer(t *testing.T, m *Model, src string) {
	t.Helper()
	m.editor.SetValue(src)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatalf("ctrl+r returned no command")
	}
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}
	drainEvents(t, m)
}

func entryTexts(p *console.Panel) []string {
	var out []string
	for _, e := range p.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func TestRunLogsToConsole(t *testing.T) {
	m, _ := newTestModel(t)
	runBuffer(t, m, `console.log("hi")`)

	got := entryTexts(m.Console())
	if len(got) != 1 || got[0] != "hi" {
		t.Fatalf("console = %q", got)
	}
	if m.Console().StatusLive() {
		t.Fatalf("status entry left after completion")
	}
	if m.indicator.State() != RunIdle {
		t.Fatalf("indicator = %s", m.indicator.State())
	}
}

func TestRunErrorMarksLine(t *testing.T) {
	m, _ := newTestModel(t)
	runBuffer(t, m, "const a = 1\n\nthrow new Error(\"boom\")")

	got := entryTexts(m.Console())
	if len(got) != 1 || got[0] != "Error at line 3: boom" {
		t.Fatalf("console = %q", got)
	}
	ds := m.editor.Decorations()
	if len(ds) != 1 || ds[0].Line != 3 {
		t.Fatalf("decorations = %+v", ds)
	}

	runBuffer(t, m, `console.log("ok")`)
	if len(m.editor.Decorations()) != 0 {
		t.Fatalf("decorations not cleared by next run")
	}
}

func TestBusyRunIsRefusedAndStopWorks(t *testing.T) {
	m, _ := newTestModel(t)
	m.editor.SetValue("setInterval(() => {}, 10)")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	done := make(chan []tea.Msg, 1)
	go func() { done <- collect(cmd) }()
	deadline := time.Now().Add(5 * time.Second)
	for !m.runner.Running() {
		if time.Now().After(deadline) {
			t.Fatalf("run never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if texts := entryTexts(m.Console()); len(texts) == 0 || texts[len(texts)-1] != bridge.MsgBusy {
		t.Fatalf("expected busy message, got %q", texts)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.indicator.State() != RunStopping {
		t.Fatalf("indicator = %s", m.indicator.State())
	}
	select {
	case msgs := <-done:
		for _, msg := range msgs {
			m.Update(msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("stop did not end the run")
	}
	drainEvents(t, m)

	texts := entryTexts(m.Console())
	if texts[len(texts)-1] != bridge.MsgStopped {
		t.Fatalf("console = %q", texts)
	}
	if m.Console().Count(console.KindError) != 1 {
		t.Fatalf("unexpected errors: %q", texts)
	}
}

func TestFormatReplacesBuffer(t *testing.T) {
	m, _ := newTestModel(t)
	m.editor.SetValue("if(true){console.log('x')}")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})

	if !strings.Contains(m.Buffer(), "if (true) {") {
		t.Fatalf("buffer not formatted: %q", m.Buffer())
	}
	if got := entryTexts(m.Console()); len(got) != 1 || got[0] != bridge.MsgFormatted {
		t.Fatalf("console = %q", got)
	}
}

func TestFormatErrorKeepsBuffer(t *testing.T) {
	m, _ := newTestModel(t)
	m.editor.SetValue("if (")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})

	if m.Buffer() != "if (" {
		t.Fatalf("buffer changed: %q", m.Buffer())
	}
	got := entryTexts(m.Console())
	if len(got) != 1 || !strings.HasPrefix(got[0], "Format Error: ") {
		t.Fatalf("console = %q", got)
	}
}

func TestThemeResetClearAndCopy(t *testing.T) {
	m, copied := newTestModel(t)
	runBuffer(t, m, `console.log("a"); console.error("b")`)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if *copied != "a\n❌ b" {
		t.Fatalf("copied = %q", *copied)
	}
	if m.notice != "Console copied" {
		t.Fatalf("notice = %q", m.notice)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.Theme() != editor.ThemeLight {
		t.Fatalf("theme = %s", m.Theme())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.Console().Len() != 0 {
		t.Fatalf("console not cleared")
	}

	m.editor.SetValue("x")
	m.Console().Log("left over")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.Buffer() != DefaultText || m.Console().Len() != 0 {
		t.Fatalf("reset left buffer=%q console=%d", m.Buffer(), m.Console().Len())
	}
}

func TestCopyFailureGoesToNotice(t *testing.T) {
	m := New(Options{
		Config:    config.Default(),
		Clipboard: func(string) error { return errors.New("no clipboard") },
	})
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if m.notice != "Copy failed" || m.Console().Len() != 0 {
		t.Fatalf("notice=%q console=%d", m.notice, m.Console().Len())
	}
}

func TestToolbarClick(t *testing.T) {
	m, _ := newTestModel(t)
	m.Console().Log("x")
	for _, b := range m.toolbarButtons() {
		if b.label == "Clear" {
			m.Update(tea.MouseMsg{X: b.x0, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
		}
	}
	if m.Console().Len() != 0 {
		t.Fatalf("toolbar Clear did not clear the console")
	}
	if _, ok := m.toolbarHit(0); ok {
		t.Fatalf("title should not be a button")
	}
}

func TestDividerDrag(t *testing.T) {
	m, _ := newTestModel(t)
	p := m.layout.Panes()
	if p.Orientation != layout.Horizontal || p.Editor.W != 80 {
		t.Fatalf("panes = %+v", p)
	}

	m.Update(tea.MouseMsg{X: p.Divider.X, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.layout.State() != layout.Resizing {
		t.Fatalf("press on divider did not start resizing")
	}
	m.Update(tea.MouseMsg{X: 70, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	if m.editor.Width() != 70 {
		t.Fatalf("editor width = %d", m.editor.Width())
	}
	m.Update(tea.MouseMsg{X: 10, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	if m.editor.Width() != 70 {
		t.Fatalf("drag below minimum changed width to %d", m.editor.Width())
	}
	m.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionRelease})
	if m.layout.State() != layout.Idle {
		t.Fatalf("release did not stop resizing")
	}
}

func TestKeyboardNudge(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft, Alt: true})
	if m.editor.Width() != 79 || m.layout.State() != layout.Resizing {
		t.Fatalf("width=%d state=%s", m.editor.Width(), m.layout.State())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	if m.editor.Width() != 79 {
		t.Fatalf("vertical nudge applied in horizontal layout")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.layout.State() != layout.Idle {
		t.Fatalf("other key should end keyboard resizing")
	}
}

func TestNarrowTerminalStacksPanes(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	p := m.layout.Panes()
	if p.Orientation != layout.Vertical {
		t.Fatalf("orientation = %s", p.Orientation)
	}
	if m.editor.Width() != 80 || m.editor.Height() != 14 {
		t.Fatalf("editor = %dx%d", m.editor.Width(), m.editor.Height())
	}
}

func TestEditorClickIsRelative(t *testing.T) {
	m, _ := newTestModel(t)
	gw := m.editor.GutterWidth()
	m.Update(tea.MouseMsg{X: gw + 2, Y: toolbarHeight + 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if cur := m.editor.Cursor(); cur != (editor.Position{Row: 1, Col: 2}) {
		t.Fatalf("cursor = %+v", cur)
	}
}

func TestPaletteRunsCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if !m.palette.IsOpen() {
		t.Fatalf("palette did not open")
	}
	if !strings.Contains(m.View(), "Toggle Theme") {
		t.Fatalf("palette not rendered")
	}
	for _, r := range "theme" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if m.Buffer() != DefaultText {
		t.Fatalf("palette typing leaked into the editor")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.palette.IsOpen() || m.Theme() != editor.ThemeLight {
		t.Fatalf("open=%v theme=%s", m.palette.IsOpen(), m.Theme())
	}
}

func TestFullscreenAndQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyF11})
	if m.fullscreen || cmd == nil {
		t.Fatalf("f11 should leave the alternate screen")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatalf("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.ctx.Err() == nil {
		t.Fatalf("quit should cancel the run context")
	}
}

func TestViewLayout(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{appTitle, "▶ Run", "Console", "ctrl+r run"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	if got := len(strings.Split(view, "\n")); got != 30 {
		t.Fatalf("view has %d rows, want 30", got)
	}
}
