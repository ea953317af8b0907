package tui

import (
	"context"
	"fmt"

	"js-runner/internal/bridge"
	"js-runner/internal/config"
	"js-runner/internal/console"
	"js-runner/internal/editor"
	"js-runner/internal/events"
	"js-runner/internal/format"
	"js-runner/internal/layout"
	"js-runner/internal/logger"
	"js-runner/internal/runner"
	"js-runner/internal/tui/palette"
	"js-runner/internal/tui/render"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

const eventBatch = 64

type Options struct {
	Config      config.Config
	InitialText string
	Runner      *runner.Runner
	// Queue 必须是 Runner 发布事件的队列；两者都为空时自动创建。
	Queue     *events.EventQueue
	Formatter *format.Formatter
	Log       *logger.LogEntry
	Clipboard func(string) error
	Context   context.Context
}

type eventsMsg struct {
	Events []events.Event
}

type eventsClosedMsg struct{}

type runDoneMsg struct {
	RunID string
	Err   error
}

// Model 是应用外壳：工具栏、编辑器、可拖拽分隔条、控制台和状态栏。
// 所有状态只在 Update 中修改。
type Model struct {
	cfg  config.Config
	mode runner.Mode
	keys keyMap

	editor    *editor.Model
	state     *bridge.State
	layout    *layout.Controller
	console   render.ConsoleViewport
	spin      spinner.Model
	indicator *RunIndicator
	palette   *palette.State

	runner    *runner.Runner
	queue     *events.EventQueue
	sub       <-chan events.Event
	formatter *format.Formatter
	clip      func(string) error
	log       *logger.LogEntry

	ctx    context.Context
	cancel context.CancelFunc

	defaultText string
	fullscreen  bool
	width       int
	height      int
	notice      string
}

func New(opts Options) *Model {
	cfg := opts.Config.Normalize()
	log := opts.Log
	if log == nil {
		log = logger.Named("tui")
	}
	queue := opts.Queue
	if queue == nil {
		queue = events.NewEventQueue(0)
	}
	run := opts.Runner
	if run == nil {
		run = runner.New(runner.Options{
			Queue:  queue,
			RunLog: logger.NewRunLogger(logger.Named("runner")),
		})
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.New(format.Options{IndentSize: cfg.IndentSize})
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	initial := opts.InitialText
	if initial == "" {
		initial = DefaultText
	}
	ed := editor.New(editor.Config{
		InitialText: initial,
		Language:    "javascript",
		Theme:       cfg.Theme,
		TabWidth:    cfg.TabWidth,
		LineNumbers: editor.ParseLineNumbers(cfg.LineNumbers),
		Minimap:     cfg.Minimap,
		Width:       80,
		Height:      20,
	})

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	keys := defaultKeyMap()

	m := &Model{
		cfg:       cfg,
		mode:      runner.ParseMode(cfg.Mode),
		keys:      keys,
		editor:    ed,
		state:     bridge.New(console.New(), ed, logger.Named("bridge")),
		layout:    layout.New(layoutOptions(cfg)),
		console:   render.NewConsoleViewport(40, 10),
		spin:      spin,
		indicator: NewRunIndicator(keys.Stop.Help().Key, nil),
		palette:   palette.NewState(palette.Builtin(), 0),
		runner:    run,
		queue:     queue,
		sub:       queue.Subscribe(),
		formatter: formatter,
		clip:      clip,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,

		defaultText: DefaultText,
		fullscreen:  cfg.AltScreen,
	}
	m.registerEditorCommands()
	return m
}

func layoutOptions(cfg config.Config) layout.Options {
	return layout.Options{
		MinPaneWidth:  cfg.MinPaneWidth,
		MinPaneHeight: cfg.MinPaneHeight,
		NarrowWidth:   cfg.NarrowWidth,
		SplitRatio:    cfg.SplitRatio,
	}
}

// registerEditorCommands 通过编辑器的按键注册接口挂上与缓冲区相关的动作。
func (m *Model) registerEditorCommands() {
	bind := func(b key.Binding, c palette.Command) {
		m.editor.AddCommand(b, func() tea.Cmd { return m.dispatch(c) })
	}
	bind(m.keys.Run, palette.CommandRun)
	bind(m.keys.Format, palette.CommandFormat)
	bind(m.keys.Theme, palette.CommandTheme)
	bind(m.keys.Reset, palette.CommandReset)
	bind(m.keys.Clear, palette.CommandClear)
	bind(m.keys.Copy, palette.CommandCopy)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenEvents(), tea.SetWindowTitle(appTitle))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case eventsMsg:
		m.applyEvents(msg.Events)
		return m, m.listenEvents()
	case eventsClosedMsg:
		return m, nil
	case runDoneMsg:
		if msg.Err != nil && m.state.RunID() == msg.RunID {
			m.log.WithError(msg.Err).WithField("run_id", msg.RunID).Warn("run did not start")
			m.state.Abort(msg.Err.Error())
			m.indicator.Finish()
			m.syncConsole()
		}
		return m, nil
	case spinner.TickMsg:
		if !m.state.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.syncConsole()
		return m, cmd
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.notice = ""
	if m.palette.IsOpen() {
		act, cmd := m.palette.Update(msg)
		if act.Kind == palette.ActionRun {
			return tea.Batch(cmd, m.dispatch(act.Command))
		}
		return cmd
	}

	k := m.keys
	nudge := key.Matches(msg, k.NudgeLeft, k.NudgeRight, k.NudgeUp, k.NudgeDown)
	if !nudge && m.layout.State() == layout.Resizing {
		m.layout.Stop()
	}

	switch {
	case key.Matches(msg, k.Quit):
		return m.dispatch(palette.CommandQuit)
	case key.Matches(msg, k.Palette):
		m.palette.SetItems(m.paletteItems())
		return m.palette.Open()
	case key.Matches(msg, k.Stop):
		return m.dispatch(palette.CommandStop)
	case key.Matches(msg, k.Fullscreen):
		return m.dispatch(palette.CommandFullscreen)
	case key.Matches(msg, k.ConsoleUp):
		m.console.ScrollPageUp()
		return nil
	case key.Matches(msg, k.ConsoleDown):
		m.console.ScrollPageDown()
		return nil
	case nudge:
		m.nudge(msg)
		return nil
	}
	return m.editor.Update(msg)
}

// nudge 用 alt+方向键移动分隔条，只响应与当前分栏方向一致的方向键。
func (m *Model) nudge(msg tea.KeyMsg) {
	k := m.keys
	delta := 0
	switch m.layout.Orientation() {
	case layout.Horizontal:
		if key.Matches(msg, k.NudgeLeft) {
			delta = -1
		} else if key.Matches(msg, k.NudgeRight) {
			delta = 1
		}
	case layout.Vertical:
		if key.Matches(msg, k.NudgeUp) {
			delta = -1
		} else if key.Matches(msg, k.NudgeDown) {
			delta = 1
		}
	}
	if delta == 0 {
		return
	}
	if m.layout.Nudge(delta) {
		m.applyLayout()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.palette.IsOpen() {
		return nil
	}
	if m.layout.State() == layout.Resizing {
		switch msg.Action {
		case tea.MouseActionMotion:
			if m.layout.Move(msg.X, msg.Y) {
				m.applyLayout()
			}
		case tea.MouseActionRelease:
			m.layout.Stop()
		}
		return nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if msg.Y < toolbarHeight {
			if c, ok := m.toolbarHit(msg.X); ok {
				return m.dispatch(c)
			}
			return nil
		}
		if m.layout.Press(msg.X, msg.Y) {
			return nil
		}
	}

	p := m.layout.Panes()
	switch {
	case p.Editor.Contains(msg.X, msg.Y):
		rel := msg
		rel.X -= p.Editor.X
		rel.Y -= p.Editor.Y
		return m.editor.Update(rel)
	case p.Console.Contains(msg.X, msg.Y):
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			return m.console.HandleUpdate(msg)
		}
	}
	return nil
}

// dispatch 执行工具栏、快捷键和命令面板共用的动作。
func (m *Model) dispatch(c palette.Command) tea.Cmd {
	switch c {
	case palette.CommandRun:
		return m.runAction()
	case palette.CommandStop:
		m.stopRun()
	case palette.CommandFormat:
		m.state.Format(m.formatter, m.editor)
		m.syncConsole()
	case palette.CommandTheme:
		th := m.editor.ToggleTheme()
		m.cfg.Theme = th.Name
		m.console.Invalidate()
		m.syncConsole()
	case palette.CommandReset:
		m.state.Reset()
		m.editor.SetValue(m.defaultText)
		m.syncConsole()
	case palette.CommandClear:
		m.state.Console.Clear()
		m.syncConsole()
	case palette.CommandFullscreen:
		m.fullscreen = !m.fullscreen
		if m.fullscreen {
			return tea.EnterAltScreen
		}
		return tea.ExitAltScreen
	case palette.CommandCopy:
		m.copyConsole()
	case palette.CommandMode:
		if m.mode == runner.ModeAsync {
			m.mode = runner.ModeSync
		} else {
			m.mode = runner.ModeAsync
		}
		m.cfg.Mode = string(m.mode)
		m.notice = "Mode: " + string(m.mode)
	case palette.CommandQuit:
		m.cancel()
		m.runner.Stop()
		return tea.Quit
	}
	return nil
}

func (m *Model) runAction() tea.Cmd {
	runID := uuid.NewString()
	if !m.state.Begin(runID) {
		m.syncConsole()
		return nil
	}
	m.indicator.Start()
	m.syncConsole()

	r, ctx, src, mode := m.runner, m.ctx, m.editor.Value(), m.mode
	m.log.WithFields(logger.Fields{"run_id": runID, "mode": mode}).Debug("run requested")
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		_, err := r.Run(ctx, runID, src, mode)
		return runDoneMsg{RunID: runID, Err: err}
	})
}

func (m *Model) stopRun() {
	if !m.state.Pending() {
		return
	}
	if m.runner.Stop() {
		m.indicator.Stopping()
	}
}

func (m *Model) copyConsole() {
	if err := m.clip(m.state.Console.Text()); err != nil {
		m.log.WithError(err).Warn("copy console failed")
		m.notice = "Copy failed"
		return
	}
	m.notice = "Console copied"
}

func (m *Model) applyEvents(batch []events.Event) {
	for _, ev := range batch {
		wasPending := m.state.Pending()
		m.state.Apply(ev)
		if wasPending && !m.state.Pending() {
			m.indicator.Finish()
		}
	}
	m.syncConsole()
}

func (m *Model) listenEvents() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		batch, ok := events.Drain(sub, eventBatch)
		if !ok {
			return eventsClosedMsg{}
		}
		return eventsMsg{Events: batch}
	}
}

func (m *Model) paletteItems() []palette.Item {
	items := palette.Builtin()
	for i := range items {
		if items[i].Command == palette.CommandStop {
			items[i].Disabled = !m.state.Pending()
		}
		if items[i].Command == palette.CommandMode {
			items[i].Description = fmt.Sprintf("switch async / sync execution (now %s)", m.mode)
		}
	}
	return items
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.layout.Resize(layout.Rect{
		X: 0,
		Y: toolbarHeight,
		W: width,
		H: max(0, height-toolbarHeight-statusHeight),
	})
	m.applyLayout()
}

func (m *Model) applyLayout() {
	p := m.layout.Panes()
	m.editor.SetSize(p.Editor.W, p.Editor.H)
	m.console.Resize(p.Console.W, max(0, p.Console.H-consoleHeaderHeight))
	m.console.Invalidate()
	m.syncConsole()
}

func (m *Model) syncConsole() {
	frame := ""
	if m.state.Pending() {
		frame = m.spin.View()
	}
	lines := render.ConsoleLines(m.state.Console.Entries(), consoleStyles(m.editor.Theme()), m.console.Width, frame)
	m.console.SetLines(lines)
}

// Buffer 返回编辑器当前内容。
func (m *Model) Buffer() string {
	return m.editor.Value()
}

// Theme 返回当前主题名。
func (m *Model) Theme() string {
	return m.editor.Theme().Name
}

// Console 返回控制台面板。
func (m *Model) Console() *console.Panel {
	return m.state.Console
}
