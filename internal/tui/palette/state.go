package palette

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// State 维护命令面板的输入、匹配与选择状态。
type State struct {
	input    textinput.Model
	items    []Item
	matches  []match
	selected int
	open     bool
	maxLines int
}

type match struct {
	item       Item
	highlights []int
	score      int
}

// NewState 构造命令面板。maxLines 为可见条目数上限，<=0 时取 8。
func NewState(items []Item, maxLines int) *State {
	if maxLines <= 0 {
		maxLines = 8
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a command"
	ti.CharLimit = 64
	return &State{input: ti, items: append([]Item(nil), items...), maxLines: maxLines}
}

// Open 打开面板并清空输入。
func (s *State) Open() tea.Cmd {
	if s == nil {
		return nil
	}
	s.open = true
	s.selected = 0
	s.input.Reset()
	s.refilter()
	return s.input.Focus()
}

// Close 关闭面板。
func (s *State) Close() {
	if s == nil {
		return
	}
	s.open = false
	s.input.Blur()
}

// IsOpen 返回面板是否展示。
func (s *State) IsOpen() bool {
	return s != nil && s.open
}

// SetItems 替换条目，例如执行状态变化后更新 Disabled。
func (s *State) SetItems(items []Item) {
	if s == nil {
		return
	}
	s.items = append([]Item(nil), items...)
	s.refilter()
}

// Query 返回当前输入。
func (s *State) Query() string {
	if s == nil {
		return ""
	}
	return s.input.Value()
}

// Selected 返回当前选中的条目。
func (s *State) Selected() (Item, bool) {
	if s == nil || len(s.matches) == 0 {
		return Item{}, false
	}
	return s.matches[s.selected].item, true
}

// Update 处理按键：上下移动、esc 关闭、enter 执行，其余交给输入框并重新过滤。
func (s *State) Update(msg tea.KeyMsg) (Action, tea.Cmd) {
	if s == nil || !s.open {
		return Action{}, nil
	}
	switch msg.String() {
	case "up", "ctrl+k":
		s.move(-1)
		return Action{Kind: ActionNone}, nil
	case "down", "ctrl+j":
		s.move(1)
		return Action{Kind: ActionNone}, nil
	case "esc", "ctrl+p":
		s.Close()
		return Action{Kind: ActionClose}, nil
	case "enter", "tab":
		item, ok := s.Selected()
		if !ok || item.Disabled {
			return Action{Kind: ActionNone}, nil
		}
		s.Close()
		return Action{Kind: ActionRun, Command: item.Command}, nil
	}
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.selected = 0
		s.refilter()
	}
	return Action{Kind: ActionNone}, cmd
}

func (s *State) move(delta int) {
	if len(s.matches) == 0 {
		return
	}
	s.selected = (s.selected + delta + len(s.matches)) % len(s.matches)
}

func (s *State) refilter() {
	s.matches = filterMatches(s.items, s.input.Value())
	if s.selected >= len(s.matches) {
		s.selected = 0
	}
}

func filterMatches(items []Item, query string) []match {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		matches := make([]match, 0, len(items))
		for _, item := range items {
			matches = append(matches, match{item: item})
		}
		return matches
	}

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = lower(item.Token())
	}
	results := fuzzy.Find(lower(trimmed), keys)
	matches := make([]match, 0, len(results))
	for _, res := range results {
		matches = append(matches, match{
			item:       items[res.Index],
			highlights: res.MatchedIndexes,
			score:      res.Score,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	return matches
}
