package console

import "strings"

// Kind 区分控制台条目的类型。
type Kind int

const (
	KindLog Kind = iota
	KindError
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindStatus:
		return "status"
	default:
		return "log"
	}
}

// Entry 是控制台中的一条记录，创建后不再修改。
type Entry struct {
	Text string
	Kind Kind
}

// Handle 指向一条状态条目，用于提前移除。零值不指向任何条目。
type Handle uint64

// Panel 是只追加的控制台条目列表，最多同时存在一条状态条目。
// Panel 只在 UI 线程上使用，不加锁。
type Panel struct {
	entries []Entry
	status  Handle
	seq     Handle
	// statusIdx 为 -1 表示当前没有状态条目。
	statusIdx int
	revision  uint64
}

// New 创建空的控制台面板。
func New() *Panel {
	return &Panel{statusIdx: -1}
}

// Log 追加普通日志条目，会替代当前的状态条目。
func (p *Panel) Log(text string) {
	p.append(Entry{Text: text, Kind: KindLog})
}

// Error 追加错误条目，会替代当前的状态条目。
func (p *Panel) Error(text string) {
	p.append(Entry{Text: text, Kind: KindError})
}

// Status 发布状态条目并返回句柄。已有的状态条目会被替换。
func (p *Panel) Status(text string) Handle {
	p.dropStatus()
	p.seq++
	p.status = p.seq
	p.statusIdx = len(p.entries)
	p.entries = append(p.entries, Entry{Text: text, Kind: KindStatus})
	p.revision++
	return p.status
}

// RemoveStatus 移除句柄对应的状态条目；句柄已失效时什么也不做。
func (p *Panel) RemoveStatus(h Handle) bool {
	if h == 0 || h != p.status {
		return false
	}
	p.dropStatus()
	return true
}

// StatusLive 报告当前是否存在状态条目。
func (p *Panel) StatusLive() bool {
	return p.statusIdx >= 0
}

// Clear 无条件清空所有条目，包括状态条目。
func (p *Panel) Clear() {
	p.entries = nil
	p.status = 0
	p.statusIdx = -1
	p.revision++
}

// Entries 返回条目的副本，按追加顺序排列。
func (p *Panel) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len 返回条目数量。
func (p *Panel) Len() int {
	return len(p.entries)
}

// Revision 在每次内容变化后递增，渲染层据此判断是否需要重绘。
func (p *Panel) Revision() uint64 {
	return p.revision
}

// Count 统计指定类型的条目数。
func (p *Panel) Count(kind Kind) int {
	n := 0
	for _, e := range p.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Text 以纯文本导出控制台内容，错误条目带前缀。
func (p *Panel) Text() string {
	var b strings.Builder
	for i, e := range p.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch e.Kind {
		case KindError:
			b.WriteString("❌ ")
		case KindStatus:
			b.WriteString("🕒 ")
		}
		b.WriteString(e.Text)
	}
	return b.String()
}

func (p *Panel) append(e Entry) {
	p.dropStatus()
	p.entries = append(p.entries, e)
	p.revision++
}

func (p *Panel) dropStatus() {
	if p.statusIdx < 0 {
		return
	}
	idx := p.statusIdx
	p.entries = append(p.entries[:idx], p.entries[idx+1:]...)
	p.status = 0
	p.statusIdx = -1
	p.revision++
}
