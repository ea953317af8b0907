package editor

// Decoration 标记整行，Line 从 1 开始。
type Decoration struct {
	Line    int
	Message string
}

// SetDecorations 替换全部装饰，越界的行被忽略。
func (m *Model) SetDecorations(ds []Decoration) {
	m.decorations = m.decorations[:0]
	for _, d := range ds {
		if d.Line < 1 || d.Line > len(m.lines) {
			continue
		}
		m.decorations = append(m.decorations, d)
	}
}

// ClearDecorations 移除所有装饰。
func (m *Model) ClearDecorations() {
	m.decorations = nil
}

// Decorations 返回当前装饰的副本。
func (m *Model) Decorations() []Decoration {
	out := make([]Decoration, len(m.decorations))
	copy(out, m.decorations)
	return out
}

func (m *Model) decorationAt(row int) (Decoration, bool) {
	for _, d := range m.decorations {
		if d.Line == row+1 {
			return d, true
		}
	}
	return Decoration{}, false
}
