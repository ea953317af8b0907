package layout

// State 是分隔条拖拽状态机的状态。
type State int

const (
	Idle State = iota
	Resizing
)

func (s State) String() string {
	if s == Resizing {
		return "resizing"
	}
	return "idle"
}

// Orientation 决定编辑器与控制台如何并排。
type Orientation int

const (
	// Horizontal 左右分栏，编辑器在左。
	Horizontal Orientation = iota
	// Vertical 上下分栏，编辑器在上。
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Rect 是终端单元格坐标下的矩形。
type Rect struct {
	X, Y, W, H int
}

// Contains 判断点是否落在矩形内。
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty 表示矩形没有面积。
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Panes 是一次布局计算的结果。
type Panes struct {
	Orientation Orientation
	Editor      Rect
	Divider     Rect
	Console     Rect
}

// Options 配置最小尺寸与窄屏阈值。
type Options struct {
	MinPaneWidth  int
	MinPaneHeight int
	NarrowWidth   int
	SplitRatio    float64
}

func (o Options) withDefaults() Options {
	if o.MinPaneWidth <= 0 {
		o.MinPaneWidth = 20
	}
	if o.MinPaneHeight <= 0 {
		o.MinPaneHeight = 5
	}
	if o.NarrowWidth <= 0 {
		o.NarrowWidth = 100
	}
	if o.SplitRatio <= 0 || o.SplitRatio >= 1 {
		o.SplitRatio = 0.6
	}
	return o
}
