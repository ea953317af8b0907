package layout

import "math"

// Controller 管理编辑器和控制台之间可拖拽的分隔条。
// 只在 UI 线程上调用。
type Controller struct {
	opts   Options
	bounds Rect
	state  State

	orientation Orientation
	// extent 是当前方向上编辑器占用的列数（横向）或行数（纵向），0 表示使用默认比例。
	extent int
}

// New 创建布局控制器。
func New(opts Options) *Controller {
	return &Controller{opts: opts.withDefaults()}
}

// Resize 更新可用区域。方向变化时分隔位置回到默认比例。
func (c *Controller) Resize(bounds Rect) {
	c.bounds = bounds
	c.syncOrientation()
}

// Bounds 返回当前可用区域。
func (c *Controller) Bounds() Rect {
	return c.bounds
}

// State 返回拖拽状态。
func (c *Controller) State() State {
	return c.state
}

// Orientation 按当前视口宽度返回分栏方向。
func (c *Controller) Orientation() Orientation {
	if c.bounds.W <= c.opts.NarrowWidth {
		return Vertical
	}
	return Horizontal
}

// Press 在分隔条上按下鼠标时进入 resizing，返回是否命中。
func (c *Controller) Press(x, y int) bool {
	if !c.Panes().Divider.Contains(x, y) {
		return false
	}
	c.state = Resizing
	return true
}

// Move 在 resizing 状态下根据指针坐标重新计算分隔位置。
// 候选尺寸必须严格落在 (min, total-min) 之间，否则忽略本次移动。
func (c *Controller) Move(x, y int) bool {
	if c.state != Resizing {
		return false
	}
	c.syncOrientation()
	var candidate int
	if c.orientation == Horizontal {
		candidate = x - c.bounds.X
	} else {
		candidate = y - c.bounds.Y
	}
	return c.apply(candidate)
}

// Nudge 用键盘移动分隔条，首次调用会进入 resizing。
func (c *Controller) Nudge(delta int) bool {
	c.state = Resizing
	c.syncOrientation()
	return c.apply(c.currentExtent() + delta)
}

// Stop 结束拖拽，回到 idle。
func (c *Controller) Stop() {
	c.state = Idle
}

// Panes 计算编辑器、分隔条和控制台的矩形。
func (c *Controller) Panes() Panes {
	b := c.bounds
	p := Panes{Orientation: c.Orientation()}
	if b.Empty() {
		return p
	}
	e := c.currentExtent()
	if p.Orientation == Horizontal {
		e = clamp(e, 0, b.W-1)
		p.Editor = Rect{X: b.X, Y: b.Y, W: e, H: b.H}
		p.Divider = Rect{X: b.X + e, Y: b.Y, W: 1, H: b.H}
		p.Console = Rect{X: b.X + e + 1, Y: b.Y, W: max(0, b.W-e-1), H: b.H}
		return p
	}
	e = clamp(e, 0, b.H-1)
	p.Editor = Rect{X: b.X, Y: b.Y, W: b.W, H: e}
	p.Divider = Rect{X: b.X, Y: b.Y + e, W: b.W, H: 1}
	p.Console = Rect{X: b.X, Y: b.Y + e + 1, W: b.W, H: max(0, b.H-e-1)}
	return p
}

func (c *Controller) apply(candidate int) bool {
	total, least := c.total()
	if candidate <= least || candidate >= total-least {
		return false
	}
	c.extent = candidate
	return true
}

func (c *Controller) total() (total, least int) {
	if c.orientation == Horizontal {
		return c.bounds.W, c.opts.MinPaneWidth
	}
	return c.bounds.H, c.opts.MinPaneHeight
}

func (c *Controller) currentExtent() int {
	if c.extent > 0 {
		return c.extent
	}
	total, _ := c.total()
	return int(math.Round(float64(total) * c.opts.SplitRatio))
}

func (c *Controller) syncOrientation() {
	o := c.Orientation()
	if o != c.orientation {
		c.orientation = o
		c.extent = 0
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
