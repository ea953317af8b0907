package render

import "testing"

func TestConsoleViewportSetLinesKeepsBottom(t *testing.T) {
	vp := NewConsoleViewport(10, 2)
	vp.SetLines([]string{"a", "b"})
	vp.GotoBottom()

	if !vp.SetLines([]string{"a", "b", "c"}) {
		t.Fatalf("expected content change")
	}
	if !vp.AtBottom() {
		t.Fatalf("viewport should stay anchored at bottom after append")
	}
	if vp.SetLines([]string{"a", "b", "c"}) {
		t.Fatalf("identical lines should not count as a change")
	}
}

func TestConsoleViewportAppendScrollsEvenWhenScrolledUp(t *testing.T) {
	vp := NewConsoleViewport(10, 2)
	vp.SetLines([]string{"a", "b", "c", "d"})
	vp.GotoTop()

	vp.SetLines([]string{"a", "b", "c", "d", "e"})
	if !vp.AtBottom() {
		t.Fatalf("append should scroll to bottom, offset=%d", vp.YOffset)
	}
}

func TestConsoleViewportRewriteKeepsOffset(t *testing.T) {
	vp := NewConsoleViewport(10, 2)
	vp.SetLines([]string{"a", "b", "c", "d"})
	vp.GotoTop()

	vp.SetLines([]string{"a", "b", "c", "x"})
	if vp.YOffset != 0 {
		t.Fatalf("same-length rewrite moved offset to %d", vp.YOffset)
	}
}

func TestConsoleViewportScrollLineDown(t *testing.T) {
	t.Run("adjusts offset", func(t *testing.T) {
		vp := NewConsoleViewport(8, 2)
		vp.SetLines([]string{"a", "b", "c"})
		vp.SetYOffset(0)

		vp.ScrollLineDown(1)
		if vp.YOffset != 1 {
			t.Fatalf("unexpected YOffset after scroll: %d", vp.YOffset)
		}
	})

	t.Run("ignore extra scroll when at bottom", func(t *testing.T) {
		vp := NewConsoleViewport(8, 2)
		vp.SetLines([]string{"a", "b"})
		vp.GotoBottom()

		vp.ScrollLineDown(1)
		if !vp.AtBottom() {
			t.Fatalf("viewport should stay at bottom")
		}
	})
}
