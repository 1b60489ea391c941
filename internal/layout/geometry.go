package layout

// Rect is a pane's cell rectangle within a tab's area.
type Rect struct {
	PaneID string
	X      int
	Y      int
	Cols   int
	Rows   int
}

// Rects computes the cell rectangle of every pane for a tab area of
// cols by rows, honoring split directions and ratios. Order matches
// Leaves. Every rectangle is at least one cell in each dimension so a
// deeply nested pane never vanishes entirely.
func Rects(root Node, cols, rows int) []Rect {
	var rects []Rect
	var walk func(n Node, x, y, w, h int)
	walk = func(n Node, x, y, w, h int) {
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		switch n := n.(type) {
		case *Leaf:
			rects = append(rects, Rect{PaneID: n.PaneID, X: x, Y: y, Cols: w, Rows: h})
		case *Split:
			switch n.Direction {
			case Vertical:
				aw := int(float64(w) * n.Ratio)
				if aw < 1 {
					aw = 1
				}
				if aw >= w {
					aw = w - 1
				}
				walk(n.A, x, y, aw, h)
				walk(n.B, x+aw, y, w-aw, h)
			default: // Horizontal
				ah := int(float64(h) * n.Ratio)
				if ah < 1 {
					ah = 1
				}
				if ah >= h {
					ah = h - 1
				}
				walk(n.A, x, y, w, ah)
				walk(n.B, x, y+ah, w, h-ah)
			}
		}
	}
	walk(root, 0, 0, cols, rows)
	return rects
}
